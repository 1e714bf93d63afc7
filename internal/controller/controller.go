// Package controller holds helpers shared by the teacher-facing and
// student-facing HTTP controllers.
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RespondError maps the error taxonomy onto HTTP statuses: not-found 404,
// validation 422, state-conflict 409, everything else 500. The
// machine-readable code travels with the message.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperr.AsError(err); ok {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindValidation:
			status = http.StatusUnprocessableEntity
		case apperr.KindStateConflict:
			status = http.StatusConflict
		}
		c.JSON(status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "not_found", Message: "resource not found"})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled service error")
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "internal_error", Message: "internal server error"})
}

// BindError reports a malformed request body.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    "invalid_body",
		Message: "invalid request body",
		Details: []string{err.Error()},
	})
}

// ParseIDParam reads a uint path parameter; on failure it writes the 400
// response itself and returns false.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_id", Message: "invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// StudentID resolves the acting student.
//
// TODO: read this from the auth middleware's claims once the platform
// gateway forwards them; the query parameter is a stopgap.
func StudentID(c *gin.Context) (uint, bool) {
	val, err := strconv.ParseUint(c.Query("student_id"), 10, 32)
	if err != nil || val == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "missing_student", Message: "student_id query parameter is required"})
		return 0, false
	}
	return uint(val), true
}
