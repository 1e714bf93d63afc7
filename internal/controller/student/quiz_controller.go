package student

import (
	"net/http"

	"github.com/edupress/quizengine/internal/controller"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// QuizController is the student-facing surface: availability, starting,
// submitting, and reviewing attempts.
type QuizController struct {
	attemptSvc service.AttemptService
	gradingSvc service.GradingService
}

func NewQuizController(attemptSvc service.AttemptService, gradingSvc service.GradingService) *QuizController {
	return &QuizController{attemptSvc: attemptSvc, gradingSvc: gradingSvc}
}

func (ctrl *QuizController) RegisterRoutes(group *gin.RouterGroup) {
	quizzes := group.Group("/quizzes")
	quizzes.GET("/available/class/:class_id", ctrl.GetAvailableQuizzes)
	quizzes.POST("/:id/start", ctrl.StartAttempt)
	quizzes.POST("/attempts/:id/submit", ctrl.SubmitAttempt)
	quizzes.GET("/attempts/:id", ctrl.GetAttempt)
	quizzes.GET("/:id/my-attempts", ctrl.ListMyAttempts)
}

// GetAvailableQuizzes godoc
// @Summary List published quizzes of a class with availability
// @Description For each published quiz: attempts used, whether a new attempt may start now, and the student's best score.
// @Tags Student - Quizzes
// @Produce json
// @Param class_id path int true "Class ID"
// @Param student_id query int true "Student ID"
// @Success 200 {array} dto.AvailableQuizDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/available/class/{class_id} [get]
func (ctrl *QuizController) GetAvailableQuizzes(c *gin.Context) {
	classID, ok := controller.ParseIDParam(c, "class_id")
	if !ok {
		return
	}
	studentID, ok := controller.StudentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.GetAvailableQuizzes(classID, studentID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartAttempt godoc
// @Summary Start (or resume) a quiz attempt
// @Description Idempotent: an existing in-progress attempt is returned unchanged. 409 outside the attempt window or past the attempt limit.
// @Tags Student - Attempts
// @Produce json
// @Param id path int true "Quiz ID"
// @Param student_id query int true "Student ID"
// @Success 201 {object} dto.AttemptDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /quizzes/{id}/start [post]
func (ctrl *QuizController) StartAttempt(c *gin.Context) {
	quizID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := controller.StudentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.StartAttempt(quizID, studentID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Info().Uint("quiz_id", quizID).Uint("student_id", studentID).Uint("attempt_id", resp.ID).Msg("Attempt start handled")
	c.JSON(http.StatusCreated, resp)
}

// SubmitAttempt godoc
// @Summary Submit the answers of an attempt
// @Description Objective questions are auto-graded immediately; short answers stay pending until a teacher grades them. 409 when already submitted.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param submission body dto.AttemptSubmitDTO true "Answers"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /quizzes/attempts/{id}/submit [post]
func (ctrl *QuizController) SubmitAttempt(c *gin.Context) {
	attemptID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AttemptSubmitDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitAttempt: failed to bind JSON")
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.gradingSvc.SubmitAttempt(attemptID, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAttempt godoc
// @Summary Get an attempt with its answers
// @Tags Student - Attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/attempts/{id} [get]
func (ctrl *QuizController) GetAttempt(c *gin.Context) {
	attemptID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.GetAttempt(attemptID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMyAttempts godoc
// @Summary List the student's attempts for a quiz
// @Tags Student - Attempts
// @Produce json
// @Param id path int true "Quiz ID"
// @Param student_id query int true "Student ID"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Router /quizzes/{id}/my-attempts [get]
func (ctrl *QuizController) ListMyAttempts(c *gin.Context) {
	quizID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := controller.StudentID(c)
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.ListMyAttempts(quizID, studentID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
