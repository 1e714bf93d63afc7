package teacher

import (
	"net/http"

	"github.com/edupress/quizengine/internal/controller"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// QuizController is the teacher-facing surface: authoring, publication,
// attempt review, and manual grading.
type QuizController struct {
	quizSvc     service.QuizService
	questionSvc service.QuestionService
	attemptSvc  service.AttemptService
	gradingSvc  service.GradingService
}

func NewQuizController(
	quizSvc service.QuizService,
	questionSvc service.QuestionService,
	attemptSvc service.AttemptService,
	gradingSvc service.GradingService,
) *QuizController {
	return &QuizController{
		quizSvc:     quizSvc,
		questionSvc: questionSvc,
		attemptSvc:  attemptSvc,
		gradingSvc:  gradingSvc,
	}
}

func (ctrl *QuizController) RegisterRoutes(group *gin.RouterGroup) {
	quizzes := group.Group("/quizzes")
	quizzes.POST("", ctrl.CreateQuiz)
	quizzes.GET("/:id", ctrl.GetQuiz)
	quizzes.PUT("/:id", ctrl.UpdateQuiz)
	quizzes.DELETE("/:id", ctrl.DeleteQuiz)
	quizzes.GET("/class/:class_id", ctrl.ListQuizzesByClass)
	quizzes.POST("/:id/publish", ctrl.PublishQuiz)
	quizzes.POST("/:id/questions", ctrl.AddQuestion)
	quizzes.PUT("/questions/:id", ctrl.UpdateQuestion)
	quizzes.DELETE("/questions/:id", ctrl.DeleteQuestion)
	quizzes.GET("/:id/attempts", ctrl.ListAttempts)
	quizzes.POST("/answers/:id/grade", ctrl.GradeAnswer)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Description Creates a quiz, optionally with inline questions. The owning course is resolved from the class when course_id is absent.
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Param quiz body dto.QuizCreateDTO true "Quiz data"
// @Success 201 {object} dto.QuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Malformed body"
// @Failure 404 {object} dto.ErrorResponse "Course/class not found"
// @Failure 422 {object} dto.ErrorResponse "Validation failure"
// @Router /teacher/quizzes [post]
func (ctrl *QuizController) CreateQuiz(c *gin.Context) {
	var req dto.QuizCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateQuiz: failed to bind JSON")
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.quizSvc.CreateQuiz(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetQuiz godoc
// @Summary Get a quiz with its questions
// @Tags Teacher - Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{id} [get]
func (ctrl *QuizController) GetQuiz(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.quizSvc.GetQuiz(id)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateQuiz godoc
// @Summary Update quiz metadata
// @Description Fails with 409 when the quiz is published and already has attempts.
// @Tags Teacher - Quizzes
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param quiz body dto.QuizUpdateDTO true "Quiz data"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{id} [put]
func (ctrl *QuizController) UpdateQuiz(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.QuizUpdateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.quizSvc.UpdateQuiz(id, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Fails with 409 once any attempt exists.
// @Tags Teacher - Quizzes
// @Param id path int true "Quiz ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{id} [delete]
func (ctrl *QuizController) DeleteQuiz(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.quizSvc.DeleteQuiz(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListQuizzesByClass godoc
// @Summary List quizzes of a class's course
// @Tags Teacher - Quizzes
// @Produce json
// @Param class_id path int true "Class ID"
// @Success 200 {array} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/quizzes/class/{class_id} [get]
func (ctrl *QuizController) ListQuizzesByClass(c *gin.Context) {
	classID, ok := controller.ParseIDParam(c, "class_id")
	if !ok {
		return
	}
	resp, err := ctrl.quizSvc.ListQuizzesByClass(classID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PublishQuiz godoc
// @Summary Publish a quiz
// @Description Fails with 422 when the quiz has no questions. Notifies every student in the owning class (best-effort).
// @Tags Teacher - Quizzes
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /teacher/quizzes/{id}/publish [post]
func (ctrl *QuizController) PublishQuiz(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.quizSvc.PublishQuiz(id)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddQuestion godoc
// @Summary Add a question to a quiz
// @Tags Teacher - Questions
// @Accept json
// @Produce json
// @Param id path int true "Quiz ID"
// @Param question body dto.QuestionSpecDTO true "Question shape"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Quiz already has attempts"
// @Failure 422 {object} dto.ErrorResponse "Invalid question shape"
// @Router /teacher/quizzes/{id}/questions [post]
func (ctrl *QuizController) AddQuestion(c *gin.Context) {
	quizID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.QuestionSpecDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.questionSvc.AddQuestion(quizID, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateQuestion godoc
// @Summary Replace a question's text, payload, and marks
// @Tags Teacher - Questions
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param question body dto.QuestionSpecDTO true "Replacement shape"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /teacher/quizzes/questions/{id} [put]
func (ctrl *QuizController) UpdateQuestion(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.QuestionSpecDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.questionSvc.UpdateQuestion(id, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags Teacher - Questions
// @Param id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/quizzes/questions/{id} [delete]
func (ctrl *QuizController) DeleteQuestion(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.questionSvc.DeleteQuestion(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAttempts godoc
// @Summary List every attempt of a quiz
// @Tags Teacher - Grading
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Router /teacher/quizzes/{id}/attempts [get]
func (ctrl *QuizController) ListAttempts(c *gin.Context) {
	quizID, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := ctrl.attemptSvc.ListQuizAttempts(quizID)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GradeAnswer godoc
// @Summary Manually grade a short answer
// @Description Sets the answer's marks and recomputes the attempt score from all answers.
// @Tags Teacher - Grading
// @Accept json
// @Produce json
// @Param id path int true "Answer ID"
// @Param grade body dto.GradeAnswerDTO true "Marks to award"
// @Success 200 {object} dto.AnswerResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /teacher/quizzes/answers/{id}/grade [post]
func (ctrl *QuizController) GradeAnswer(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.GradeAnswerDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		controller.BindError(c, err)
		return
	}
	resp, err := ctrl.gradingSvc.GradeShortAnswer(id, req.Marks)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
