package service

import (
	"errors"
	"fmt"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/notification"
	"github.com/edupress/quizengine/internal/platform"
	"github.com/edupress/quizengine/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuizService covers the quiz lifecycle up to and including publication.
type QuizService interface {
	CreateQuiz(req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error)
	UpdateQuiz(id uint, req dto.QuizUpdateDTO) (*dto.QuizResponseDTO, error)
	PublishQuiz(id uint) (*dto.QuizResponseDTO, error)
	DeleteQuiz(id uint) error
	GetQuiz(id uint) (*dto.QuizResponseDTO, error)
	ListQuizzesByClass(classID uint) ([]dto.QuizResponseDTO, error)
}

type quizService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	courses     platform.CourseResolver
	directory   platform.StudentDirectory
	notifier    notification.Notifier
}

func NewQuizService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	courses platform.CourseResolver,
	directory platform.StudentDirectory,
	notifier notification.Notifier,
) QuizService {
	return &quizService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		courses:     courses,
		directory:   directory,
		notifier:    notifier,
	}
}

func validateWindow(quiz *model.Quiz) error {
	if !quiz.StartTime.Before(quiz.DueDate) {
		return apperr.Validation("invalid_window", "start time must be before due date")
	}
	if quiz.MaxAttempts < 1 {
		return apperr.Validation("invalid_max_attempts", "max attempts must be at least 1")
	}
	return nil
}

func (s *quizService) CreateQuiz(req dto.QuizCreateDTO) (*dto.QuizResponseDTO, error) {
	courseID, err := s.resolveCourse(req.CourseID, req.ClassID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.QuizStatusDraft
	}

	quiz := &model.Quiz{
		CourseID:         courseID,
		ClassID:          req.ClassID,
		Title:            req.Title,
		Description:      req.Description,
		StartTime:        req.StartTime,
		DueDate:          req.DueDate,
		DurationMinutes:  req.DurationMinutes,
		PassingMarks:     req.PassingMarks,
		MaxAttempts:      req.MaxAttempts,
		ShuffleQuestions: req.ShuffleQuestions,
		ShowResults:      req.ShowResults,
		Status:           status,
	}
	if err := validateWindow(quiz); err != nil {
		return nil, err
	}

	for _, qReq := range req.Questions {
		question, err := buildQuestion(qReq)
		if err != nil {
			return nil, err
		}
		if question.OrderIndex == 0 {
			question.OrderIndex = len(quiz.Questions) + 1
		}
		quiz.Questions = append(quiz.Questions, *question)
	}

	if status == model.QuizStatusPublished && len(quiz.Questions) == 0 {
		return nil, apperr.Validation("no_questions", "cannot publish a quiz without questions")
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		log.Error().Err(err).Msg("Failed to create quiz")
		return nil, err
	}
	log.Info().Uint("quiz_id", quiz.ID).Uint("course_id", courseID).Str("status", status).Msg("Quiz created")

	if status == model.QuizStatusPublished {
		s.fanOutPublished(quiz)
	}

	return s.toResponse(quiz), nil
}

// resolveCourse prefers a direct course id and falls back to resolving
// the owning course from the class reference.
func (s *quizService) resolveCourse(courseID *uint, classID uint) (uint, error) {
	if courseID != nil && *courseID != 0 {
		return *courseID, nil
	}
	id, err := s.courses.CourseIDForClass(classID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, apperr.NotFound("course_not_found", "no course resolves for the given class")
		}
		return 0, err
	}
	return id, nil
}

func (s *quizService) UpdateQuiz(id uint, req dto.QuizUpdateDTO) (*dto.QuizResponseDTO, error) {
	quiz, err := s.loadQuiz(id)
	if err != nil {
		return nil, err
	}

	// A draft quiz may always be edited; a published one locks once any
	// attempt exists.
	if quiz.Status == model.QuizStatusPublished {
		count, err := s.attemptRepo.CountByQuiz(quiz.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.StateConflict("quiz_has_attempts", "quiz already has attempts and cannot be modified")
		}
	}

	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.StartTime = req.StartTime
	quiz.DueDate = req.DueDate
	quiz.DurationMinutes = req.DurationMinutes
	quiz.PassingMarks = req.PassingMarks
	quiz.MaxAttempts = req.MaxAttempts
	quiz.ShuffleQuestions = req.ShuffleQuestions
	quiz.ShowResults = req.ShowResults
	if err := validateWindow(quiz); err != nil {
		return nil, err
	}

	if err := s.quizRepo.Update(quiz); err != nil {
		log.Error().Err(err).Uint("quiz_id", id).Msg("Failed to update quiz")
		return nil, err
	}
	return s.toResponse(quiz), nil
}

func (s *quizService) PublishQuiz(id uint) (*dto.QuizResponseDTO, error) {
	quiz, err := s.loadQuiz(id)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, apperr.Validation("no_questions", "cannot publish a quiz without questions")
	}

	quiz.Status = model.QuizStatusPublished
	if err := s.quizRepo.Update(quiz); err != nil {
		log.Error().Err(err).Uint("quiz_id", id).Msg("Failed to publish quiz")
		return nil, err
	}
	log.Info().Uint("quiz_id", id).Msg("Quiz published")

	s.fanOutPublished(quiz)
	return s.toResponse(quiz), nil
}

// fanOutPublished enqueues a best-effort notification for every student
// in the owning class. Failures are logged and swallowed; publication
// already committed.
func (s *quizService) fanOutPublished(quiz *model.Quiz) {
	students, err := s.directory.StudentsInClass(quiz.ClassID)
	if err != nil {
		log.Warn().Err(err).Uint("class_id", quiz.ClassID).Msg("Could not load class roster for publish fan-out")
		return
	}
	for _, studentID := range students {
		err := s.notifier.Notify(notification.Notification{
			UserID:        studentID,
			Title:         "New quiz available",
			Message:       fmt.Sprintf("Quiz %q is now open until %s", quiz.Title, quiz.DueDate.Format("Jan 2, 2006 15:04")),
			Type:          notification.TypeQuizPublished,
			ReferenceID:   quiz.ID,
			ReferenceType: "quiz",
		})
		if err != nil {
			log.Warn().Err(err).Uint("student_id", studentID).Uint("quiz_id", quiz.ID).Msg("Publish notification failed")
		}
	}
}

func (s *quizService) DeleteQuiz(id uint) error {
	quiz, err := s.loadQuiz(id)
	if err != nil {
		return err
	}
	count, err := s.attemptRepo.CountByQuiz(quiz.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.StateConflict("quiz_has_attempts", "quiz with attempts cannot be deleted")
	}
	return s.quizRepo.Delete(id)
}

func (s *quizService) GetQuiz(id uint) (*dto.QuizResponseDTO, error) {
	quiz, err := s.loadQuiz(id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(quiz), nil
}

func (s *quizService) ListQuizzesByClass(classID uint) ([]dto.QuizResponseDTO, error) {
	courseID, err := s.courses.CourseIDForClass(classID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.FindByCourse(courseID)
	if err != nil {
		log.Error().Err(err).Uint("class_id", classID).Msg("Failed to list quizzes by class")
		return nil, err
	}
	resp := make([]dto.QuizResponseDTO, 0, len(quizzes))
	for i := range quizzes {
		resp = append(resp, *s.toResponse(&quizzes[i]))
	}
	return resp, nil
}

func (s *quizService) loadQuiz(id uint) (*model.Quiz, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz_not_found", "quiz not found")
		}
		return nil, err
	}
	return quiz, nil
}

func (s *quizService) toResponse(quiz *model.Quiz) *dto.QuizResponseDTO {
	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, quiz); err != nil {
		log.Error().Err(err).Uint("quiz_id", quiz.ID).Msg("Failed to copy quiz to response DTO")
	}
	resp.TotalMarks = quiz.TotalMarks()
	return &resp
}
