package service

import (
	"errors"
	"sort"
	"time"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/platform"
	"github.com/edupress/quizengine/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService gates and creates attempts. The only state transitions
// are NoAttempt -> in_progress (up to MaxAttempts times, sequentially)
// and in_progress -> submitted (owned by GradingService).
type AttemptService interface {
	StartAttempt(quizID, studentID uint) (*dto.AttemptDetailDTO, error)
	GetAvailableQuizzes(classID, studentID uint) ([]dto.AvailableQuizDTO, error)
	GetAttempt(attemptID uint) (*dto.AttemptDetailDTO, error)
	ListMyAttempts(quizID, studentID uint) ([]dto.AttemptSummaryDTO, error)
	ListQuizAttempts(quizID uint) ([]dto.AttemptSummaryDTO, error)
}

type attemptService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	courses     platform.CourseResolver
	directory   platform.StudentDirectory
	now         func() time.Time
}

func NewAttemptService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	courses platform.CourseResolver,
	directory platform.StudentDirectory,
) AttemptService {
	return &attemptService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		courses:     courses,
		directory:   directory,
		now:         time.Now,
	}
}

func (s *attemptService) StartAttempt(quizID, studentID uint) (*dto.AttemptDetailDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz_not_found", "quiz not found")
		}
		return nil, err
	}
	if quiz.Status != model.QuizStatusPublished {
		return nil, apperr.StateConflict("quiz_not_published", "quiz is not published")
	}

	now := s.now()
	if now.Before(quiz.StartTime) {
		return nil, apperr.StateConflict("quiz_not_started", "quiz has not started yet")
	}
	if now.After(quiz.DueDate) {
		return nil, apperr.StateConflict("quiz_ended", "quiz has ended")
	}

	// Idempotent resume: an existing in-progress attempt is returned
	// unchanged, never duplicated.
	if existing, err := s.attemptRepo.FindInProgress(quizID, studentID); err == nil {
		log.Info().Uint("attempt_id", existing.ID).Uint("student_id", studentID).Msg("Resuming in-progress attempt")
		return attemptDetail(existing, quiz)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count, err := s.attemptRepo.CountByQuizAndStudent(quizID, studentID)
	if err != nil {
		return nil, err
	}
	if count >= int64(quiz.MaxAttempts) {
		return nil, apperr.StateConflict("max_attempts_reached", "max attempts reached")
	}

	attempt := &model.QuizAttempt{
		QuizID:        quizID,
		StudentID:     studentID,
		AttemptNumber: int(count) + 1,
		Status:        model.AttemptStatusInProgress,
		StartedAt:     now,
		// Snapshot so later question edits don't change the denominator
		// of an in-flight attempt.
		TotalMarks: quiz.TotalMarks(),
	}

	// A concurrent duplicate start races on the partial unique index;
	// the repository resolves the conflict by handing back the attempt
	// the winner created.
	created, err := s.attemptRepo.CreateInProgress(attempt)
	if err != nil {
		log.Error().Err(err).Uint("quiz_id", quizID).Uint("student_id", studentID).Msg("Failed to start attempt")
		return nil, err
	}
	log.Info().
		Uint("attempt_id", created.ID).
		Uint("quiz_id", quizID).
		Uint("student_id", studentID).
		Int("attempt_number", created.AttemptNumber).
		Msg("Attempt started")
	return attemptDetail(created, quiz)
}

func (s *attemptService) GetAvailableQuizzes(classID, studentID uint) ([]dto.AvailableQuizDTO, error) {
	courseID, err := s.courses.CourseIDForClass(classID)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.FindPublishedByCourse(courseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]dto.AvailableQuizDTO, 0, len(quizzes))
	for i := range quizzes {
		quiz := &quizzes[i]
		attempts, err := s.attemptRepo.FindByQuizAndStudent(quiz.ID, studentID)
		if err != nil {
			return nil, err
		}
		av := ComputeAvailability(quiz, attempts, now)
		rows = append(rows, dto.AvailableQuizDTO{
			QuizID:       quiz.ID,
			Title:        quiz.Title,
			StartTime:    quiz.StartTime,
			DueDate:      quiz.DueDate,
			MaxAttempts:  quiz.MaxAttempts,
			AttemptsUsed: av.AttemptsUsed,
			CanAttempt:   av.CanAttempt,
			BestScore:    av.BestScore,
			TotalMarks:   quiz.TotalMarks(),
		})
	}
	return rows, nil
}

func (s *attemptService) GetAttempt(attemptID uint) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt_not_found", "attempt not found")
		}
		return nil, err
	}
	return attemptDetail(attempt, &attempt.Quiz)
}

func (s *attemptService) ListMyAttempts(quizID, studentID uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindByQuizAndStudent(quizID, studentID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		var summary dto.AttemptSummaryDTO
		copier.Copy(&summary, &attempts[i])
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *attemptService) ListQuizAttempts(quizID uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByQuiz(quizID)
	if err != nil {
		return nil, err
	}
	summaries := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		var summary dto.AttemptSummaryDTO
		copier.Copy(&summary, &attempts[i])
		name, err := s.directory.DisplayName(attempts[i].StudentID)
		if err != nil {
			log.Warn().Err(err).Uint("student_id", attempts[i].StudentID).Msg("Could not resolve student name for attempt listing")
		} else {
			summary.StudentName = name
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// attemptDetail maps an attempt (with whatever associations are loaded)
// onto its detail DTO, ordering answers by their question's position in
// the quiz.
func attemptDetail(attempt *model.QuizAttempt, quiz *model.Quiz) (*dto.AttemptDetailDTO, error) {
	var resp dto.AttemptDetailDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, err
	}
	if quiz != nil && quiz.ID != 0 {
		resp.QuizTitle = quiz.Title
	}
	resp.Percentage = attempt.Percentage()

	if len(attempt.Answers) > 0 {
		sort.SliceStable(attempt.Answers, func(i, j int) bool {
			return attempt.Answers[i].Question.OrderIndex < attempt.Answers[j].Question.OrderIndex
		})
		resp.Answers = make([]dto.AnswerResponseDTO, len(attempt.Answers))
		for i := range attempt.Answers {
			copier.Copy(&resp.Answers[i], &attempt.Answers[i])
		}
	}
	return &resp, nil
}
