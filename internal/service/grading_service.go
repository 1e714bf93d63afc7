package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/notification"
	"github.com/edupress/quizengine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GradingService turns submitted answers into a score: objective types
// immediately at submission, short answers later when a teacher grades
// them.
type GradingService interface {
	SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptDetailDTO, error)
	GradeShortAnswer(answerID uint, marks int) (*dto.AnswerResponseDTO, error)
}

type gradingService struct {
	quizRepo    repository.QuizRepository
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	notifier    notification.Notifier
	now         func() time.Time
}

func NewGradingService(
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	notifier notification.Notifier,
) GradingService {
	return &gradingService{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// gradeAnswer scores one submitted answer against its question. Short
// answers come back ungraded (nil IsCorrect, zero marks) and flagged for
// manual grading.
func gradeAnswer(question *model.Question, submitted dto.StudentAnswerDTO) model.StudentAnswer {
	answer := model.StudentAnswer{
		QuestionID:       question.ID,
		SelectedOptionID: submitted.SelectedOptionID,
		AnswerText:       submitted.AnswerText,
	}

	switch question.Type {
	case model.QuestionTypeMultipleChoice:
		correct := submitted.SelectedOptionID != nil &&
			*submitted.SelectedOptionID == question.CorrectOptionID() &&
			question.CorrectOptionID() != 0
		answer.IsCorrect = &correct
		if correct {
			answer.MarksAwarded = question.Marks
		}
	case model.QuestionTypeTrueFalse:
		correct := strings.EqualFold(strings.TrimSpace(submitted.AnswerText), question.CorrectAnswer)
		answer.IsCorrect = &correct
		if correct {
			answer.MarksAwarded = question.Marks
		}
	case model.QuestionTypeShortAnswer:
		answer.RequiresManualGrading = true
	}
	return answer
}

func (s *gradingService) SubmitAttempt(attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("attempt_not_found", "attempt not found")
		}
		return nil, err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, apperr.StateConflict("already_submitted", "attempt already submitted")
	}

	quiz, err := s.quizRepo.FindByIDWithQuestions(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	questionMap := make(map[uint]*model.Question, len(quiz.Questions))
	for i := range quiz.Questions {
		questionMap[quiz.Questions[i].ID] = &quiz.Questions[i]
	}

	score := 0
	// An attempt holds at most one answer per question; when the payload
	// repeats a question the last entry wins.
	answerIndex := make(map[uint]int, len(req.Answers))
	for _, submitted := range req.Answers {
		question, ok := questionMap[submitted.QuestionID]
		if !ok {
			log.Warn().Uint("question_id", submitted.QuestionID).Uint("quiz_id", quiz.ID).
				Msg("Submitted answer for a question not in this quiz, skipping")
			continue
		}
		answer := gradeAnswer(question, submitted)
		if idx, dup := answerIndex[submitted.QuestionID]; dup {
			log.Warn().Uint("question_id", submitted.QuestionID).Uint("attempt_id", attemptID).
				Msg("Duplicate answer for question, keeping the last")
			score += answer.MarksAwarded - attempt.Answers[idx].MarksAwarded
			attempt.Answers[idx] = answer
			continue
		}
		answerIndex[submitted.QuestionID] = len(attempt.Answers)
		score += answer.MarksAwarded
		attempt.Answers = append(attempt.Answers, answer)
	}
	if len(attempt.Answers) == 0 {
		return nil, apperr.Validation("no_valid_answers", "no submitted answer matches a question of this quiz")
	}

	now := s.now()
	attempt.Score = &score
	attempt.SubmittedAt = &now
	attempt.Status = model.AttemptStatusSubmitted

	// Attempt and all its answers land as one unit.
	if err := s.attemptRepo.SaveSubmission(attempt); err != nil {
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("Failed to persist submission")
		return nil, err
	}
	log.Info().Uint("attempt_id", attemptID).Int("score", score).Int("total_marks", attempt.TotalMarks).Msg("Attempt submitted")

	// Best-effort; the submission already committed.
	if err := s.notifier.Notify(notification.Notification{
		UserID:        attempt.StudentID,
		Title:         "Submission received",
		Message:       fmt.Sprintf("Your attempt %d for %q was received", attempt.AttemptNumber, quiz.Title),
		Type:          notification.TypeSubmissionReceived,
		ReferenceID:   attempt.ID,
		ReferenceType: "quiz_attempt",
	}); err != nil {
		log.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("Submission notification failed")
	}

	detailed, err := s.attemptRepo.FindByIDWithDetails(attempt.ID)
	if err != nil {
		log.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("Could not reload attempt for response, using in-memory state")
		detailed = attempt
		detailed.Quiz = *quiz
	}
	return attemptDetail(detailed, &detailed.Quiz)
}

func (s *gradingService) GradeShortAnswer(answerID uint, marks int) (*dto.AnswerResponseDTO, error) {
	answer, err := s.answerRepo.FindByID(answerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("answer_not_found", "answer not found")
		}
		return nil, err
	}
	if answer.Question.Type != model.QuestionTypeShortAnswer {
		return nil, apperr.Validation("not_manually_gradable", "only short answers are graded manually")
	}
	if marks < 0 || marks > answer.Question.Marks {
		return nil, apperr.Validation("invalid_grade",
			fmt.Sprintf("marks must be between 0 and %d", answer.Question.Marks))
	}

	correct := marks > 0
	answer.MarksAwarded = marks
	answer.IsCorrect = &correct
	answer.RequiresManualGrading = false

	// The attempt score is recomputed from every persisted answer inside
	// the grading transaction, so a regrade, a retry, or a concurrent
	// grade on a sibling answer can never double-count or drop marks.
	score, err := s.answerRepo.ApplyGrade(answer)
	if err != nil {
		log.Error().Err(err).Uint("answer_id", answerID).Msg("Failed to apply manual grade")
		return nil, err
	}
	log.Info().Uint("answer_id", answerID).Int("marks", marks).Int("attempt_score", score).Msg("Short answer graded")

	if attempt, err := s.attemptRepo.FindByID(answer.AttemptID); err == nil {
		if err := s.notifier.Notify(notification.Notification{
			UserID:        attempt.StudentID,
			Title:         "Answer graded",
			Message:       fmt.Sprintf("A short answer was graded; your score is now %d/%d", score, attempt.TotalMarks),
			Type:          notification.TypeAnswerGraded,
			ReferenceID:   attempt.ID,
			ReferenceType: "quiz_attempt",
		}); err != nil {
			log.Warn().Err(err).Uint("attempt_id", attempt.ID).Msg("Grading notification failed")
		}
	}

	var resp dto.AnswerResponseDTO
	resp.ID = answer.ID
	resp.QuestionID = answer.QuestionID
	resp.SelectedOptionID = answer.SelectedOptionID
	resp.AnswerText = answer.AnswerText
	resp.IsCorrect = answer.IsCorrect
	resp.MarksAwarded = answer.MarksAwarded
	resp.RequiresManualGrading = answer.RequiresManualGrading
	return &resp, nil
}
