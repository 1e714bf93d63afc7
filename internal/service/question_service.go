package service

import (
	"errors"
	"fmt"

	"github.com/edupress/quizengine/internal/apperr"
	"github.com/edupress/quizengine/internal/dto"
	"github.com/edupress/quizengine/internal/model"
	"github.com/edupress/quizengine/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// QuestionService owns one question's shape: validating it per type and
// persisting it (with its options) as a unit.
type QuestionService interface {
	AddQuestion(quizID uint, req dto.QuestionSpecDTO) (*dto.QuestionResponseDTO, error)
	UpdateQuestion(id uint, req dto.QuestionSpecDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(id uint) error
}

type questionService struct {
	questionRepo repository.QuestionRepository
	quizRepo     repository.QuizRepository
	attemptRepo  repository.AttemptRepository
}

func NewQuestionService(
	questionRepo repository.QuestionRepository,
	quizRepo repository.QuizRepository,
	attemptRepo repository.AttemptRepository,
) QuestionService {
	return &questionService{questionRepo: questionRepo, quizRepo: quizRepo, attemptRepo: attemptRepo}
}

// buildQuestion validates a question spec and converts it into a model.
// Multiple choice needs at least two options with exactly one flagged
// correct; true/false and short answer ignore any options sent.
func buildQuestion(req dto.QuestionSpecDTO) (*model.Question, error) {
	if req.Marks <= 0 {
		return nil, apperr.Validation("invalid_marks", "question marks must be positive")
	}

	question := &model.Question{
		Text:          req.Text,
		Type:          req.Type,
		Marks:         req.Marks,
		OrderIndex:    req.OrderIndex,
		CorrectAnswer: req.CorrectAnswer,
	}

	switch req.Type {
	case model.QuestionTypeMultipleChoice:
		if len(req.Options) < 2 {
			return nil, apperr.Validation("too_few_options", "multiple choice questions need at least 2 options")
		}
		correct := 0
		for i, opt := range req.Options {
			if opt.IsCorrect {
				correct++
			}
			question.Options = append(question.Options, model.QuestionOption{
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
				OrderIndex: orderOrDefault(opt.OrderIndex, i),
			})
		}
		if correct != 1 {
			return nil, apperr.Validation("invalid_correct_option",
				fmt.Sprintf("multiple choice questions need exactly one correct option, got %d", correct))
		}
		question.CorrectAnswer = ""
	case model.QuestionTypeTrueFalse:
		if req.CorrectAnswer == "" {
			return nil, apperr.Validation("missing_correct_answer", "true/false questions need a correct answer")
		}
		question.Options = nil
	case model.QuestionTypeShortAnswer:
		// CorrectAnswer, when present, is informational only; grading is
		// manual.
		question.Options = nil
	default:
		return nil, apperr.Validation("invalid_question_type",
			fmt.Sprintf("unknown question type %q", req.Type))
	}

	return question, nil
}

func orderOrDefault(order, fallback int) int {
	if order > 0 {
		return order
	}
	return fallback + 1
}

// guardStructuralEdit enforces the authoring lock: a published quiz with
// any attempts is immutable to structural edits.
func (s *questionService) guardStructuralEdit(quiz *model.Quiz) error {
	if quiz.Status != model.QuizStatusPublished {
		return nil
	}
	count, err := s.attemptRepo.CountByQuiz(quiz.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.StateConflict("quiz_has_attempts", "quiz already has attempts and cannot be modified")
	}
	return nil
}

func (s *questionService) AddQuestion(quizID uint, req dto.QuestionSpecDTO) (*dto.QuestionResponseDTO, error) {
	quiz, err := s.quizRepo.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quiz_not_found", "quiz not found")
		}
		return nil, err
	}
	if err := s.guardStructuralEdit(quiz); err != nil {
		return nil, err
	}

	question, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}
	question.QuizID = quiz.ID

	if err := s.questionRepo.Create(question); err != nil {
		log.Error().Err(err).Uint("quiz_id", quizID).Msg("Failed to create question")
		return nil, err
	}

	var resp dto.QuestionResponseDTO
	copier.Copy(&resp, question)
	return &resp, nil
}

func (s *questionService) UpdateQuestion(id uint, req dto.QuestionSpecDTO) (*dto.QuestionResponseDTO, error) {
	existing, err := s.questionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("question_not_found", "question not found")
		}
		return nil, err
	}

	quiz, err := s.quizRepo.FindByID(existing.QuizID)
	if err != nil {
		return nil, err
	}
	if err := s.guardStructuralEdit(quiz); err != nil {
		return nil, err
	}

	replacement, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}

	existing.Text = replacement.Text
	existing.Type = replacement.Type
	existing.Marks = replacement.Marks
	existing.CorrectAnswer = replacement.CorrectAnswer
	if replacement.OrderIndex > 0 {
		existing.OrderIndex = replacement.OrderIndex
	}

	// The option set is always replaced whole; partial option edits are
	// not supported.
	if err := s.questionRepo.ReplaceOptions(existing, replacement.Options); err != nil {
		log.Error().Err(err).Uint("question_id", id).Msg("Failed to update question")
		return nil, err
	}

	var resp dto.QuestionResponseDTO
	copier.Copy(&resp, existing)
	return &resp, nil
}

// DeleteQuestion is unconditional: historical answers referencing the
// question survive as grading records.
func (s *questionService) DeleteQuestion(id uint) error {
	if _, err := s.questionRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("question_not_found", "question not found")
		}
		return err
	}
	return s.questionRepo.Delete(id)
}
