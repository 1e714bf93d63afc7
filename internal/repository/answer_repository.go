package repository

import (
	"github.com/edupress/quizengine/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	FindByID(id uint) (*model.StudentAnswer, error)
	Update(answer *model.StudentAnswer) error
	// ApplyGrade persists a manual grade and recomputes the attempt score
	// from every persisted answer inside one transaction, returning the
	// new score. The attempt row is locked first so concurrent grades on
	// sibling answers serialize instead of reading each other's stale
	// marks.
	ApplyGrade(answer *model.StudentAnswer) (int, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) FindByID(id uint) (*model.StudentAnswer, error) {
	var answer model.StudentAnswer
	if err := r.db.Preload("Question").First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepository) Update(answer *model.StudentAnswer) error {
	return r.db.Omit("Question").Save(answer).Error
}

func (r *answerRepository) ApplyGrade(answer *model.StudentAnswer) (int, error) {
	var score int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var attempt model.QuizAttempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&attempt, answer.AttemptID).Error; err != nil {
			return err
		}
		// Omit the preloaded association so grading never upserts the
		// question or its options.
		if err := tx.Omit("Question").Save(answer).Error; err != nil {
			return err
		}
		var siblings []model.StudentAnswer
		if err := tx.Where("attempt_id = ?", answer.AttemptID).Find(&siblings).Error; err != nil {
			return err
		}
		score = 0
		for _, sibling := range siblings {
			score += sibling.MarksAwarded
		}
		return tx.Model(&model.QuizAttempt{}).
			Where("id = ?", answer.AttemptID).
			Update("score", score).Error
	})
	return score, err
}
