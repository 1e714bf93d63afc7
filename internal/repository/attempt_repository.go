package repository

import (
	"errors"

	"github.com/edupress/quizengine/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

type AttemptRepository interface {
	// CreateInProgress inserts a new in-progress attempt. The partial
	// unique index on (quiz_id, student_id) WHERE status='in_progress'
	// backs the idempotent-resume contract: on a duplicate-key conflict
	// the already-existing in-progress attempt is returned instead of an
	// error.
	CreateInProgress(attempt *model.QuizAttempt) (*model.QuizAttempt, error)
	Update(attempt *model.QuizAttempt) error
	// SaveSubmission persists the attempt's final state and all its
	// answers as one unit.
	SaveSubmission(attempt *model.QuizAttempt) error
	FindByID(id uint) (*model.QuizAttempt, error)
	FindByIDWithDetails(id uint) (*model.QuizAttempt, error)
	FindInProgress(quizID, studentID uint) (*model.QuizAttempt, error)
	FindByQuizAndStudent(quizID, studentID uint) ([]model.QuizAttempt, error)
	FindAllByQuiz(quizID uint) ([]model.QuizAttempt, error)
	CountByQuizAndStudent(quizID, studentID uint) (int64, error)
	CountByQuiz(quizID uint) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) CreateInProgress(attempt *model.QuizAttempt) (*model.QuizAttempt, error) {
	err := r.db.Create(attempt).Error
	if err == nil {
		return attempt, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return r.FindInProgress(attempt.QuizID, attempt.StudentID)
	}
	return nil, err
}

func (r *attemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.db.Save(attempt).Error
}

func (r *attemptRepository) SaveSubmission(attempt *model.QuizAttempt) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range attempt.Answers {
			attempt.Answers[i].AttemptID = attempt.ID
			if err := tx.Create(&attempt.Answers[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.QuizAttempt{}).
			Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"status":       attempt.Status,
				"score":        attempt.Score,
				"submitted_at": attempt.SubmittedAt,
			}).Error
	})
}

func (r *attemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithDetails(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.db.
		Preload("Quiz").
		Preload("Answers.Question.Options").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindInProgress(quizID, studentID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.db.
		Where("quiz_id = ? AND student_id = ? AND status = ?", quizID, studentID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByQuizAndStudent(quizID, studentID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FindAllByQuiz(quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.db.
		Where("quiz_id = ?", quizID).
		Order("student_id ASC, attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) CountByQuizAndStudent(quizID, studentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count, err
}

func (r *attemptRepository) CountByQuiz(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}
