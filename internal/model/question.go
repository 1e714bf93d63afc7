package model

import (
	"time"

	"gorm.io/gorm"
)

// Question types form a closed set; anything else is rejected at
// authoring time.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
)

type Question struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuizID     uint   `json:"quiz_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	Type       string `json:"type" gorm:"not null"`
	Marks      int    `json:"marks" gorm:"not null"`
	OrderIndex int    `json:"order_index" gorm:"not null"`
	// CorrectAnswer holds the expected answer for true_false questions
	// (compared case-insensitively). For short_answer it is informational
	// only; grading is manual.
	CorrectAnswer string           `json:"correct_answer,omitempty"`
	Options       []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// IsObjective reports whether the question is auto-graded at submission.
func (q *Question) IsObjective() bool {
	return q.Type == QuestionTypeMultipleChoice || q.Type == QuestionTypeTrueFalse
}

// CorrectOptionID returns the id of the option flagged correct, or 0 when
// none is (only meaningful for multiple_choice questions).
func (q *Question) CorrectOptionID() uint {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	return 0
}

type QuestionOption struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Text       string         `json:"text" gorm:"not null"`
	IsCorrect  bool           `json:"is_correct"`
	OrderIndex int            `json:"order_index" gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
