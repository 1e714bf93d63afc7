package model

import (
	"time"

	"gorm.io/gorm"
)

type StudentAnswer struct {
	ID               uint     `gorm:"primarykey" json:"id"`
	AttemptID        uint     `json:"attempt_id" gorm:"not null;index"`
	QuestionID       uint     `json:"question_id" gorm:"not null;index"`
	Question         Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOptionID *uint    `json:"selected_option_id,omitempty"`
	AnswerText       string   `json:"answer_text,omitempty" gorm:"type:text"`
	// IsCorrect stays nil for short answers until a teacher grades them.
	IsCorrect             *bool          `json:"is_correct,omitempty"`
	MarksAwarded          int            `json:"marks_awarded"`
	RequiresManualGrading bool           `json:"requires_manual_grading"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}
