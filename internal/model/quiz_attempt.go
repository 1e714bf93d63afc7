package model

import (
	"time"

	"gorm.io/gorm"
)

// Attempt statuses. StatusAutoSubmitted is reserved for a future expiry
// sweep; nothing sets it today.
const (
	AttemptStatusInProgress    = "in_progress"
	AttemptStatusSubmitted     = "submitted"
	AttemptStatusAutoSubmitted = "auto_submitted"
)

type QuizAttempt struct {
	ID            uint `gorm:"primarykey" json:"id"`
	QuizID        uint `json:"quiz_id" gorm:"not null;index"`
	Quiz          Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	StudentID     uint `json:"student_id" gorm:"not null;index"`
	AttemptNumber int  `json:"attempt_number" gorm:"not null"`
	// Status only ever moves in_progress -> submitted; the score may be
	// revised afterward by manual grading but the status never reverts.
	Status      string          `json:"status" gorm:"not null;default:'in_progress'"`
	StartedAt   time.Time       `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	Score       *int            `json:"score,omitempty"`
	TotalMarks  int             `json:"total_marks" gorm:"not null"`
	Answers     []StudentAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Percentage is display-only; the persisted source of truth is Score and
// TotalMarks.
func (a *QuizAttempt) Percentage() *float64 {
	if a.Score == nil || a.TotalMarks == 0 {
		return nil
	}
	pct := float64(*a.Score) / float64(a.TotalMarks) * 100
	pct = float64(int(pct*100+0.5)) / 100
	return &pct
}
