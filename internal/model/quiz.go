package model

import (
	"time"

	"gorm.io/gorm"
)

// Quiz statuses. StatusClosed is reserved in the data model; no code path
// currently transitions a quiz into it (pending product decision on an
// expiry sweep).
const (
	QuizStatusDraft     = "draft"
	QuizStatusPublished = "published"
	QuizStatusClosed    = "closed"
)

type Quiz struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	CourseID         uint           `json:"course_id" gorm:"not null;index"`
	ClassID          uint           `json:"class_id" gorm:"not null;index"`
	Title            string         `json:"title" gorm:"not null"`
	Description      string         `json:"description,omitempty"`
	StartTime        time.Time      `json:"start_time" gorm:"not null"`
	DueDate          time.Time      `json:"due_date" gorm:"not null"`
	DurationMinutes  int            `json:"duration_minutes"`
	MaxAttempts      int            `json:"max_attempts" gorm:"not null;default:1"`
	PassingMarks     int            `json:"passing_marks"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	ShowResults      bool           `json:"show_results"`
	Status           string         `json:"status" gorm:"not null;default:'draft';index"`
	Questions        []Question     `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TotalMarks is the quiz's current maximum grade: the sum of the marks of
// all its questions. Attempts snapshot this value at start time so later
// question edits do not change an in-flight attempt's denominator.
func (q *Quiz) TotalMarks() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Marks
	}
	return total
}

// WindowOpen reports whether new attempts may begin at the given instant.
func (q *Quiz) WindowOpen(now time.Time) bool {
	return !now.Before(q.StartTime) && !now.After(q.DueDate)
}
