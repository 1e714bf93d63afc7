package dto

import "time"

// OptionSpecDTO is one choice of a multiple_choice question.
type OptionSpecDTO struct {
	Text       string `json:"text" binding:"required"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// QuestionSpecDTO carries a question's full shape. Options are only
// meaningful for multiple_choice; correct_answer only for true_false and
// (informationally) short_answer.
type QuestionSpecDTO struct {
	Text          string          `json:"text" binding:"required"`
	Type          string          `json:"type" binding:"required,oneof=multiple_choice true_false short_answer"`
	Marks         int             `json:"marks" binding:"required,gt=0"`
	OrderIndex    int             `json:"order_index"`
	CorrectAnswer string          `json:"correct_answer"`
	Options       []OptionSpecDTO `json:"options" binding:"omitempty,dive"`
}

// QuizCreateDTO creates a quiz, optionally with inline questions. Either
// course_id or class_id must resolve to a course.
type QuizCreateDTO struct {
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	CourseID         *uint             `json:"course_id"`
	ClassID          uint              `json:"class_id" binding:"required"`
	StartTime        time.Time         `json:"start_time" binding:"required"`
	DueDate          time.Time         `json:"due_date" binding:"required"`
	DurationMinutes  int               `json:"duration_minutes"`
	PassingMarks     int               `json:"passing_marks"`
	MaxAttempts      int               `json:"max_attempts" binding:"required,min=1"`
	ShuffleQuestions bool              `json:"shuffle_questions"`
	ShowResults      bool              `json:"show_results"`
	Status           string            `json:"status" binding:"omitempty,oneof=draft published"`
	Questions        []QuestionSpecDTO `json:"questions" binding:"omitempty,dive"`
}

// QuizUpdateDTO updates quiz metadata; the question list is managed
// through the question endpoints.
type QuizUpdateDTO struct {
	Title            string    `json:"title" binding:"required"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time" binding:"required"`
	DueDate          time.Time `json:"due_date" binding:"required"`
	DurationMinutes  int       `json:"duration_minutes"`
	PassingMarks     int       `json:"passing_marks"`
	MaxAttempts      int       `json:"max_attempts" binding:"required,min=1"`
	ShuffleQuestions bool      `json:"shuffle_questions"`
	ShowResults      bool      `json:"show_results"`
}

// StudentAnswerDTO is one answer within an attempt submission.
type StudentAnswerDTO struct {
	QuestionID       uint   `json:"question_id" binding:"required"`
	AnswerText       string `json:"answer_text"`
	SelectedOptionID *uint  `json:"selected_option_id"`
}

// AttemptSubmitDTO is the request body for submitting an attempt.
type AttemptSubmitDTO struct {
	Answers []StudentAnswerDTO `json:"answers" binding:"required,min=1,dive"`
}

// GradeAnswerDTO is the teacher's manual grade for a short answer.
type GradeAnswerDTO struct {
	Marks int `json:"marks" binding:"min=0"`
}
