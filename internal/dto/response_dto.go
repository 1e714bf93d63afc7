package dto

import "time"

type OptionResponseDTO struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct,omitempty"`
	OrderIndex int    `json:"order_index"`
}

type QuestionResponseDTO struct {
	ID            uint                `json:"id"`
	QuizID        uint                `json:"quiz_id"`
	Text          string              `json:"text"`
	Type          string              `json:"type"`
	Marks         int                 `json:"marks"`
	OrderIndex    int                 `json:"order_index"`
	CorrectAnswer string              `json:"correct_answer,omitempty"`
	Options       []OptionResponseDTO `json:"options,omitempty"`
}

type QuizResponseDTO struct {
	ID               uint                  `json:"id"`
	CourseID         uint                  `json:"course_id"`
	ClassID          uint                  `json:"class_id"`
	Title            string                `json:"title"`
	Description      string                `json:"description,omitempty"`
	StartTime        time.Time             `json:"start_time"`
	DueDate          time.Time             `json:"due_date"`
	DurationMinutes  int                   `json:"duration_minutes"`
	PassingMarks     int                   `json:"passing_marks"`
	MaxAttempts      int                   `json:"max_attempts"`
	ShuffleQuestions bool                  `json:"shuffle_questions"`
	ShowResults      bool                  `json:"show_results"`
	Status           string                `json:"status"`
	TotalMarks       int                   `json:"total_marks"`
	Questions        []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// AvailableQuizDTO is one row of a student's availability listing.
type AvailableQuizDTO struct {
	QuizID       uint      `json:"quiz_id"`
	Title        string    `json:"title"`
	StartTime    time.Time `json:"start_time"`
	DueDate      time.Time `json:"due_date"`
	MaxAttempts  int       `json:"max_attempts"`
	AttemptsUsed int       `json:"attempts_used"`
	CanAttempt   bool      `json:"can_attempt"`
	BestScore    *int      `json:"best_score,omitempty"`
	TotalMarks   int       `json:"total_marks"`
}

type AnswerResponseDTO struct {
	ID                    uint                `json:"id"`
	QuestionID            uint                `json:"question_id"`
	Question              QuestionResponseDTO `json:"question,omitempty"`
	SelectedOptionID      *uint               `json:"selected_option_id,omitempty"`
	AnswerText            string              `json:"answer_text,omitempty"`
	IsCorrect             *bool               `json:"is_correct,omitempty"`
	MarksAwarded          int                 `json:"marks_awarded"`
	RequiresManualGrading bool                `json:"requires_manual_grading"`
}

type AttemptDetailDTO struct {
	ID            uint                `json:"id"`
	QuizID        uint                `json:"quiz_id"`
	QuizTitle     string              `json:"quiz_title,omitempty"`
	StudentID     uint                `json:"student_id"`
	AttemptNumber int                 `json:"attempt_number"`
	Status        string              `json:"status"`
	StartedAt     time.Time           `json:"started_at"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	Score         *int                `json:"score,omitempty"`
	TotalMarks    int                 `json:"total_marks"`
	Percentage    *float64            `json:"percentage,omitempty"`
	Answers       []AnswerResponseDTO `json:"answers,omitempty"`
}

type AttemptSummaryDTO struct {
	ID            uint       `json:"id"`
	QuizID        uint       `json:"quiz_id"`
	StudentID     uint       `json:"student_id"`
	StudentName   string     `json:"student_name,omitempty"`
	AttemptNumber int        `json:"attempt_number"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	Score         *int       `json:"score,omitempty"`
	TotalMarks    int        `json:"total_marks"`
}

// ErrorResponse carries a machine-readable code alongside the human
// message.
type ErrorResponse struct {
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
