package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizTotalMarks(t *testing.T) {
	quiz := &Quiz{Questions: []Question{
		{Marks: 5},
		{Marks: 2},
		{Marks: 3},
	}}
	assert.Equal(t, 10, quiz.TotalMarks())

	assert.Zero(t, (&Quiz{}).TotalMarks())
}

func TestQuizWindowOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC)
	quiz := &Quiz{StartTime: start, DueDate: due}

	assert.True(t, quiz.WindowOpen(start), "start instant is inside the window")
	assert.True(t, quiz.WindowOpen(due), "due instant is inside the window")
	assert.True(t, quiz.WindowOpen(start.Add(time.Hour)))
	assert.False(t, quiz.WindowOpen(start.Add(-time.Second)))
	assert.False(t, quiz.WindowOpen(due.Add(time.Second)))
}

func TestQuestionCorrectOptionID(t *testing.T) {
	question := &Question{Type: QuestionTypeMultipleChoice, Options: []QuestionOption{
		{ID: 100},
		{ID: 101, IsCorrect: true},
	}}
	assert.Equal(t, uint(101), question.CorrectOptionID())

	none := &Question{Type: QuestionTypeMultipleChoice, Options: []QuestionOption{{ID: 100}}}
	assert.Zero(t, none.CorrectOptionID())
}

func TestQuestionIsObjective(t *testing.T) {
	assert.True(t, (&Question{Type: QuestionTypeMultipleChoice}).IsObjective())
	assert.True(t, (&Question{Type: QuestionTypeTrueFalse}).IsObjective())
	assert.False(t, (&Question{Type: QuestionTypeShortAnswer}).IsObjective())
}

func TestAttemptPercentage(t *testing.T) {
	score := 7
	attempt := &QuizAttempt{Score: &score, TotalMarks: 10}
	pct := attempt.Percentage()
	require.NotNil(t, pct)
	assert.Equal(t, 70.0, *pct)

	third := 1
	attempt = &QuizAttempt{Score: &third, TotalMarks: 3}
	pct = attempt.Percentage()
	require.NotNil(t, pct)
	assert.Equal(t, 33.33, *pct)
}

func TestAttemptPercentageUndefined(t *testing.T) {
	assert.Nil(t, (&QuizAttempt{TotalMarks: 10}).Percentage(), "no score yet")

	score := 0
	assert.Nil(t, (&QuizAttempt{Score: &score, TotalMarks: 0}).Percentage(), "zero total marks")
}
