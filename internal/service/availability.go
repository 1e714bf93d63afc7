package service

import (
	"time"

	"github.com/edupress/quizengine/internal/model"
)

// QuizAvailability is the pure policy result for one (quiz, student)
// pair: whether a new attempt may start now and the student's best score
// so far.
type QuizAvailability struct {
	AttemptsUsed int
	CanAttempt   bool
	BestScore    *int
}

// ComputeAvailability derives availability from the quiz's window and the
// student's attempt history. BestScore is the maximum score over
// submitted attempts and stays nil while none are submitted.
func ComputeAvailability(quiz *model.Quiz, attempts []model.QuizAttempt, now time.Time) QuizAvailability {
	av := QuizAvailability{AttemptsUsed: len(attempts)}

	for _, attempt := range attempts {
		if attempt.Status != model.AttemptStatusSubmitted || attempt.Score == nil {
			continue
		}
		if av.BestScore == nil || *attempt.Score > *av.BestScore {
			score := *attempt.Score
			av.BestScore = &score
		}
	}

	av.CanAttempt = quiz.WindowOpen(now) && av.AttemptsUsed < quiz.MaxAttempts
	return av
}
