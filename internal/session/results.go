package session

import (
	"github.com/princegrewall/quiz-app/internal/question"
)

// Result pairs a question with the user's answer. Answer is nil when the
// question was left unanswered; IsCorrect is exact string equality against
// the correct option.
type Result struct {
	Question   question.Question
	UserAnswer *string
	IsCorrect  bool
}

// Score summarizes an attempt.
type Score struct {
	Correct int
	Total   int
}

// Percent reports the score as 0-100. A session with no questions scores 0.
func (s Score) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total) * 100
}

// SubmissionPayload is the body POSTed to the backend proxy on submit.
type SubmissionPayload struct {
	Email   string         `json:"email,omitempty"`
	Score   int            `json:"score"`
	Answers []AnswerReport `json:"answers"`
	Meta    Meta           `json:"meta"`
}

// AnswerReport is one per-question line of a submission.
type AnswerReport struct {
	Question  string  `json:"question"`
	Answer    *string `json:"answer"`
	IsCorrect bool    `json:"isCorrect"`
}

// Meta carries free-form attempt metadata.
type Meta struct {
	TimeTakenSec int `json:"timeTakenSec"`
}
