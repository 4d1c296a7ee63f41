package submission

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one per-question line of a stored attempt. A nil Answer means the
// question was left blank.
type Answer struct {
	Question  string  `json:"question"`
	Answer    *string `json:"answer"`
	IsCorrect bool    `json:"isCorrect"`
}

// NewSubmission is the write model for one quiz attempt.
type NewSubmission struct {
	Email   *string
	Score   int
	Answers []Answer
	Meta    map[string]any
}

// Record is a stored attempt with its server-assigned identity.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	Email     *string        `json:"email"`
	Score     int            `json:"score"`
	Answers   []Answer       `json:"answers"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ListFilter narrows a listing query. Limit is applied after capping by the
// handler; zero means the repository default of 50.
type ListFilter struct {
	Email string
	Limit int
}
