package session

import (
	"github.com/princegrewall/quiz-app/internal/question"
)

// Snapshot is the serialized form of a session written to the snapshot store
// after every mutation. Field names follow the wire format the front end
// persists, so a snapshot survives a process swap.
type Snapshot struct {
	Questions     []question.Question `json:"questions"`
	CurrentIndex  int                 `json:"currentQuestionIndex"`
	Answers       map[int]string      `json:"userAnswers"`
	Visited       []int               `json:"visitedQuestions"`
	Submitted     bool                `json:"isSubmitted"`
	TimeRemaining int                 `json:"timeRemaining"`
	Email         string              `json:"userEmail"`
}

// DefaultSnapshot is the state of a fresh attempt: no questions, position 0,
// nothing answered, the first position visited, and the full time budget.
func DefaultSnapshot(budgetSeconds int) Snapshot {
	return Snapshot{
		Questions:     nil,
		CurrentIndex:  0,
		Answers:       map[int]string{},
		Visited:       []int{0},
		Submitted:     false,
		TimeRemaining: budgetSeconds,
		Email:         "",
	}
}

// valid reports whether a rehydrated snapshot is internally consistent enough
// to seed a session. Anything else is silently replaced by the default.
func (s Snapshot) valid() bool {
	if s.TimeRemaining < 0 {
		return false
	}
	if len(s.Questions) == 0 {
		return s.CurrentIndex == 0
	}
	return s.CurrentIndex >= 0 && s.CurrentIndex < len(s.Questions)
}
