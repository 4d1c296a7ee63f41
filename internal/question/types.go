package question

// Difficulty labels as reported by the trivia source.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is the normalized entity presented to the user. IDs are ordinals
// assigned by fetch order; options are shuffled once at load and fixed
// thereafter. Immutable after creation.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
}
