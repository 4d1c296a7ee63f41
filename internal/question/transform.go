package question

import (
	"html"
	"math/rand"

	"github.com/princegrewall/quiz-app/internal/question/external"
)

// Transform converts raw trivia records into Question entities: HTML entities
// in prompt, options and category are decoded, the correct answer is combined
// with the incorrect ones and shuffled, and IDs follow the original fetch
// order. The caller supplies the rand source so a fixed seed yields a fixed
// option order.
func Transform(raw []external.OpenTDBQuestion, rng *rand.Rand) []Question {
	questions := make([]Question, 0, len(raw))
	for i, r := range raw {
		options := make([]string, 0, len(r.IncorrectAnswers)+1)
		options = append(options, html.UnescapeString(r.CorrectAnswer))
		for _, inc := range r.IncorrectAnswers {
			options = append(options, html.UnescapeString(inc))
		}
		shuffle(options, rng)

		questions = append(questions, Question{
			ID:            i,
			Prompt:        html.UnescapeString(r.Question),
			Options:       options,
			CorrectAnswer: html.UnescapeString(r.CorrectAnswer),
			Category:      html.UnescapeString(r.Category),
			Difficulty:    r.Difficulty,
		})
	}
	return questions
}

// shuffle applies a Fisher-Yates permutation in place; every ordering of the
// options is equally likely.
func shuffle(options []string, rng *rand.Rand) {
	for i := len(options) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}
