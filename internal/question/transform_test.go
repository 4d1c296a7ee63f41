package question

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/princegrewall/quiz-app/internal/question/external"
)

func rawQuestion(prompt, correct string, incorrect ...string) external.OpenTDBQuestion {
	return external.OpenTDBQuestion{
		Category:         "General Knowledge",
		Type:             "multiple",
		Difficulty:       DifficultyEasy,
		Question:         prompt,
		CorrectAnswer:    correct,
		IncorrectAnswers: incorrect,
	}
}

func TestTransformAssignsOrdinalIDs(t *testing.T) {
	raw := []external.OpenTDBQuestion{
		rawQuestion("Q1", "A", "B", "C", "D"),
		rawQuestion("Q2", "X", "Y", "Z"),
	}

	qs := Transform(raw, rand.New(rand.NewSource(1)))
	assert.Len(t, qs, 2)
	assert.Equal(t, 0, qs[0].ID)
	assert.Equal(t, 1, qs[1].ID)
}

func TestTransformOptionsCompleteNoDuplicates(t *testing.T) {
	raw := []external.OpenTDBQuestion{rawQuestion("Q", "correct", "wrong1", "wrong2", "wrong3")}

	qs := Transform(raw, rand.New(rand.NewSource(42)))
	assert.Len(t, qs[0].Options, 4)
	assert.ElementsMatch(t, []string{"correct", "wrong1", "wrong2", "wrong3"}, qs[0].Options)
	assert.Contains(t, qs[0].Options, qs[0].CorrectAnswer)
}

func TestTransformDeterministicForFixedSeed(t *testing.T) {
	raw := []external.OpenTDBQuestion{rawQuestion("Q", "A", "B", "C", "D")}

	first := Transform(raw, rand.New(rand.NewSource(7)))
	second := Transform(raw, rand.New(rand.NewSource(7)))
	assert.Equal(t, first[0].Options, second[0].Options)
}

func TestTransformDecodesHTMLEntities(t *testing.T) {
	raw := []external.OpenTDBQuestion{
		rawQuestion("Who painted &quot;The Starry Night&quot;?", "Vincent van Gogh &amp; co", "Claude Monet"),
	}
	raw[0].Category = "Art &amp; History"

	qs := Transform(raw, rand.New(rand.NewSource(1)))
	assert.Equal(t, `Who painted "The Starry Night"?`, qs[0].Prompt)
	assert.Equal(t, "Vincent van Gogh & co", qs[0].CorrectAnswer)
	assert.Equal(t, "Art & History", qs[0].Category)
	assert.Contains(t, qs[0].Options, "Vincent van Gogh & co")
}

func TestTransformEmptyInput(t *testing.T) {
	qs := Transform(nil, rand.New(rand.NewSource(1)))
	assert.Empty(t, qs)
}
