package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princegrewall/quiz-app/internal/session"
)

func TestFetchQuestionsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quiz", r.URL.Path)
		assert.Equal(t, "15", r.URL.Query().Get("amount"))
		_, _ = w.Write([]byte(`{"response_code":0,"results":[{"question":"Q?","correct_answer":"A","incorrect_answers":["B","C","D"],"category":"General","difficulty":"easy","type":"multiple"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	results, err := c.FetchQuestions(context.Background(), 15)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].CorrectAnswer)
}

func TestFetchQuestionsNonZeroResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 but the trivia source reports a soft failure
		_, _ = w.Write([]byte(`{"response_code":2,"results":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.FetchQuestions(context.Background(), 15)
	assert.Error(t, err)
}

func TestFetchQuestionsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream error", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.FetchQuestions(context.Background(), 15)
	assert.Error(t, err)
}

func TestSubmitResultPostsPayload(t *testing.T) {
	var received session.SubmissionPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/submit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	answer := "A"
	payload := session.SubmissionPayload{
		Email: "user@example.com",
		Score: 1,
		Answers: []session.AnswerReport{
			{Question: "Q?", Answer: &answer, IsCorrect: true},
		},
		Meta: session.Meta{TimeTakenSec: 42},
	}

	c := New(srv.URL, nil)
	require.NoError(t, c.SubmitResult(context.Background(), payload))
	assert.Equal(t, payload, received)
}

func TestSubmitResultServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.SubmitResult(context.Background(), session.SubmissionPayload{})
	assert.Error(t, err)
}
