package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/princegrewall/quiz-app/internal/question/external"
	"github.com/princegrewall/quiz-app/internal/submission"
)

type stubFetcher struct {
	envelope *external.QuestionEnvelope
	err      error
	amount   int
}

func (s *stubFetcher) Fetch(_ context.Context, amount int) (*external.QuestionEnvelope, error) {
	s.amount = amount
	return s.envelope, s.err
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, sub submission.NewSubmission) (submission.Record, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(submission.Record), args.Error(1)
}

func (m *mockStore) List(ctx context.Context, filter submission.ListFilter) ([]submission.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]submission.Record), args.Error(1)
}

func newHandlers(fetcher questionFetcher, store submissionStore) *Handlers {
	return NewHandlers(fetcher, store, zerolog.Nop())
}

func TestHandleQuizPassesEnvelopeThrough(t *testing.T) {
	fetcher := &stubFetcher{envelope: &external.QuestionEnvelope{
		ResponseCode: 0,
		Results: []external.OpenTDBQuestion{{
			Question:         "Q?",
			CorrectAnswer:    "A",
			IncorrectAnswers: []string{"B", "C", "D"},
		}},
	}}
	h := newHandlers(fetcher, &mockStore{})

	rec := httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodGet, "/quiz?amount=15", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, fetcher.amount)

	var body external.QuestionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 0, body.ResponseCode)
	assert.Len(t, body.Results, 1)
}

func TestHandleQuizForwardsNonZeroResponseCode(t *testing.T) {
	// upstream soft failures ride through with HTTP 200
	fetcher := &stubFetcher{envelope: &external.QuestionEnvelope{ResponseCode: 1}}
	h := newHandlers(fetcher, &mockStore{})

	rec := httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodGet, "/quiz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body external.QuestionEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.ResponseCode)
}

func TestHandleQuizAmountValidation(t *testing.T) {
	fetcher := &stubFetcher{envelope: &external.QuestionEnvelope{}}
	h := newHandlers(fetcher, &mockStore{})

	rec := httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodGet, "/quiz?amount=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodGet, "/quiz?amount=9999", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxAmount, fetcher.amount)
}

func TestHandleQuizUpstreamFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	h := newHandlers(fetcher, &mockStore{})

	rec := httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodGet, "/quiz", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleSubmitStoresAttempt(t *testing.T) {
	store := new(mockStore)
	stored := submission.Record{
		ID:        uuid.New(),
		Score:     9,
		CreatedAt: time.Now().UTC(),
	}
	store.On("Insert", mock.Anything, mock.MatchedBy(func(sub submission.NewSubmission) bool {
		return sub.Score == 9 && sub.Email != nil && *sub.Email == "user@example.com"
	})).Return(stored, nil)

	h := newHandlers(&stubFetcher{}, store)

	body := `{"email":"user@example.com","score":9,"answers":[{"question":"Q?","answer":"A","isCorrect":true}],"meta":{"timeTakenSec":120}}`
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success    bool              `json:"success"`
		Submission submission.Record `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, stored.ID, resp.Submission.ID)
	store.AssertExpectations(t)
}

func TestHandleSubmitWithoutEmail(t *testing.T) {
	store := new(mockStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(sub submission.NewSubmission) bool {
		return sub.Email == nil
	})).Return(submission.Record{ID: uuid.New()}, nil)

	h := newHandlers(&stubFetcher{}, store)

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"email":"","score":0}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestHandleSubmitMalformedBody(t *testing.T) {
	h := newHandlers(&stubFetcher{}, new(mockStore))

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitStoreFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Insert", mock.Anything, mock.Anything).Return(submission.Record{}, errors.New("db down"))

	h := newHandlers(&stubFetcher{}, store)

	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(`{"score":1}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleListSubmissionsCapsLimit(t *testing.T) {
	store := new(mockStore)
	store.On("List", mock.Anything, submission.ListFilter{Email: "user@example.com", Limit: maxLimit}).
		Return([]submission.Record{}, nil)

	h := newHandlers(&stubFetcher{}, store)

	rec := httptest.NewRecorder()
	h.HandleListSubmissions(rec, httptest.NewRequest(http.MethodGet, "/submissions?limit=9999&email=user@example.com", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success     bool                `json:"success"`
		Submissions []submission.Record `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Submissions)
	store.AssertExpectations(t)
}

func TestHandleListSubmissionsDefaultLimit(t *testing.T) {
	store := new(mockStore)
	store.On("List", mock.Anything, submission.ListFilter{Limit: defaultLimit}).
		Return([]submission.Record{{ID: uuid.New(), Score: 5}}, nil)

	h := newHandlers(&stubFetcher{}, store)

	rec := httptest.NewRecorder()
	h.HandleListSubmissions(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestMethodGuards(t *testing.T) {
	h := newHandlers(&stubFetcher{}, new(mockStore))

	rec := httptest.NewRecorder()
	h.HandleQuiz(rec, httptest.NewRequest(http.MethodPost, "/quiz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleSubmit(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleListSubmissions(rec, httptest.NewRequest(http.MethodPost, "/submissions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
