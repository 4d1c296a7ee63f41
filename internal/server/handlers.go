package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/princegrewall/quiz-app/internal/question/external"
	"github.com/princegrewall/quiz-app/internal/submission"
	httperrors "github.com/princegrewall/quiz-app/pkg/http/errors"
)

const (
	defaultAmount = 15
	maxAmount     = 50
	defaultLimit  = 50
	maxLimit      = 500
)

type questionFetcher interface {
	Fetch(ctx context.Context, amount int) (*external.QuestionEnvelope, error)
}

type submissionStore interface {
	Insert(ctx context.Context, sub submission.NewSubmission) (submission.Record, error)
	List(ctx context.Context, filter submission.ListFilter) ([]submission.Record, error)
}

// Handlers exposes the proxy endpoints: question fetch, submission write and
// the debug submission listing.
type Handlers struct {
	fetcher questionFetcher
	store   submissionStore
	logger  zerolog.Logger
}

// NewHandlers constructs the proxy handler set.
func NewHandlers(fetcher questionFetcher, store submissionStore, logger zerolog.Logger) *Handlers {
	return &Handlers{
		fetcher: fetcher,
		store:   store,
		logger:  logger.With().Str("component", "http").Logger(),
	}
}

// HandleQuiz proxies GET /quiz?amount=n to the trivia source and passes the
// upstream envelope through unchanged, non-zero response_code included; the
// client decides what counts as failure.
func (h *Handlers) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	amount := defaultAmount
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidAmount, "amount must be a positive integer")
			return
		}
		amount = parsed
	}
	if amount > maxAmount {
		amount = maxAmount
	}

	envelope, err := h.fetcher.Fetch(r.Context(), amount)
	if err != nil {
		quizFetches.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Int("amount", amount).Msg("trivia fetch failed")
		httperrors.RespondBadGateway(w, "failed to fetch questions")
		return
	}

	quizFetches.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, envelope)
}

// submitRequest mirrors the payload the session posts on submit.
type submitRequest struct {
	Email   *string             `json:"email"`
	Score   int                 `json:"score"`
	Answers []submission.Answer `json:"answers"`
	Meta    map[string]any      `json:"meta"`
}

// HandleSubmit stores one attempt. POST /submit.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "malformed submission body")
		return
	}
	if req.Email != nil && *req.Email == "" {
		req.Email = nil
	}

	rec, err := h.store.Insert(r.Context(), submission.NewSubmission{
		Email:   req.Email,
		Score:   req.Score,
		Answers: req.Answers,
		Meta:    req.Meta,
	})
	if err != nil {
		submissionsStored.WithLabelValues("error").Inc()
		h.logger.Error().Err(err).Msg("submission insert failed")
		httperrors.RespondInternalError(w, "failed to store submission")
		return
	}

	submissionsStored.WithLabelValues("ok").Inc()
	h.logger.Info().Str("id", rec.ID.String()).Int("score", rec.Score).Msg("submission stored")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"submission": rec,
	})
}

// HandleListSubmissions lists recent attempts for debugging/verification.
// GET /submissions?limit=&email=.
func (h *Handlers) HandleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidLimit, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := h.store.List(r.Context(), submission.ListFilter{
		Email: r.URL.Query().Get("email"),
		Limit: limit,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("submission list failed")
		httperrors.RespondInternalError(w, "failed to list submissions")
		return
	}
	if records == nil {
		records = []submission.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"submissions": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
