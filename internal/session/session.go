package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/princegrewall/quiz-app/internal/question"
	"github.com/princegrewall/quiz-app/internal/question/external"
)

// State of a session. Loading and the error message are transient; Submitted
// is terminal until Reset.
type State string

const (
	StateUnstarted State = "unstarted"
	StateLoading   State = "loading"
	StateActive    State = "active"
	StateSubmitted State = "submitted"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrFetchInFlight    = errors.New("question fetch already in flight")
	ErrNotActive        = errors.New("session is not active")
	ErrUnknownQuestion  = errors.New("unknown question id")
	ErrAlreadySubmitted = errors.New("session already submitted")
)

// local-part@domain-with-dot, no whitespace
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QuestionSource supplies raw trivia records, normally the backend proxy.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, amount int) ([]external.OpenTDBQuestion, error)
}

// SubmissionSink receives the final payload. Delivery is best-effort; the
// session never waits on it.
type SubmissionSink interface {
	SubmitResult(ctx context.Context, payload SubmissionPayload) error
}

// Options configure a session container.
type Options struct {
	Source QuestionSource
	Sink   SubmissionSink
	Store  SnapshotStore
	Logger zerolog.Logger

	QuestionCount int           // questions per attempt, default 15
	Duration      time.Duration // time budget, default 30m
	TickInterval  time.Duration // countdown granularity, default 1s
	SubmitTimeout time.Duration // deadline for the fire-and-forget write, default 10s
	Rand          *rand.Rand    // option shuffle source, default time-seeded
}

// Session owns one quiz attempt: the question list, current position,
// answers, visited set, countdown and persisted snapshot. Every mutation goes
// through the single mutex, and a snapshot is written to the store after each
// one. Network calls never run under the lock.
type Session struct {
	mu sync.Mutex

	questions []question.Question
	current   int
	answers   map[int]string
	visited   map[int]struct{}
	remaining int
	submitted bool
	email     string
	loading   bool
	errMsg    string

	timerStop chan struct{}

	source QuestionSource
	sink   SubmissionSink
	store  SnapshotStore
	logger zerolog.Logger
	rng    *rand.Rand

	questionCount int
	budgetSeconds int
	tickInterval  time.Duration
	submitTimeout time.Duration
}

// New builds a session, seeding it from a persisted snapshot when one exists
// and deserializes cleanly. Anything else starts from the default state.
func New(ctx context.Context, opts Options) *Session {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 15
	}
	if opts.Duration <= 0 {
		opts.Duration = 30 * time.Minute
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 10 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Session{
		source:        opts.Source,
		sink:          opts.Sink,
		store:         opts.Store,
		logger:        opts.Logger.With().Str("component", "session").Logger(),
		rng:           opts.Rand,
		questionCount: opts.QuestionCount,
		budgetSeconds: int(opts.Duration.Seconds()),
		tickInterval:  opts.TickInterval,
		submitTimeout: opts.SubmitTimeout,
	}

	snap := DefaultSnapshot(s.budgetSeconds)
	if s.store != nil {
		if loaded, err := s.store.Load(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("snapshot load failed, starting fresh")
		} else if loaded != nil && loaded.valid() {
			snap = *loaded
		}
	}
	s.applySnapshot(snap)
	return s
}

// applySnapshot installs snapshot fields; only called before the session is
// shared, so no lock is needed.
func (s *Session) applySnapshot(snap Snapshot) {
	s.questions = snap.Questions
	s.current = snap.CurrentIndex
	s.answers = make(map[int]string, len(snap.Answers))
	for id, ans := range snap.Answers {
		s.answers[id] = ans
	}
	s.visited = make(map[int]struct{}, len(snap.Visited)+1)
	for _, idx := range snap.Visited {
		s.visited[idx] = struct{}{}
	}
	s.visited[s.current] = struct{}{}
	s.remaining = snap.TimeRemaining
	s.submitted = snap.Submitted
	s.email = snap.Email
}

// Start validates the email, records it and fetches the question set.
// Invalid input mutates nothing.
func (s *Session) Start(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	s.email = email
	s.persistLocked()
	s.mu.Unlock()

	return s.FetchQuestions(ctx)
}

// FetchQuestions requests the configured number of questions from the source
// and installs the transformed entities. On failure the session returns to
// Unstarted with a user-visible error message; it never retries on its own.
func (s *Session) FetchQuestions(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrFetchInFlight
	}
	s.loading = true
	s.errMsg = ""
	s.persistLocked()
	s.mu.Unlock()

	raw, err := s.source.FetchQuestions(ctx, s.questionCount)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = "Failed to load quiz questions. Please try again."
		s.persistLocked()
		return fmt.Errorf("fetch questions: %w", err)
	}

	s.questions = question.Transform(raw, s.rng)
	s.current = 0
	s.visited = map[int]struct{}{0: {}}
	s.persistLocked()
	return nil
}

// GoToQuestion moves to index and marks it visited. Out-of-range indices are
// rejected silently.
func (s *Session) GoToQuestion(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.questions) {
		return
	}
	s.current = index
	s.visited[index] = struct{}{}
	s.persistLocked()
}

// NextQuestion advances one position, clamped to the last question.
func (s *Session) NextQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return
	}
	next := s.current + 1
	if next > len(s.questions)-1 {
		next = len(s.questions) - 1
	}
	s.current = next
	s.visited[next] = struct{}{}
	s.persistLocked()
}

// PrevQuestion moves one position back, clamped to the first question.
func (s *Session) PrevQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return
	}
	prev := s.current - 1
	if prev < 0 {
		prev = 0
	}
	s.current = prev
	s.visited[prev] = struct{}{}
	s.persistLocked()
}

// SelectAnswer records the chosen option for a question. Repeat selections
// overwrite; last write wins. Only legal while Active.
func (s *Session) SelectAnswer(questionID int, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if s.loading || len(s.questions) == 0 {
		return ErrNotActive
	}
	if questionID < 0 || questionID >= len(s.questions) {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = answer
	s.persistLocked()
	return nil
}

// StartTimer begins the countdown from the current remaining time. Starting
// an already-running timer is a no-op; there is never more than one countdown.
// When the remaining time hits zero the session auto-submits exactly once.
func (s *Session) StartTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted || s.timerStop != nil {
		return
	}
	stop := make(chan struct{})
	s.timerStop = stop
	go s.countdown(stop)
}

func (s *Session) countdown(stop chan struct{}) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if s.tick() {
				return
			}
		}
	}
}

// tick applies one countdown decrement. It returns true when the countdown
// should stop, either because the session was submitted elsewhere or because
// time ran out and the tick auto-submitted.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return true
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.finalizeLocked(true)
		s.persistLocked()
		return true
	}
	s.persistLocked()
	return false
}

// Submit ends the attempt: the countdown stops, answers freeze, and the
// payload is handed to the sink without waiting for the outcome. The session
// always terminates in Submitted once invoked.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return
	}
	s.finalizeLocked(false)
	s.persistLocked()
}

// finalizeLocked performs the terminal transition. Callers hold the lock.
func (s *Session) finalizeLocked(auto bool) {
	s.stopTimerLocked()
	s.submitted = true

	score := s.scoreLocked()
	payload := SubmissionPayload{
		Email:   s.email,
		Score:   score.Correct,
		Answers: make([]AnswerReport, 0, len(s.questions)),
		Meta:    Meta{TimeTakenSec: s.budgetSeconds - s.remaining},
	}
	for _, res := range s.resultsLocked() {
		payload.Answers = append(payload.Answers, AnswerReport{
			Question:  res.Question.Prompt,
			Answer:    res.UserAnswer,
			IsCorrect: res.IsCorrect,
		})
	}

	s.logger.Info().
		Bool("auto", auto).
		Int("score", score.Correct).
		Int("total", score.Total).
		Msg("quiz submitted")

	if s.sink == nil {
		return
	}
	sink := s.sink
	timeout := s.submitTimeout
	logger := s.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := sink.SubmitResult(ctx, payload); err != nil {
			logger.Warn().Err(err).Msg("submission write failed")
		}
	}()
}

func (s *Session) stopTimerLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}

// Reset discards the session entirely: countdown stopped, state back to the
// default with a fresh time budget, snapshot overwritten.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.applySnapshot(DefaultSnapshot(s.budgetSeconds))
	s.persistLocked()
}

// Results derives per-question outcomes. Pure; callable in any state.
func (s *Session) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultsLocked()
}

func (s *Session) resultsLocked() []Result {
	results := make([]Result, 0, len(s.questions))
	for _, q := range s.questions {
		res := Result{Question: q}
		if ans, ok := s.answers[q.ID]; ok {
			answer := ans
			res.UserAnswer = &answer
			res.IsCorrect = ans == q.CorrectAnswer
		}
		results = append(results, res)
	}
	return results
}

// Score counts exact-match answers. Pure; callable in any state.
func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked()
}

func (s *Session) scoreLocked() Score {
	score := Score{Total: len(s.questions)}
	for _, q := range s.questions {
		if ans, ok := s.answers[q.ID]; ok && ans == q.CorrectAnswer {
			score.Correct++
		}
	}
	return score
}

// State derives the lifecycle state from the session flags.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.submitted:
		return StateSubmitted
	case s.loading:
		return StateLoading
	case len(s.questions) > 0:
		return StateActive
	default:
		return StateUnstarted
	}
}

// Snapshot returns a copy of the current serializable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	answers := make(map[int]string, len(s.answers))
	for id, ans := range s.answers {
		answers[id] = ans
	}
	visited := make([]int, 0, len(s.visited))
	for idx := range s.visited {
		visited = append(visited, idx)
	}
	sort.Ints(visited)
	questions := make([]question.Question, len(s.questions))
	copy(questions, s.questions)

	return Snapshot{
		Questions:     questions,
		CurrentIndex:  s.current,
		Answers:       answers,
		Visited:       visited,
		Submitted:     s.submitted,
		TimeRemaining: s.remaining,
		Email:         s.email,
	}
}

// persistLocked writes the snapshot to the store, best-effort. Callers hold
// the lock; the write is synchronous and failures are only logged.
func (s *Session) persistLocked() {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.store.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot save failed")
	}
}

// CurrentQuestion returns the question at the current position.
func (s *Session) CurrentQuestion() (question.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) == 0 {
		return question.Question{}, false
	}
	return s.questions[s.current], true
}

// CurrentIndex returns the current 0-based position.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Questions returns a copy of the question list.
func (s *Session) Questions() []question.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	questions := make([]question.Question, len(s.questions))
	copy(questions, s.questions)
	return questions
}

// Visited returns the sorted visited position indices.
func (s *Session) Visited() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	visited := make([]int, 0, len(s.visited))
	for idx := range s.visited {
		visited = append(visited, idx)
	}
	sort.Ints(visited)
	return visited
}

// Answer returns the recorded answer for a question, if any.
func (s *Session) Answer(questionID int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ans, ok := s.answers[questionID]
	return ans, ok
}

// Remaining returns the countdown value in seconds.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Email returns the address recorded at start.
func (s *Session) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// ErrMessage returns the user-visible fetch error, empty when none.
func (s *Session) ErrMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}
