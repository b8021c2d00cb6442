package practice

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/worddee/internal/errors"
	"github.com/vytor/worddee/internal/models"
)

// State is a step of the practice page flow.
type State string

const (
	StateIdle        State = "idle"
	StateLoadingWord State = "loading-word"
	StateReady       State = "ready"
	StateSubmitting  State = "submitting"
	StateResultShown State = "result-shown"
	StateError       State = "error"
)

var (
	ErrNoWord         = errors.NewValidationError("word", "no word loaded")
	ErrEmptySentence  = errors.NewValidationError("sentence", "must not be blank")
	ErrSubmitInFlight = errors.NewConflictError("a submission is already in flight")
	ErrSubmitLimited  = errors.NewRateLimitError()
)

func errTransition(op string, from State) *errors.AppError {
	return errors.NewConflictError(op + " not allowed in state " + string(from))
}

// Session is one practice page instance: the word on screen, the attempt
// being composed and the last scoring result. It owns its timer.
type Session struct {
	ID string

	clock   Clock
	loc     *time.Location
	timer   *Timer
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	word        *models.Word
	sentence    string
	result      *models.ValidationResult
	scored      string
	overlayOpen bool
	errMsg      string
	lastSeen    time.Time
}

func newSession(id string, clock Clock, loc *time.Location, limiter *rate.Limiter) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:       id,
		clock:    clock,
		loc:      loc,
		timer:    NewTimer(clock),
		limiter:  limiter,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateIdle,
		lastSeen: clock.Now(),
	}
}

// Done is closed once the session is unmounted.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Context is cancelled when the session is unmounted.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Timer exposes the attempt timer for tick streaming.
func (s *Session) Timer() *Timer {
	return s.timer
}

func (s *Session) close() {
	s.cancel()
}

func (s *Session) touch() {
	now := s.clock.Now()
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// BeginLoad marks the word request as issued and starts the clock.
func (s *Session) BeginLoad() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return errTransition("load", s.state)
	}
	s.state = StateLoadingWord
	s.errMsg = ""
	s.timer.Start()
	return nil
}

// WordLoaded stores the word and resets the attempt.
func (s *Session) WordLoaded(w models.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoadingWord {
		return errTransition("word loaded", s.state)
	}
	s.word = &w
	s.sentence = ""
	s.result = nil
	s.scored = ""
	s.overlayOpen = false
	s.errMsg = ""
	s.timer.Start()
	s.state = StateReady
	return nil
}

// LoadFailed leaves the word unset; only a reload recovers.
func (s *Session) LoadFailed(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoadingWord {
		return errTransition("load failed", s.state)
	}
	s.word = nil
	s.errMsg = msg
	s.state = StateError
	return nil
}

// Guard performs the client-side checks that run before any network call.
func (s *Session) Guard(sentence string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guardLocked(sentence)
}

func (s *Session) guardLocked(sentence string) error {
	if s.word == nil {
		return ErrNoWord
	}
	if strings.TrimSpace(sentence) == "" {
		return ErrEmptySentence
	}
	return nil
}

// BeginSubmit validates the sentence and moves to submitting, returning the
// request to send. Only one submission may be in flight per session.
func (s *Session) BeginSubmit(sentence string) (models.ValidateRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return models.ValidateRequest{}, ErrSubmitInFlight
	}
	if s.state == StateReady {
		s.sentence = sentence
	}
	if err := s.guardLocked(sentence); err != nil {
		return models.ValidateRequest{}, err
	}
	if s.state != StateReady {
		return models.ValidateRequest{}, errTransition("submit", s.state)
	}
	if s.limiter != nil && !s.limiter.Allow() {
		return models.ValidateRequest{}, ErrSubmitLimited
	}

	s.errMsg = ""
	s.state = StateSubmitting
	return models.ValidateRequest{
		WordID:          s.word.ID,
		Sentence:        strings.TrimSpace(sentence),
		DurationSeconds: s.timer.ElapsedSeconds(),
		ClientTimeISO:   models.FormatClientTime(s.clock.Now(), s.loc),
	}, nil
}

// Complete stores the scoring result and opens the overlay.
func (s *Session) Complete(res models.ValidationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return errTransition("complete", s.state)
	}
	s.result = &res
	s.scored = strings.TrimSpace(s.sentence)
	s.overlayOpen = true
	s.errMsg = ""
	s.state = StateResultShown
	return nil
}

// SubmitFailed returns to ready with the sentence intact so it can be resent.
func (s *Session) SubmitFailed(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return errTransition("submit failed", s.state)
	}
	s.errMsg = msg
	s.state = StateReady
	return nil
}

// SetError shows msg without changing state.
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}

// Retry clears sentence, result and error and restarts the timer.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if s.word == nil {
		return ErrNoWord
	}
	s.sentence = ""
	s.result = nil
	s.scored = ""
	s.overlayOpen = false
	s.errMsg = ""
	s.timer.Start()
	s.state = StateReady
	return nil
}

// CloseOverlay hides the result overlay; the result stays available.
func (s *Session) CloseOverlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResultShown {
		return errTransition("close overlay", s.state)
	}
	s.overlayOpen = false
	s.state = StateReady
	return nil
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	ID             string
	State          State
	Word           *models.Word
	Sentence       string
	Result         *ResultView
	OverlayOpen    bool
	Error          string
	ElapsedSeconds int64
	Elapsed        string
	StartedAt      time.Time
	StartedAtLabel string
	Busy           bool
	CanSubmit      bool
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.timer.ElapsedSeconds()
	snap := Snapshot{
		ID:             s.ID,
		State:          s.state,
		Sentence:       s.sentence,
		OverlayOpen:    s.overlayOpen,
		Error:          s.errMsg,
		ElapsedSeconds: elapsed,
		Elapsed:        FormatElapsed(elapsed),
		Busy:           s.state == StateLoadingWord || s.state == StateSubmitting,
	}
	if s.word != nil {
		w := *s.word
		snap.Word = &w
	}
	if s.result != nil {
		view := NewResultView(*s.result, s.scored)
		snap.Result = &view
	}
	snap.CanSubmit = snap.Word != nil && s.state == StateReady
	if started := s.timer.StartedAt(); !started.IsZero() {
		snap.StartedAt = started
		if s.loc != nil {
			started = started.In(s.loc)
		}
		snap.StartedAtLabel = started.Format("15:04")
	} else {
		snap.StartedAtLabel = "-"
	}
	return snap
}
