package practice

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
)

// Registry holds the live practice page instances, one per browser session.
type Registry struct {
	clock       Clock
	loc         *time.Location
	metrics     *metrics.Metrics
	submitEvery time.Duration
	submitBurst int
	log         *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

type RegistryOption func(*Registry)

// WithClock overrides the clock handed to new sessions.
func WithClock(c Clock) RegistryOption {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithLocation sets the zone used for client_time_iso and the start label.
func WithLocation(loc *time.Location) RegistryOption {
	return func(r *Registry) {
		r.loc = loc
	}
}

// WithRegistryMetrics reports the session count to m.
func WithRegistryMetrics(m *metrics.Metrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithSubmitLimit allows perMinute submissions per session, bursting to the same.
func WithSubmitLimit(perMinute int) RegistryOption {
	return func(r *Registry) {
		if perMinute <= 0 {
			r.submitEvery = 0
			return
		}
		r.submitEvery = time.Minute / time.Duration(perMinute)
		r.submitBurst = perMinute
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clock:    SystemClock{},
		loc:      time.Local,
		sessions: make(map[string]*Session),
		log:      logger.Default().WithPrefix("practice-registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount starts a fresh page instance for id, unmounting any previous one.
func (r *Registry) Mount(id string) *Session {
	var limiter *rate.Limiter
	if r.submitEvery > 0 {
		limiter = rate.NewLimiter(rate.Every(r.submitEvery), r.submitBurst)
	}
	s := newSession(id, r.clock, r.loc, limiter)

	r.mu.Lock()
	prev := r.sessions[id]
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	if prev != nil {
		prev.close()
		r.log.Debug("replaced practice session %s", id)
	}
	r.metrics.SetActiveSessions(n)
	return s
}

// Get returns the live instance for id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.touch()
	}
	return s, ok
}

// Close unmounts the instance for id, if any.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if ok {
		s.close()
		r.metrics.SetActiveSessions(n)
	}
}

// Sweep unmounts sessions idle for longer than ttl and returns how many.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.clock.Now().Add(-ttl)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	r.metrics.SetActiveSessions(n)
	if len(stale) > 0 {
		r.log.Info("swept %d idle practice sessions, %d remain", len(stale), n)
	}
	return len(stale)
}

// CloseAll unmounts every session and returns how many there were.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	r.metrics.SetActiveSessions(0)
	return len(all)
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
