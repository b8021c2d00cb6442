package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// FakeClock is a settable clock. It may be moved backwards to simulate a
// misbehaving time source.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock by d, which may be negative.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Backend is an in-process stand-in for the Worddee API. Each route answers
// with the configured status and JSON body; Requests records what was hit.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]response
	requests  []Recorded
}

type response struct {
	status int
	body   any
}

// Recorded is one request seen by the fake backend.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	b := &Backend{responses: make(map[string]response)}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

// Respond sets the reply for "METHOD /path".
func (b *Backend) Respond(method, path string, status int, body any) {
	b.mu.Lock()
	b.responses[method+" "+path] = response{status: status, body: body}
	b.mu.Unlock()
}

// Requests returns a copy of the requests seen so far.
func (b *Backend) Requests() []Recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Recorded(nil), b.requests...)
}

// Count returns how many requests hit "METHOD /path".
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	rec := Recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	resp, ok := b.responses[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	if resp.body != nil {
		_ = json.NewEncoder(w).Encode(resp.body)
	}
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
