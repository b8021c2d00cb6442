package practice

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Clock abstracts time.Now so tests can drive the timer.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock. Values carry Go's monotonic reading, so
// Sub between two of them is immune to wall-clock steps.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Timer tracks how long the current word has been on screen, independent of
// backend round-trips.
type Timer struct {
	clock Clock

	mu        sync.Mutex
	mark      time.Time
	startedAt time.Time
	running   bool
}

func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Timer{clock: clock}
}

// Start (re)captures the monotonic mark and the wall-clock start time.
func (t *Timer) Start() {
	now := t.clock.Now()
	t.mu.Lock()
	t.mark = now
	t.startedAt = now.Round(0)
	t.running = true
	t.mu.Unlock()
}

// Running reports whether Start has been called.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// StartedAt is the wall-clock time of the last Start, zero before any.
func (t *Timer) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// ElapsedSeconds returns whole seconds since Start, never negative.
func (t *Timer) ElapsedSeconds() int64 {
	t.mu.Lock()
	mark, running := t.mark, t.running
	t.mu.Unlock()
	if !running {
		return 0
	}
	return ElapsedSeconds(mark, t.clock.Now())
}

// Ticks emits ElapsedSeconds immediately and then on every interval until
// ctx is done, at which point the ticker is stopped and the channel closed.
func (t *Timer) Ticks(ctx context.Context, interval time.Duration) <-chan int64 {
	out := make(chan int64, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		select {
		case out <- t.ElapsedSeconds():
		case <-ctx.Done():
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- t.ElapsedSeconds():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// ElapsedSeconds is max(0, floor((now-mark)/1s)).
func ElapsedSeconds(mark, now time.Time) int64 {
	d := now.Sub(mark)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// FormatElapsed renders seconds as m:ss.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
