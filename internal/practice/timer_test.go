package practice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/worddee/internal/practice"
	"github.com/vytor/worddee/internal/testutil"
)

var epoch = time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

func TestElapsedSeconds_NeverNegative(t *testing.T) {
	tests := []struct {
		name  string
		delta time.Duration
		want  int64
	}{
		{name: "zero", delta: 0, want: 0},
		{name: "sub-second", delta: 999 * time.Millisecond, want: 0},
		{name: "floor", delta: 42*time.Second + 900*time.Millisecond, want: 42},
		{name: "clock went backwards", delta: -5 * time.Second, want: 0},
		{name: "tiny negative", delta: -time.Nanosecond, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, practice.ElapsedSeconds(epoch, epoch.Add(tt.delta)))
		})
	}
}

func TestTimer_StartAndElapsed(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	timer := practice.NewTimer(clock)

	assert.False(t, timer.Running())
	assert.Equal(t, int64(0), timer.ElapsedSeconds())
	assert.True(t, timer.StartedAt().IsZero())

	timer.Start()
	clock.Advance(61 * time.Second)
	assert.Equal(t, int64(61), timer.ElapsedSeconds())
	assert.Equal(t, epoch, timer.StartedAt())

	clock.Advance(-2 * time.Minute)
	assert.Equal(t, int64(0), timer.ElapsedSeconds())
}

func TestTimer_RestartResetsToZero(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	timer := practice.NewTimer(clock)
	timer.Start()
	clock.Advance(30 * time.Second)
	require.Equal(t, int64(30), timer.ElapsedSeconds())

	timer.Start()
	assert.Equal(t, int64(0), timer.ElapsedSeconds())
}

func TestTimer_MonotonicallyNonDecreasing(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	timer := practice.NewTimer(clock)
	timer.Start()

	var last int64
	for i := 0; i < 20; i++ {
		clock.Advance(250 * time.Millisecond)
		got := timer.ElapsedSeconds()
		assert.GreaterOrEqual(t, got, last)
		last = got
	}
	assert.Equal(t, int64(5), last)
}

func TestTimer_TicksStopWithContext(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	timer := practice.NewTimer(clock)
	timer.Start()
	clock.Advance(3 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	ticks := timer.Ticks(ctx, 5*time.Millisecond)

	first := <-ticks
	assert.Equal(t, int64(3), first)

	clock.Advance(2 * time.Second)
	require.Eventually(t, func() bool {
		return <-ticks == 5
	}, time.Second, time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-ticks:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, time.Millisecond)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0:00", practice.FormatElapsed(0))
	assert.Equal(t, "0:09", practice.FormatElapsed(9))
	assert.Equal(t, "0:42", practice.FormatElapsed(42))
	assert.Equal(t, "1:05", practice.FormatElapsed(65))
	assert.Equal(t, "61:01", practice.FormatElapsed(3661))
	assert.Equal(t, "0:00", practice.FormatElapsed(-3))
}
