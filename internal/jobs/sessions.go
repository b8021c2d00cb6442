package jobs

import (
	"context"
	"time"

	"github.com/vytor/worddee/internal/logger"
)

// Sweeper is satisfied by practice.Registry.
type Sweeper interface {
	Sweep(ttl time.Duration) int
	Len() int
}

// SweepSessionsJob unmounts practice pages whose browser went away without
// closing them.
type SweepSessionsJob struct {
	Sessions Sweeper
	TTL      time.Duration
}

func (j *SweepSessionsJob) Name() string { return "sweep_sessions" }

func (j *SweepSessionsJob) Run(ctx context.Context) error {
	n := j.Sessions.Sweep(j.TTL)
	if n > 0 {
		logger.FromContext(ctx).Info("unmounted %d idle sessions, %d live", n, j.Sessions.Len())
	}
	return nil
}
