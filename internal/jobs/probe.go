package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
)

// Pinger is satisfied by wordapi.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeStatus is the outcome of the most recent backend probe.
type ProbeStatus struct {
	Checked   bool
	Up        bool
	CheckedAt time.Time
	Err       error
}

// BackendProbe pings the backend API and remembers the result so readiness
// checks do not have to hit it on every call.
type BackendProbe struct {
	Backend Pinger
	Timeout time.Duration
	Metrics *metrics.Metrics

	mu   sync.RWMutex
	last ProbeStatus
}

func (p *BackendProbe) Name() string { return "probe_backend" }

func (p *BackendProbe) Run(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	err := p.Backend.Ping(ctx)
	status := ProbeStatus{Checked: true, Up: err == nil, CheckedAt: time.Now(), Err: err}

	p.mu.Lock()
	prev := p.last
	p.last = status
	p.mu.Unlock()

	p.Metrics.SetBackendUp(status.Up)
	if prev.Checked && prev.Up != status.Up {
		log := logger.FromContext(ctx)
		if status.Up {
			log.Info("backend API reachable again")
		} else {
			log.Warn("backend API unreachable: %v", err)
		}
	}
	return err
}

// Status returns the last probe result. Checked is false until the first run.
func (p *BackendProbe) Status() ProbeStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}
