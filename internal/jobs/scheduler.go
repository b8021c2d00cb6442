package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
)

// Scheduler runs registered jobs on fixed intervals.
type Scheduler struct {
	sched   *gocron.Scheduler
	metrics *metrics.Metrics
	log     *logger.Logger

	mu     sync.Mutex
	jobs   map[string]Job
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		sched:   gocron.NewScheduler(time.UTC),
		metrics: m,
		log:     logger.Default().WithPrefix("scheduler"),
		jobs:    make(map[string]Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Every registers job to run each interval, first firing one interval after
// Start. A run still in progress when the next one is due is skipped.
func (s *Scheduler) Every(interval time.Duration, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %v", job.Name(), interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.Name()]; dup {
		return fmt.Errorf("job %s already registered", job.Name())
	}

	_, err := s.sched.Every(interval).
		WaitForSchedule().
		SingletonMode().
		Tag(job.Name()).
		Do(func() {
			_ = run(s.ctx, job, s.log, s.metrics)
		})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.jobs[job.Name()] = job
	s.log.Debug("registered job %s every %v", job.Name(), interval)
	return nil
}

// RunNow executes a registered job synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}
	return run(ctx, job, s.log, s.metrics)
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.log.Info("starting scheduler with %d jobs", s.sched.Len())
	s.sched.StartAsync()
}

// Stop halts scheduling and cancels the context handed to running jobs.
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	s.cancel()
	s.sched.Stop()
}
