package jobs

import (
	"context"
	"time"

	"github.com/vytor/worddee/internal/logger"
	"github.com/vytor/worddee/internal/metrics"
)

// Job is a unit of periodic background work.
type Job interface {
	Run(context.Context) error
	Name() string
}

// run executes job once with a job-scoped logger on the context.
func run(ctx context.Context, job Job, log *logger.Logger, m *metrics.Metrics) error {
	jobLog := log.WithField("job", job.Name())
	jobCtx := logger.NewContext(ctx, jobLog)

	start := time.Now()
	err := job.Run(jobCtx)
	m.ObserveJob(job.Name(), err)
	if err != nil {
		jobLog.Error("job failed after %v: %v", time.Since(start), err)
		return err
	}
	jobLog.Debug("job completed in %v", time.Since(start))
	return nil
}
