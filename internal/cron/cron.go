// Package cron schedules the periodic triggers: the full scrape, the
// active-jobs digest and the twice-daily near-deadline digest.
package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one periodic background task.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Schedule returns a 5-field cron expression (e.g. "*/5 * * * *").
	Schedule() string

	// Run executes the job. Implementations should honor ctx cancellation.
	Run(ctx context.Context) error
}

type Runner struct {
	cron   *cron.Cron
	logger *log.Logger
}

func NewRunner(logger *log.Logger) *Runner {
	return &Runner{cron: cron.New(), logger: logger}
}

// Add registers a job; the returned error means the schedule expression
// did not parse.
func (r *Runner) Add(ctx context.Context, job Job, timeout time.Duration) error {
	_, err := r.cron.AddFunc(job.Schedule(), func() {
		runCtx := ctx
		var cancel context.CancelFunc
		if timeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job.Run(runCtx); err != nil {
			if r.logger != nil {
				r.logger.Printf("[Cron] %s failed | elapsed=%s error=%v", job.Name(), time.Since(start).Round(time.Millisecond), err)
			}
			return
		}
		if r.logger != nil {
			r.logger.Printf("[Cron] %s done | elapsed=%s", job.Name(), time.Since(start).Round(time.Millisecond))
		}
	})
	return err
}

func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to return.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
