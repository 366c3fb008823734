// Package scheduler runs dayguard's background timeouts: periodic usage
// roll-up, monitor health checks, and on-demand exception sweeps, with one
// ticker per job since each runs at its own period.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Job is one periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs a fixed set of Jobs, each on its own ticker, until Stop is
// called or the parent context is cancelled.
type Scheduler struct {
	jobs   []Job
	logger *slog.Logger
	cancel context.CancelFunc
}

func New(logger *slog.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{jobs: jobs, logger: logger}
}

// Start launches every job's loop in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, job := range s.jobs {
		go s.runLoop(ctx, job)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("scheduled job stopped", "job", job.Name)
			return
		}
	}
}

// Stop cancels every job's loop.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
