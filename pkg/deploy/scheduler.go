package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a deployment on a cron schedule, keeping the tenant's
// policies converged with the template directory without an operator in
// the loop.
type Scheduler struct {
	schedule string
	run      func(ctx context.Context) error
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler invoking run on the given standard
// cron expression (five fields, e.g. "0 3 * * *" for daily at 3 AM).
func NewScheduler(schedule string, run func(ctx context.Context) error) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		run:      run,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "scheduler"),
	}
}

// Start validates the expression, begins scheduling, and returns. The
// scheduler stops itself when the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.logger.Info("starting scheduled deployment")
		if err := s.run(ctx); err != nil {
			s.logger.Error("scheduled deployment failed", "error", err)
			return
		}
		s.logger.Info("scheduled deployment completed")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule deployment: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("deployment scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduling. A deployment already in flight finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("deployment scheduler stopped")
}
