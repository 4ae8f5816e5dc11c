package scheduler

import (
	"context"
	"log/slog"
	"time"

	"wallabag_importer/internal/domain"
)

type Runner interface {
	Run(ctx context.Context) (*domain.RunStats, error)
}

// Scheduler runs the import once at start and then on a fixed interval.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewScheduler(runner Runner, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "timeout", s.timeout)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single import bounded by the run timeout.
func (s *Scheduler) RunOnce(ctx context.Context) *domain.RunStats {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats, err := s.runner.Run(runCtx)
	if err != nil {
		s.logger.Error("import failed", "error", err)
		return nil
	}

	s.logger.Debug("import finished", "run_id", stats.RunID, "outcome", stats.Outcome)
	return stats
}
