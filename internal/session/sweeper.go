package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultSweepTimeout = 5 * time.Second

// Sweeper runs SweepExpired on a cron schedule. The registry stays correct
// without it; the sweep only keeps the sessions table tidy and the audit
// trail honest about when expiries were noticed.
type Sweeper struct {
	registry RegistryAPI
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	logger   *slog.Logger
}

func NewSweeper(registry RegistryAPI, schedule string, timeout time.Duration, logger *slog.Logger) *Sweeper {
	if schedule == "" {
		schedule = "@every 5m"
	}
	if timeout <= 0 {
		timeout = defaultSweepTimeout
	}
	return &Sweeper{
		registry: registry,
		cron:     cron.New(),
		schedule: schedule,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs one sweep immediately, then schedules the rest.
func (s *Sweeper) Start(ctx context.Context) error {
	s.runOnce(ctx)

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("session sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("session sweeper stopped")
}

// runOnce bounds every sweep with a timeout so a hung store cannot block the
// schedule indefinitely.
func (s *Sweeper) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	swept, err := s.registry.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("session sweep failed", "error", err)
		return
	}
	s.logger.Debug("session sweep completed", "swept", swept)
}
