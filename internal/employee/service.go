package employee

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal/core/events"
)

// Publisher is satisfied by the event bus; deactivation uses the synchronous
// path so the session cascade completes before the call returns.
type Publisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	bus    Publisher
	logger *slog.Logger
}

func NewService(repo Repository, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

// Deactivate marks the account inactive and publishes the deactivation
// event. Session lifetime never exceeds identity lifetime: the subscribed
// revocation handler terminates every session the identity owns.
func (s *Service) Deactivate(ctx context.Context, canonicalID string) error {
	if err := s.repo.SetActive(ctx, canonicalID, false); err != nil {
		return err
	}

	if err := s.bus.PublishSync(ctx, events.NewIdentityDeactivatedEvent(canonicalID)); err != nil {
		return fmt.Errorf("deactivation cascade for %s: %w", canonicalID, err)
	}

	s.logger.Info("employee deactivated", "canonical_id", canonicalID)
	return nil
}
