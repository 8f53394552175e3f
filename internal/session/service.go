package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sessionDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/session"
	"github.com/google/uuid"
)

// Registry implements RegistryAPI on top of a Repository. Session rows are
// append-then-flip: created active, deactivated exactly once, never
// reactivated and never deleted.
type Registry struct {
	repo   Repository
	logger *slog.Logger

	// now is the clock used for expiry decisions; tests override it.
	now func() time.Time
}

func NewRegistry(repo Repository, logger *slog.Logger) *Registry {
	return &Registry{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Open records a fresh session for the identity. Multiple live sessions per
// identity are allowed; multi-device login is a supported case.
func (r *Registry) Open(ctx context.Context, canonicalID, tokenFingerprint string, ttl time.Duration, meta ClientMetadata) (*sessionDatamodel.Session, error) {
	if canonicalID == "" {
		return nil, ErrMissingOwner
	}
	if tokenFingerprint == "" {
		return nil, ErrMissingToken
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	now := r.now()
	s := &sessionDatamodel.Session{
		ID:               uuid.NewString(),
		CanonicalID:      canonicalID,
		TokenFingerprint: tokenFingerprint,
		IsActive:         true,
		ExpiresAt:        now.Add(ttl),
		UserAgent:        meta.UserAgent,
		Origin:           meta.Origin,
		CreatedAt:        now,
	}

	if err := r.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	r.logger.Info("session opened",
		"session_id", s.ID,
		"canonical_id", canonicalID,
		"expires_at", s.ExpiresAt)

	return s, nil
}

// IsLive reports whether the session behind a fingerprint is still usable.
// The expiry check happens here on every read, so an expired session is
// never reported live even if the sweep has not physically run yet.
func (r *Registry) IsLive(ctx context.Context, tokenFingerprint string) (bool, error) {
	s, err := r.repo.ByFingerprint(ctx, tokenFingerprint)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("session lookup: %w", err)
	}

	if !s.IsActive {
		return false, nil
	}
	if !s.ExpiresAt.After(r.now()) {
		return false, nil
	}
	return true, nil
}

// Revoke terminates the session for a fingerprint. Revoking a session that
// is already inactive or does not exist is a no-op success; callers revoke
// defensively.
func (r *Registry) Revoke(ctx context.Context, tokenFingerprint string) error {
	if tokenFingerprint == "" {
		return nil
	}
	if err := r.repo.Deactivate(ctx, tokenFingerprint, r.now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeAll terminates every session owned by the identity. This is the
// cascade invoked when an account is deactivated or deleted upstream.
func (r *Registry) RevokeAll(ctx context.Context, canonicalID string) error {
	if canonicalID == "" {
		return nil
	}
	if err := r.repo.DeactivateAllForOwner(ctx, canonicalID, r.now()); err != nil {
		return fmt.Errorf("revoke all sessions for %s: %w", canonicalID, err)
	}
	r.logger.Info("all sessions revoked", "canonical_id", canonicalID)
	return nil
}

// SweepExpired flips sessions whose expiry has passed. It is bookkeeping
// only; liveness never depends on the sweep having run.
func (r *Registry) SweepExpired(ctx context.Context) (int64, error) {
	swept, err := r.repo.DeactivateExpired(ctx, r.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	if swept > 0 {
		r.logger.Info("expired sessions swept", "count", swept)
	}
	return swept, nil
}
