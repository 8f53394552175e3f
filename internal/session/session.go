package session

import (
	"context"
	"errors"
	"time"

	sessionDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidTTL      = errors.New("session ttl must be positive")
	ErrMissingOwner    = errors.New("session requires an owning canonical id")
	ErrMissingToken    = errors.New("session requires a token fingerprint")
)

// ClientMetadata is opaque audit data captured at login.
type ClientMetadata struct {
	UserAgent string `json:"user_agent"`
	Origin    string `json:"origin"`
}

// RegistryAPI is the session authority consulted on every authenticated
// request and mutated by login, logout, the deactivation cascade and the
// expiry sweep.
type RegistryAPI interface {
	Open(ctx context.Context, canonicalID, tokenFingerprint string, ttl time.Duration, meta ClientMetadata) (*sessionDatamodel.Session, error)
	IsLive(ctx context.Context, tokenFingerprint string) (bool, error)
	Revoke(ctx context.Context, tokenFingerprint string) error
	RevokeAll(ctx context.Context, canonicalID string) error
	SweepExpired(ctx context.Context) (int64, error)
}

// Repository is the persistence surface behind the registry. Deactivate
// calls are single-statement updates so concurrent readers never observe a
// half-written row, and touching zero rows is not an error.
type Repository interface {
	Create(ctx context.Context, s *sessionDatamodel.Session) error
	ByFingerprint(ctx context.Context, tokenFingerprint string) (*sessionDatamodel.Session, error)
	Deactivate(ctx context.Context, tokenFingerprint string, at time.Time) error
	DeactivateAllForOwner(ctx context.Context, canonicalID string, at time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
