package postgres

import (
	"context"
	"errors"
	"time"

	sessionDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/session"
	"github.com/frahmantamala/hr-attendance/internal/session"
	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

type Repository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewRepository(db *gorm.DB, queryTimeout time.Duration) session.Repository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Repository{db: db, queryTimeout: queryTimeout}
}

func (r *Repository) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *Repository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repository) ByFingerprint(ctx context.Context, tokenFingerprint string) (*sessionDatamodel.Session, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var s sessionDatamodel.Session
	err := r.db.WithContext(ctx).
		Where("token_fingerprint = ?", tokenFingerprint).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Deactivate is a single guarded UPDATE: the is_active predicate keeps the
// flip one-shot, so a re-revoke never overwrites the original revoked_at.
func (r *Repository) Deactivate(ctx context.Context, tokenFingerprint string, at time.Time) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	return r.db.WithContext(ctx).
		Model(&sessionDatamodel.Session{}).
		Where("token_fingerprint = ? AND is_active = ?", tokenFingerprint, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"revoked_at": at,
		}).Error
}

func (r *Repository) DeactivateAllForOwner(ctx context.Context, canonicalID string, at time.Time) error {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	return r.db.WithContext(ctx).
		Model(&sessionDatamodel.Session{}).
		Where("canonical_id = ? AND is_active = ?", canonicalID, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"revoked_at": at,
		}).Error
}

// DeactivateExpired leaves revoked_at NULL so audit can tell a swept expiry
// from an explicit revocation.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&sessionDatamodel.Session{}).
		Where("is_active = ? AND expires_at <= ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
