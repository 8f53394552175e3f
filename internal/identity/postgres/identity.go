package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-attendance/internal/identity"
	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

// foldedKeyExpr mirrors Normalizer.Fold in SQL so candidate profiles can be
// filtered server-side: one replace() per configured separator over the
// lowercased key. Built from the normalizer's own separator set, the filter
// stays a superset of normalized matches under any configuration, so the
// resolver's ambiguity check sees every candidate. Works on both postgres
// and the sqlite driver used in tests.
func foldedKeyExpr(separators string) string {
	expr := "lower(profile_id)"
	for _, sep := range separators {
		lit := strings.ReplaceAll(string(sep), "'", "''")
		expr = fmt.Sprintf("replace(%s, '%s', '')", expr, lit)
	}
	return expr
}

type Repository struct {
	db           *gorm.DB
	foldedKey    string
	queryTimeout time.Duration
}

func NewRepository(db *gorm.DB, normalizer identity.Normalizer, queryTimeout time.Duration) *Repository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Repository{
		db:           db,
		foldedKey:    foldedKeyExpr(normalizer.Separators()),
		queryTimeout: queryTimeout,
	}
}

func (r *Repository) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

func (r *Repository) AccountByLogin(ctx context.Context, loginName string) (*employeeDatamodel.Account, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var account employeeDatamodel.Account
	err := r.db.WithContext(ctx).
		Where("login_name = ?", loginName).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *Repository) ProfilesByFoldedKey(ctx context.Context, foldedKeys []string) ([]*employeeDatamodel.Profile, error) {
	if len(foldedKeys) == 0 {
		return nil, nil
	}
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var profiles []*employeeDatamodel.Profile
	err := r.db.WithContext(ctx).
		Where(r.foldedKey+" IN ?", foldedKeys).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// PasswordHashByLogin serves the login path only; the resolver never sees
// password material.
func (r *Repository) PasswordHashByLogin(ctx context.Context, loginName string) (string, error) {
	ctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var account employeeDatamodel.Account
	err := r.db.WithContext(ctx).
		Select("id", "password_hash").
		Where("login_name = ?", loginName).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", identity.ErrNotFound
		}
		return "", err
	}
	return account.PasswordHash, nil
}
