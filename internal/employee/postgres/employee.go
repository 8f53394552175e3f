package postgres

import (
	"context"
	"time"

	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

type Repository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewRepository(db *gorm.DB, queryTimeout time.Duration) employee.Repository {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &Repository{db: db, queryTimeout: queryTimeout}
}

func (r *Repository) SetActive(ctx context.Context, canonicalID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Account{}).
		Where("id = ?", canonicalID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return employee.ErrNotFound
	}
	return nil
}
