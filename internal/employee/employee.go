package employee

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("employee not found")

// Repository is the write surface employee management needs over account
// records. Descriptive reads go through the identity resolver instead.
type Repository interface {
	SetActive(ctx context.Context, canonicalID string, active bool) error
}
