package identity

import (
	"context"
	"fmt"
	"log/slog"

	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
)

// Resolver reconciles an account record with its profile record into one
// canonical EmployeeIdentity. Resolution is a pure read: no store mutation,
// safe to cancel, safe to run concurrently.
type Resolver struct {
	repo       Repository
	normalizer Normalizer
	logger     *slog.Logger
}

func NewResolver(repo Repository, normalizer Normalizer, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:       repo,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Resolve looks up the account by login name, then joins the best-matching
// profile under normalized equality. Zero profile matches fall back to the
// account's shadow fields; more than one is ErrAmbiguousIdentity.
func (r *Resolver) Resolve(ctx context.Context, loginName string) (*EmployeeIdentity, error) {
	account, err := r.repo.AccountByLogin(ctx, loginName)
	if err != nil {
		return nil, err
	}

	profile, err := r.matchProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	ident := Merge(account, profile)
	return &ident, nil
}

func (r *Resolver) matchProfile(ctx context.Context, account *employeeDatamodel.Account) (*employeeDatamodel.Profile, error) {
	normalized := r.normalizer.Normalize(account.ID)

	candidates, err := r.repo.ProfilesByFoldedKey(ctx, r.normalizer.Variants(normalized))
	if err != nil {
		return nil, fmt.Errorf("profile lookup for %s: %w", account.ID, err)
	}

	// The store filter is a superset match; validate every candidate against
	// the full normalization rule before counting it.
	var matched *employeeDatamodel.Profile
	for _, candidate := range candidates {
		if r.normalizer.Normalize(candidate.ProfileID) != normalized {
			continue
		}
		if matched != nil {
			r.logger.Error("ambiguous identity: multiple profiles normalize to the same key",
				"canonical_id", account.ID,
				"normalized_key", normalized,
				"profile_id_a", matched.ProfileID,
				"profile_id_b", candidate.ProfileID)
			return nil, ErrAmbiguousIdentity
		}
		matched = candidate
	}

	if matched == nil {
		r.logger.Debug("no profile match, falling back to account fields",
			"canonical_id", account.ID,
			"normalized_key", normalized)
	}

	return matched, nil
}
