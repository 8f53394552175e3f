package identity

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/employee"
)

// Role values carried in tokens and enforced by the authorization middleware.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

var (
	// ErrNotFound is returned when no account matches a login name. Callers
	// on the login path collapse it into a generic credential failure so
	// login names cannot be enumerated.
	ErrNotFound = errors.New("identity not found")

	// ErrAmbiguousIdentity is a data-integrity fault: more than one profile
	// record normalizes to the same account key. Resolution never picks one
	// arbitrarily because that could authenticate as the wrong profile.
	ErrAmbiguousIdentity = errors.New("ambiguous identity: multiple profiles normalize to the same key")
)

// EmployeeIdentity is the canonical merged view of an account record and its
// best-matching profile record. It is derived on every resolve, never stored.
type EmployeeIdentity struct {
	CanonicalID      string `json:"canonical_id"`
	LoginName        string `json:"login_name"`
	Role             string `json:"role"`
	IsActive         bool   `json:"is_active"`
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	Department       string `json:"department"`
	Position         string `json:"position"`
	EmploymentStatus string `json:"employment_status"`
}

// Repository is the read surface the resolver needs from the credential
// store. ProfilesByFoldedKey matches on the case/separator-folded form of
// the profile key; prefix-level normalization and the ambiguity check happen
// in the resolver against the pure normalizer.
type Repository interface {
	AccountByLogin(ctx context.Context, loginName string) (*employeeDatamodel.Account, error)
	ProfilesByFoldedKey(ctx context.Context, foldedKeys []string) ([]*employeeDatamodel.Profile, error)
}

// Merge builds the canonical view: every descriptive field takes the profile
// value when present and non-null, otherwise the account's shadow copy. The
// result is total; a missing profile just means all fields fall back.
func Merge(account *employeeDatamodel.Account, profile *employeeDatamodel.Profile) EmployeeIdentity {
	ident := EmployeeIdentity{
		CanonicalID:      account.ID,
		LoginName:        account.LoginName,
		Role:             account.Role,
		IsActive:         account.IsActive,
		DisplayName:      account.Name,
		Email:            account.Email,
		Department:       account.Department,
		Position:         account.Position,
		EmploymentStatus: account.EmploymentStatus,
	}

	if profile == nil {
		return ident
	}

	if profile.Name != nil {
		ident.DisplayName = *profile.Name
	}
	if profile.Email != nil {
		ident.Email = *profile.Email
	}
	if profile.Department != nil {
		ident.Department = *profile.Department
	}
	if profile.Position != nil {
		ident.Position = *profile.Position
	}
	if profile.EmploymentStatus != nil {
		ident.EmploymentStatus = *profile.EmploymentStatus
	}

	return ident
}
