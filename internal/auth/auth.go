package auth

import (
	"context"
	"errors"
	"time"

	sessionDatamodel "github.com/frahmantamala/hr-attendance/internal/core/datamodel/session"
	"github.com/frahmantamala/hr-attendance/internal/identity"
	"github.com/frahmantamala/hr-attendance/internal/session"
	"github.com/frahmantamala/hr-attendance/internal/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmployeeInactive   = errors.New("employee is inactive")
	ErrSessionRevoked     = errors.New("session revoked")
)

// ServiceAPI is the identity/session surface consumed by the HTTP layer and
// by the employee-management collaborator.
type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, meta session.ClientMetadata) (*LoginResult, error)
	Authorize(ctx context.Context, rawToken string) (*identity.EmployeeIdentity, error)
	Logout(ctx context.Context, rawToken string) error
	RevokeAllForIdentity(ctx context.Context, canonicalID string) error
}

// IdentityResolver produces the canonical employee view for a login name.
type IdentityResolver interface {
	Resolve(ctx context.Context, loginName string) (*identity.EmployeeIdentity, error)
}

// CredentialReader exposes password material to the login path only.
type CredentialReader interface {
	PasswordHashByLogin(ctx context.Context, loginName string) (string, error)
}

// TokenIssuer mints and statically verifies bearer tokens.
type TokenIssuer interface {
	TTL(rememberMe bool) time.Duration
	Issue(canonicalID, loginName, role string, ttl time.Duration) (string, time.Time, error)
	Verify(raw string) (*token.Claims, error)
}

// SessionRegistry is the revocation authority; Verify alone never gates
// access to anything.
type SessionRegistry interface {
	Open(ctx context.Context, canonicalID, tokenFingerprint string, ttl time.Duration, meta session.ClientMetadata) (*sessionDatamodel.Session, error)
	IsLive(ctx context.Context, tokenFingerprint string) (bool, error)
	Revoke(ctx context.Context, tokenFingerprint string) error
	RevokeAll(ctx context.Context, canonicalID string) error
}

// LoginResult is returned to the HTTP layer on successful authentication.
type LoginResult struct {
	Identity  identity.EmployeeIdentity `json:"identity"`
	Token     string                    `json:"token"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
