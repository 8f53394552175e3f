package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/hr-attendance/internal/identity"
	"github.com/frahmantamala/hr-attendance/internal/session"
	"github.com/frahmantamala/hr-attendance/internal/token"
)

// Service wires the resolver, the token issuer and the session registry into
// the login/guard/logout flows.
type Service struct {
	resolver    IdentityResolver
	credentials CredentialReader
	tokens      TokenIssuer
	sessions    SessionRegistry
	logger      *slog.Logger
}

func NewService(resolver IdentityResolver, credentials CredentialReader, tokens TokenIssuer, sessions SessionRegistry, logger *slog.Logger) *Service {
	return &Service{
		resolver:    resolver,
		credentials: credentials,
		tokens:      tokens,
		sessions:    sessions,
		logger:      logger,
	}
}

// Login resolves the identity, checks the password, mints a token and
// records the session. A missing account and a wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO, meta session.ClientMetadata) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ident, err := s.resolver.Resolve(ctx, dto.LoginName)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		if errors.Is(err, identity.ErrAmbiguousIdentity) {
			// Data-integrity fault, not a user error; never authenticate an
			// arbitrary pick.
			s.logger.Error("login blocked by ambiguous identity", "login_name", dto.LoginName)
			return nil, err
		}
		return nil, err
	}

	storedHash, err := s.credentials.PasswordHashByLogin(ctx, dto.LoginName)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !ident.IsActive {
		return nil, ErrEmployeeInactive
	}

	ttl := s.tokens.TTL(dto.RememberMe)
	rawToken, expiresAt, err := s.tokens.Issue(ident.CanonicalID, ident.LoginName, ident.Role, ttl)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Open(ctx, ident.CanonicalID, token.Fingerprint(rawToken), ttl, meta); err != nil {
		return nil, err
	}

	s.logger.Info("login succeeded",
		"canonical_id", ident.CanonicalID,
		"remember_me", dto.RememberMe,
		"expires_at", expiresAt)

	return &LoginResult{
		Identity:  *ident,
		Token:     rawToken,
		ExpiresAt: expiresAt,
	}, nil
}

// Authorize is the authenticated-request guard: signature and expiry first,
// then the registry liveness check, then a fresh resolve so descriptive
// fields and role reflect the current profile rather than the claims
// snapshot. Each step fails closed.
func (s *Service) Authorize(ctx context.Context, rawToken string) (*identity.EmployeeIdentity, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	live, err := s.sessions.IsLive(ctx, token.Fingerprint(rawToken))
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrSessionRevoked
	}

	ident, err := s.resolver.Resolve(ctx, claims.LoginName)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, ErrSessionRevoked
		}
		return nil, err
	}

	// A login name can be reprovisioned after deactivation; a token minted
	// for the old account must never authenticate as the new one.
	if ident.CanonicalID != claims.CanonicalID {
		s.logger.Warn("token canonical id no longer matches resolved identity",
			"token_canonical_id", claims.CanonicalID,
			"resolved_canonical_id", ident.CanonicalID)
		return nil, ErrSessionRevoked
	}

	if !ident.IsActive {
		return nil, ErrEmployeeInactive
	}

	return ident, nil
}

// Logout revokes the session behind the presented token. Revoking a session
// that is already gone is still success.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token.Fingerprint(rawToken))
}

// RevokeAllForIdentity is the deactivation hook: every session owned by the
// identity is terminated. Employee management calls this whenever an account
// is deleted or marked inactive.
func (s *Service) RevokeAllForIdentity(ctx context.Context, canonicalID string) error {
	return s.sessions.RevokeAll(ctx, canonicalID)
}
