package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the full signed claim set. The HMAC signature covers every
// field, so tampering with the canonical ID or role fails verification.
type Claims struct {
	CanonicalID string `json:"canonical_id"`
	LoginName   string `json:"login_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 bearer tokens. Verification alone is a
// static check; callers must still consult the session registry before
// trusting a token for anything privileged.
type Issuer struct {
	secret        []byte
	defaultTTL    time.Duration
	rememberMeTTL time.Duration
	maxTTL        time.Duration

	// Now is the clock used for issuing and expiry checks; tests override it.
	Now func() time.Time
}

func NewIssuer(secret string, defaultTTL, rememberMeTTL, maxTTL time.Duration) *Issuer {
	return &Issuer{
		secret:        []byte(secret),
		defaultTTL:    defaultTTL,
		rememberMeTTL: rememberMeTTL,
		maxTTL:        maxTTL,
		Now:           time.Now,
	}
}

// TTL picks the issuance lifetime for a login: short-lived by default, the
// longer remember-me variant on request. Both are still clamped by Issue.
func (i *Issuer) TTL(rememberMe bool) time.Duration {
	if rememberMe {
		return i.rememberMeTTL
	}
	return i.defaultTTL
}

// Issue signs a token for the identity with the requested TTL, clamped to
// the configured ceiling. Returns the raw token and its expiry.
func (i *Issuer) Issue(canonicalID, loginName, role string, ttl time.Duration) (string, time.Time, error) {
	if canonicalID == "" || role == "" {
		return "", time.Time{}, fmt.Errorf("issue token: canonical id and role are required")
	}

	if ttl <= 0 {
		ttl = i.defaultTTL
	}
	if i.maxTTL > 0 && ttl > i.maxTTL {
		ttl = i.maxTTL
	}

	now := i.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		CanonicalID: canonicalID,
		LoginName:   loginName,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   canonicalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify checks the signature first, then expiry. A bad signature and a
// malformed token both come back as ErrInvalidToken; the distinction has no
// defensive value and is only logged upstream for diagnostics.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.Now() }))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.CanonicalID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Fingerprint derives the one-way value stored in the session registry. Raw
// tokens are never persisted; the fingerprint is enough to correlate a
// presented token with its session row.
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
