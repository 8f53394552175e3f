package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal/identity"
)

// RoleAuthorization gates routes on the role carried by the resolved
// identity. It always runs behind AuthMiddleware; a missing identity in
// context means the guard was skipped and the request is rejected outright.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok || ident == nil {
				ra.logger.Warn("authorization check failed: identity not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if ident.Role != role {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"canonical_id", ident.CanonicalID,
					"required_role", role,
					"role", ident.Role)
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require(identity.RoleAdmin)
}
