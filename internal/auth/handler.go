package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	internal "github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/identity"
	"github.com/frahmantamala/hr-attendance/internal/session"
	"github.com/frahmantamala/hr-attendance/internal/token"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
)

type ctxKey string

const ContextIdentityKey ctxKey = "identity"

// IdentityFromContext returns the authenticated identity placed in the
// request context by AuthMiddleware.
func IdentityFromContext(ctx context.Context) (*identity.EmployeeIdentity, bool) {
	ident, ok := ctx.Value(ContextIdentityKey).(*identity.EmployeeIdentity)
	return ident, ok
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meta := session.ClientMetadata{
		UserAgent: r.UserAgent(),
		Origin:    r.Header.Get("Origin"),
	}

	result, err := h.Service.Login(r.Context(), dto, meta)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrEmployeeInactive):
			// Never reveal whether the login name exists or the account state.
			h.WriteAppError(w, internal.ErrInvalidCredentials)
		case errors.Is(err, identity.ErrAmbiguousIdentity):
			// Operator problem, not a credential problem.
			h.WriteAppError(w, internal.ErrAmbiguousIdentity)
		default:
			if appErr, ok := internal.IsAppError(err); ok {
				h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Logout always reports success to the caller; there is nothing useful a
// client can do with a logout failure.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken := h.ExtractTokenFromHeader(r)
	if rawToken == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.Service.Logout(r.Context(), rawToken); err != nil {
		h.Logger.Error("logout revoke failed", "error", err, "fingerprint", token.Fingerprint(rawToken))
	}

	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware is the authenticated-request guard: verify, then session
// liveness, then a fresh identity resolve. Invalid, expired and revoked
// tokens all produce the same generic outcome.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := h.ExtractTokenFromHeader(r)
		if rawToken == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		ident, err := h.Service.Authorize(r.Context(), rawToken)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrTokenExpired),
				errors.Is(err, token.ErrInvalidToken),
				errors.Is(err, ErrSessionRevoked),
				errors.Is(err, ErrEmployeeInactive):
				h.Logger.Warn("request rejected", "reason", err)
				h.WriteAppError(w, internal.ErrSessionExpired)
			default:
				// Store trouble: fail closed but mark it retryable.
				h.Logger.Error("authorization check failed", "error", err)
				h.WriteAppError(w, internal.ErrAuthUnavailable)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ContextIdentityKey, ident)
		ctx = internal.ContextWithCanonicalID(ctx, ident.CanonicalID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
