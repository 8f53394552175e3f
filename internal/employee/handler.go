package employee

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	internal "github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/transport"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Deactivate(ctx context.Context, canonicalID string) error
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

// Me handles GET /employees/me. The guard already resolved a fresh identity,
// so this is just a read from context.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok || ident == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, ident)
}

// Deactivate handles POST /employees/{id}/deactivate (admin only). This is
// the upstream hook that must fire whenever an employee record is removed or
// marked inactive.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	canonicalID := chi.URLParam(r, "id")
	if canonicalID == "" {
		h.WriteError(w, http.StatusBadRequest, "employee id is required")
		return
	}

	if err := h.Service.Deactivate(r.Context(), canonicalID); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteAppError(w, internal.ErrEmployeeNotFound)
			return
		}
		h.Logger.Error("deactivation failed", "canonical_id", canonicalID, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
