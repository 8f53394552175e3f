package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	"github.com/frahmantamala/hr-attendance/internal/transport/middleware"
	"github.com/frahmantamala/hr-attendance/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// RegisterAllRoutes mounts the identity/session API. Everything beyond the
// auth endpoints sits behind the authenticated-request guard.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, employeeHandler *employee.Handler, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	roles := auth.NewRoleAuthorization(logger)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/logout", authHandler.Logout)
			})

			// Protected routes that require a live session
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				if employeeHandler != nil {
					pr.Get("/employees/me", employeeHandler.Me)

					// Deactivation hook: admin only, cascades session revocation
					pr.Group(func(ar chi.Router) {
						ar.Use(roles.RequireAdmin())
						ar.Post("/employees/{id}/deactivate", employeeHandler.Deactivate)
					})
				}
			})
		}
	})
}
