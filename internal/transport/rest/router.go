package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/nandasafiq/hospital-management/internal/audit"
	"github.com/nandasafiq/hospital-management/internal/auth"
	"github.com/nandasafiq/hospital-management/internal/ratelimit"
	"github.com/nandasafiq/hospital-management/internal/transport/middleware"
	"github.com/nandasafiq/hospital-management/internal/transport/swagger"
	"github.com/nandasafiq/hospital-management/internal/user"
)

// RegisterAllRoutes wires the security core into the HTTP surface. Rate
// limiting sits in front of everything, including login; permission checks
// guard the admin routes.
func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	limiter *ratelimit.Limiter,
	auditor audit.Recorder,
	authHandler *auth.Handler,
	resolver *auth.Resolver,
	userHandler *user.Handler,
	auditHandler *audit.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RateLimit(limiter, logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)

			sr.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Post("/logout", authHandler.Logout)
				pr.Post("/change-password", authHandler.ChangePassword)
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", authHandler.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(middleware.RequirePermission(resolver, auditor, logger, auth.PermissionManageUsers))
				ur.Get("/", userHandler.ListUsers)
				ur.Post("/", userHandler.CreateUser)
				ur.Get("/{id}", userHandler.GetUser)
				ur.Delete("/{id}", userHandler.DeactivateUser)
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Use(middleware.RequirePermission(resolver, auditor, logger, auth.PermissionManageUsers))
				rr.Get("/", userHandler.ListRoles)
				rr.Post("/", userHandler.CreateRole)
				rr.Put("/{id}", userHandler.UpdateRole)
				rr.Delete("/{id}", userHandler.DeleteRole)
			})

			pr.Route("/logs", func(lr chi.Router) {
				lr.Use(middleware.RequirePermission(resolver, auditor, logger, auth.PermissionViewLogs))
				lr.Get("/", auditHandler.ListLogs)
			})
		})
	})
}
