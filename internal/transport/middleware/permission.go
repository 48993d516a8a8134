package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nandasafiq/hospital-management/internal/audit"
	"github.com/nandasafiq/hospital-management/internal/auth"
)

// RequirePermission guards a route with one permission check through the
// resolver, which is the single place the super-admin override lives. Denials
// are audited; the 403 body stays generic.
func RequirePermission(resolver *auth.Resolver, auditor audit.Recorder, logger *slog.Logger, permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !resolver.HasPermission(user, permission) {
				logger.Warn("access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permission", string(permission))
				auditor.Record(r.Context(), audit.Entry{
					Type:      audit.EventPermissionDenied,
					Detail:    fmt.Sprintf("Permission denied: %s requires %s", user.Username, permission),
					UserID:    &user.ID,
					IPAddress: clientAddr(r),
					UserAgent: r.UserAgent(),
					Endpoint:  r.URL.Path,
				})
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards a route behind the reserved Admin role or the
// super-admin flag.
func RequireAdmin(resolver *auth.Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !resolver.IsAdmin(user) {
				logger.Warn("access denied: admin required", "user_id", user.ID)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
