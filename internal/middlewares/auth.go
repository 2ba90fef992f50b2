package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/coursehub/coursehub-backend/pkg/utils"
)

// AuthMiddleware validates the session_token cookie and puts the user
// identity into the request context.
func AuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("session_token")
			if err != nil || cookie.Value == "" {
				http.Error(w, "Unauthorized: Missing session token", http.StatusUnauthorized)
				return
			}

			userID, role, err := utils.ValidateToken(secret, cookie.Value)
			if err != nil {
				slog.Warn("rejected invalid session token",
					"path", r.URL.Path,
					"error", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := utils.WithUserID(r.Context(), userID)
			ctx = utils.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the role stored in the request context.
// It must run after AuthMiddleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRole(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: Missing session token", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[role]; !ok {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
