package auth

import (
	"context"
	"net/http"
	"strings"

	"campus-ticketing/internal/models"
	"campus-ticketing/internal/utils"
)

type contextKey string

const userKey contextKey = "auth_user"

// Middleware validates the Bearer token and injects the session user into
// the request context.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, http.StatusUnauthorized, "missing Authorization header", nil)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteError(w, http.StatusUnauthorized, "invalid Authorization header format", nil)
				return
			}

			claims, err := ParseToken(parts[1], secret)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "invalid token", err)
				return
			}

			user := models.User{
				ID:   claims.Subject,
				Name: claims.Name,
				Role: claims.Role,
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to one role; it must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := SessionUser(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
				return
			}
			if user.Role != role {
				utils.WriteError(w, http.StatusForbidden, "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionUser extracts the authenticated user placed by Middleware.
func SessionUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// WithSessionUser returns a context carrying the user; used by tests.
func WithSessionUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
