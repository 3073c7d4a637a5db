package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

const (
	// UserIDHeader carries the caller when authentication is disabled.
	UserIDHeader = "X-User-ID"
	// UserRoleHeader carries the caller's role when authentication is disabled.
	UserRoleHeader = "X-User-Role"
)

// AuthMiddleware verifies the bearer token and puts the caller's id and
// role on the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withCaller(r, claims.UserID, claims.Role)))
		})
	}
}

// DevIdentity trusts the X-User-ID and X-User-Role headers. It stands in
// for AuthMiddleware on local deployments with authentication disabled.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "missing "+UserIDHeader+" header")
			return
		}
		role := auth.Role(r.Header.Get(UserRoleHeader))
		if role == "" {
			role = auth.RoleUser
		}
		next.ServeHTTP(w, r.WithContext(withCaller(r, userID, role)))
	})
}

// RequireRole rejects callers whose role ranks below minRole.
func RequireRole(minRole auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := domain.UserIDFromContext(r.Context()); !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !auth.RoleFromContext(r.Context()).Satisfies(minRole) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withCaller(r *http.Request, userID string, role auth.Role) context.Context {
	ctx := domain.WithUserID(r.Context(), userID)
	ctx = auth.WithRole(ctx, role)
	l := logger.FromContext(ctx).With().Str("user_id", userID).Logger()
	return l.WithContext(ctx)
}
