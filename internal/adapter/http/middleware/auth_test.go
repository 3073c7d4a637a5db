package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate("user-1", auth.RoleOperator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotUser string
	var gotRole auth.Role
	h := AuthMiddleware(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = domain.UserIDFromContext(r.Context())
		gotRole = auth.RoleFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
		})
	}

	if gotUser != "user-1" || gotRole != auth.RoleOperator {
		t.Fatalf("expected caller on context, got %q %q", gotUser, gotRole)
	}
}

func TestDevIdentityAndRequireRole(t *testing.T) {
	h := DevIdentity(RequireRole(auth.RoleOperator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		user   string
		role   string
		status int
	}{
		{"no identity", "", "", http.StatusUnauthorized},
		{"default role", "user-1", "", http.StatusForbidden},
		{"operator", "ops-1", "operator", http.StatusNoContent},
		{"admin outranks operator", "root", "admin", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sweeps/expire", nil)
			if tt.user != "" {
				req.Header.Set(UserIDHeader, tt.user)
			}
			if tt.role != "" {
				req.Header.Set(UserRoleHeader, tt.role)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rr.Code)
			}
		})
	}
}
