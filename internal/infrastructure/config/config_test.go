package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mymoolah/walletcore/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		t.Fatalf("expected postgres storage by default, got %s", cfg.StorageDriver)
	}
	if cfg.Ledger.ZapperClearingCode != "2510" || cfg.Ledger.VATControlCode != "2400" {
		t.Fatalf("unexpected chart defaults: %+v", cfg.Ledger)
	}
	if cfg.Workers.RequestToPayExpiry != time.Hour {
		t.Fatalf("expected 60m request-to-pay expiry, got %s", cfg.Workers.RequestToPayExpiry)
	}
	if cfg.Workers.QRPaymentExpiry != 30*time.Minute {
		t.Fatalf("expected 30m QR expiry, got %s", cfg.Workers.QRPaymentExpiry)
	}
	if cfg.Polling.Concurrency != 4 || cfg.Polling.QueueSize != 256 {
		t.Fatalf("unexpected polling queue defaults: %+v", cfg.Polling)
	}
	if cfg.Rails.Zapper.Enabled() {
		t.Fatalf("expected rails to be disabled without a base URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("RAIL_PAYSHAP_BASE_URL", "https://payshap.example")
	t.Setenv("RAIL_PAYSHAP_OAUTH_CLIENT_ID", "client")
	t.Setenv("RAIL_PAYSHAP_OAUTH_TOKEN_URL", "https://auth.example/token")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("POLL_MAX_ATTEMPTS", "3")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" || cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom URLs, got %s %s", cfg.DatabaseURL, cfg.RedisURL)
	}
	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}
	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}
	if !cfg.Rails.PayShap.Enabled() || !cfg.Rails.PayShapOAuth.Enabled() {
		t.Fatalf("expected payshap rail and oauth to be enabled: %+v", cfg.Rails)
	}
	if cfg.Rails.PayShap.Timeout != 15*time.Second {
		t.Fatalf("expected default rail timeout, got %s", cfg.Rails.PayShap.Timeout)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.Polling.MaxAttempts != 3 {
		t.Fatalf("expected poll attempts override, got %d", cfg.Polling.MaxAttempts)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WALLETCORE_TEST_ONLY=1\nSTORAGE_DRIVER=memory\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("STORAGE_DRIVER", "")
	os.Unsetenv("STORAGE_DRIVER")
	t.Cleanup(func() { os.Unsetenv("WALLETCORE_TEST_ONLY") })

	cfg, err := config.LoadFiles(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	if cfg.StorageDriver != config.StorageMemory {
		t.Fatalf("expected storage driver from .env, got %s", cfg.StorageDriver)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "invalid duration", env: map[string]string{"HTTP_READ_TIMEOUT": "not-a-duration"}},
		{name: "unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "mongo"}},
		{name: "auth without secret", env: map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.LoadFiles(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
