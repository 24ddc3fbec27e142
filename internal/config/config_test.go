package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()
	if cfg.DBBackend != BackendPostgres {
		t.Fatalf("expected postgres default, got %q", cfg.DBBackend)
	}
	if cfg.AccessTTL != time.Hour || cfg.RefreshTTL != 24*time.Hour {
		t.Fatalf("unexpected TTL defaults: access=%s refresh=%s", cfg.AccessTTL, cfg.RefreshTTL)
	}
	if cfg.Addr != ":8000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("JWT_EXPIRATION", "3600")
	if d := getdur("JWT_EXPIRATION", time.Minute); d != time.Hour {
		t.Fatalf("bare seconds: expected 1h, got %s", d)
	}

	t.Setenv("JWT_EXPIRATION", "45m")
	if d := getdur("JWT_EXPIRATION", time.Minute); d != 45*time.Minute {
		t.Fatalf("duration string: expected 45m, got %s", d)
	}

	t.Setenv("JWT_EXPIRATION", "nonsense")
	if d := getdur("JWT_EXPIRATION", time.Minute); d != time.Minute {
		t.Fatalf("invalid value: expected default, got %s", d)
	}
}

func TestEphemeralSecretWhenUnset(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	if cfg.JWTSecret == "" {
		t.Fatalf("expected a generated secret")
	}
}

func TestCORSOriginsList(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://app.example.com ,")

	cfg := Load()
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[0] != "http://localhost:3000" || cfg.CORSOrigins[1] != "https://app.example.com" {
		t.Fatalf("unexpected origins: %v", cfg.CORSOrigins)
	}
}
