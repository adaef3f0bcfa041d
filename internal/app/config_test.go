package app

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AUTH_HEADER_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.AppAddr)
	}
	if cfg.PermissionCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected ttl %s", cfg.PermissionCacheTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("development is not production")
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("AUTH_HEADER_SECRET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without auth header secret")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_HEADER_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PERMISSION_CACHE_TTL", "90s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
	if cfg.PermissionCacheTTL != 90*time.Second {
		t.Fatalf("unexpected ttl %s", cfg.PermissionCacheTTL)
	}
}
