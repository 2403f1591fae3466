package config

import (
	"testing"
	"time"
)

func TestLoadClientConfigDefaults(t *testing.T) {
	t.Setenv("DOCUMIND_SERVER_URL", "http://example.test:9000")
	t.Setenv("DOCUMIND_COMMAND_PREFIX", "!")
	t.Setenv("DOCUMIND_REQUEST_TIMEOUT", "not-a-duration")

	cfg := LoadClientConfig()
	if cfg.ServerURL != "http://example.test:9000" {
		t.Fatalf("unexpected server url %q", cfg.ServerURL)
	}
	if cfg.CommandPrefix != '!' {
		t.Fatalf("expected ! prefix, got %q", cfg.CommandPrefix)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("expected default timeout on bad input, got %v", cfg.RequestTimeout)
	}
}

func TestLoadServerConfigOverrides(t *testing.T) {
	t.Setenv("DOCUMIND_SEED_DEMO", "false")
	t.Setenv("DOCUMIND_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("DOCUMIND_JWT_EXPIRATION", "2h")
	t.Setenv("DOCUMIND_MAX_UPLOAD_BYTES", "1024")

	cfg := LoadServerConfig()
	if cfg.SeedDemo {
		t.Fatalf("expected seeding disabled")
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a.test" || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.JWT.Expiration != 2*time.Hour {
		t.Fatalf("unexpected expiration %v", cfg.JWT.Expiration)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Fatalf("unexpected upload limit %d", cfg.MaxUploadBytes)
	}
}
