package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.HTTP.Port)
	}
	if cfg.Mongo.Database != "kinosync" {
		t.Errorf("database = %q, want kinosync", cfg.Mongo.Database)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis addr = %q, want empty", cfg.Redis.Addr)
	}
	if cfg.RateLimiter.TimeFrame != 15*time.Minute {
		t.Errorf("rate limiter frame = %v", cfg.RateLimiter.TimeFrame)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
http:
  port: 8080
  allowed_origins:
    - https://watch.example.com
stream:
  bytesPerSecond: 1048576
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.HTTP.Port)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "https://watch.example.com" {
		t.Errorf("allowed origins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.Stream.BytesPerSecond != 1<<20 {
		t.Errorf("bytesPerSecond = %d", cfg.Stream.BytesPerSecond)
	}
	// untouched keys keep their defaults
	if cfg.Auth.Secret == "" {
		t.Error("auth secret default missing")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.HTTP.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.HTTP.Port)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Errorf("secret = %q, want from-env", cfg.Auth.Secret)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/file.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
