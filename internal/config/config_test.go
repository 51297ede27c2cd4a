package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("TRANSCRIPT_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", cfg.DBDriver)
	}
	if cfg.ChatContextWindowSize != 5 {
		t.Fatalf("expected window 5, got %d", cfg.ChatContextWindowSize)
	}
	if cfg.SessionBackend != "memory" || cfg.TranscriptBackend != "file" {
		t.Fatalf("unexpected backends: session=%q transcript=%q", cfg.SessionBackend, cfg.TranscriptBackend)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "dbDriver: mysql\naiProvider: gemini\naiTimeout: 5s\nredisAddr: 127.0.0.1:6379\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AI_PROVIDER", "openrouter")
	t.Setenv("SESSION_BACKEND", "")
	t.Setenv("TRANSCRIPT_BACKEND", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "mysql" {
		t.Fatalf("expected driver from file, got %q", cfg.DBDriver)
	}
	if cfg.AIProvider != "openrouter" {
		t.Fatalf("expected env to override file, got %q", cfg.AIProvider)
	}
	if cfg.AITimeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.AITimeout)
	}
	if cfg.SessionBackend != "redis" || cfg.TranscriptBackend != "redis" {
		t.Fatalf("expected redis backends, got session=%q transcript=%q", cfg.SessionBackend, cfg.TranscriptBackend)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoad_DefaultSecretRejectedWithSecureCookies(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for default jwt secret with secure cookies")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.UsesDefaultJWTSecret() {
		t.Fatalf("expected configured secret to be used")
	}
}
