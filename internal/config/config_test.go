package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "APP_ENV", "PORT"} {
		t.Setenv(key, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Quiz.MaxQuestions != 20 || cfg.Gemini.Timeout != "45s" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Env != "local" {
		t.Fatalf("expected local env, got %q", cfg.Env)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "server:\n  port: \"9000\"\nredis:\n  addr: file:6379\nquiz:\n  max_questions: 10\n  cache_ttl: 5m\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Quiz.MaxQuestions != 10 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Redis.Addr != "env:6379" || cfg.Gemini.APIKey != "secret" || cfg.Env != "production" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if TTLDuration(cfg.Quiz.CacheTTL, 0) != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %q", cfg.Quiz.CacheTTL)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", time.Second); got != time.Second {
		t.Fatalf("expected fallback for garbage, got %v", got)
	}
	if got := TTLDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
