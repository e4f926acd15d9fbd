package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/qatledger/internal/infrastructure/config"
)

func noDotenv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(noDotenv(t))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StorageBackend != config.BackendMemory {
		t.Fatalf("expected memory backend by default, got %s", cfg.StorageBackend)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.BalanceCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", cfg.BalanceCacheTTL)
	}

	rates := cfg.ExchangeRates()
	if !rates.SARToYER.Equal(decimal.NewFromInt(430)) || !rates.OMRToYER.Equal(decimal.NewFromInt(425)) {
		t.Fatalf("unexpected default rates %+v", rates)
	}

	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BALANCE_CACHE_TTL", "45s")
	t.Setenv("RATE_SAR_TO_YER", "431.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example,http://b.example")

	cfg, err := config.Load(noDotenv(t))
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.BalanceCacheTTL != 45*time.Second {
		t.Fatalf("expected cache ttl override, got %v", cfg.BalanceCacheTTL)
	}

	if !cfg.RateSARToYER.Equal(decimal.RequireFromString("431.5")) {
		t.Fatalf("expected SAR rate override, got %s", cfg.RateSARToYER)
	}

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("OPENAI_MODEL=from-file\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("OPENAI_MODEL") })
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.OpenAIModel != "from-file" {
		t.Fatalf("expected model from dotenv, got %s", cfg.OpenAIModel)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("environment must win over dotenv, got %s", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORAGE_BACKEND": "mongo"}},
		{name: "bad duration", env: map[string]string{"BALANCE_CACHE_TTL": "soon"}},
		{name: "bad rate", env: map[string]string{"RATE_OMR_TO_YER": "abc"}},
		{name: "zero rate", env: map[string]string{"RATE_OMR_TO_YER": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(noDotenv(t)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
