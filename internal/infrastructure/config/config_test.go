package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/iho/walletledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.OptimisticMaxRetries != 5 {
		t.Fatalf("expected 5 optimistic retries, got %d", cfg.OptimisticMaxRetries)
	}
	if cfg.RateLimitRPS != 0 {
		t.Fatalf("expected rate limiting to be off by default, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("WALLET_CACHE_TTL", "2s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "12.5")

	cfg, err := config.Load()
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
		t.Fatalf("expected custom HTTP port, got %s", cfg.HTTPPort)
	}
	if cfg.WalletCacheTTL != 2*time.Second {
		t.Fatalf("expected 2s cache TTL, got %s", cfg.WalletCacheTTL)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("expected two kafka brokers, got %v", cfg.KafkaBrokers)
	}
	if !cfg.AuthEnabled || cfg.JWTSecret != "top-secret" {
		t.Fatalf("expected auth to be enabled with secret")
	}
	if cfg.RateLimitRPS != 12.5 {
		t.Fatalf("expected 12.5 rps, got %v", cfg.RateLimitRPS)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			StoreDriver:          config.StoreDriverPostgres,
			DatabaseURL:          "postgres://example",
			OptimisticMaxRetries: 5,
			OutboxBatchSize:      100,
			RateLimitBurst:       20,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"postgres without url", func(c *config.Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"memory without url", func(c *config.Config) { c.StoreDriver = config.StoreDriverMemory; c.DatabaseURL = "" }, ""},
		{"unknown driver", func(c *config.Config) { c.StoreDriver = "sqlite" }, "STORE_DRIVER"},
		{"auth without secret", func(c *config.Config) { c.AuthEnabled = true }, "JWT_SECRET"},
		{"zero retries", func(c *config.Config) { c.OptimisticMaxRetries = 0 }, "OPTIMISTIC_MAX_RETRIES"},
		{"rate limit without burst", func(c *config.Config) { c.RateLimitRPS = 5; c.RateLimitBurst = 0 }, "RATE_LIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}
