package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_TRANSACTIONS", "JWT_TTL", "RATE_LIMIT_MAX", "NOTIFICATION_STORE", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.MongoTransactions || cfg.JWTTTL != 30*24*time.Hour {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RateLimitMax != 60 || cfg.RateLimitWindow != time.Minute || cfg.NotificationStore != "mongo" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("cors %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "5000")
	t.Setenv("ENV", "production")
	t.Setenv("MONGO_TRANSACTIONS", "true")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("RATE_LIMIT_MAX", "abc")
	t.Setenv("NOTIFICATION_STORE", "Postgres")
	t.Setenv("POSTGRES_URL", "postgres://recipehub@db/recipehub")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	if cfg.Port != "5000" || cfg.IsDevelopment() || !cfg.MongoTransactions || cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("overrides not applied %+v", cfg)
	}
	if cfg.RateLimitMax != 60 {
		t.Fatalf("invalid int should fall back, got %d", cfg.RateLimitMax)
	}
	if cfg.NotificationStore != "postgres" || cfg.PostgresURL != "postgres://recipehub@db/recipehub" {
		t.Fatalf("store %q at %q", cfg.NotificationStore, cfg.PostgresURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors %v", cfg.CORSAllowedOrigins)
	}
}
