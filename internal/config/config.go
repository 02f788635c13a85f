package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string

	// JWTSecret signs bearer tokens; TokenLifetime bounds their validity.
	JWTSecret     string
	TokenLifetime time.Duration

	// AuditRetentionDays enables the scheduled audit sweep when > 0.
	// Zero keeps audit records forever.
	AuditRetentionDays int

	// NotifyURLs are shoutrrr destinations pinged when a flag flips.
	NotifyURLs []string
}

// Load reads env vars and falls back to defaults so the server can boot
// with zero configuration in development. Production requires an
// explicit JWT secret.
func Load() (Config, error) {
	cfg := Config{
		Environment:        getEnv("TK_ENV", "development"),
		HTTPPort:           getEnv("TK_HTTP_PORT", "8080"),
		DatabasePath:       getEnv("TK_DB_PATH", filepath.Join("data", "togglekeep.db")),
		JWTSecret:          getEnv("TK_JWT_SECRET", ""),
		TokenLifetime:      time.Duration(getEnvInt("TK_JWT_TTL_MINUTES", 60)) * time.Minute,
		AuditRetentionDays: getEnvInt("TK_AUDIT_RETENTION_DAYS", 0),
		NotifyURLs:         splitList(getEnv("TK_NOTIFY_URLS", "")),
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" || cfg.Environment == "prod" {
			return Config{}, errors.New("TK_JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "togglekeep-dev-secret"
	}

	if cfg.TokenLifetime <= 0 {
		return Config{}, errors.New("TK_JWT_TTL_MINUTES must be positive")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
