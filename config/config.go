/*
Package config loads service configuration from the environment.

PURPOSE:
  One struct, loaded once at startup. A .env file in the working
  directory is read first if present (development convenience); real
  environment variables always win.

VARIABLES:
  HR_ADDR          Listen address            (default ":8080")
  HR_DB_PATH       SQLite database path      (default "./data/hr.db")
  HR_JWT_SECRET    Token signing secret      (required outside dev)
  HR_TOKEN_TTL     Token lifetime            (default "24h")
  HR_CORS_ORIGINS  Comma-separated origins   (default "*")
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr        string
	DBPath      string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
}

// devSecret is the fallback signing secret for local development only.
const devSecret = "dev-secret-change-me"

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	// Missing .env is not an error; env vars alone are fine.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:      envOr("HR_ADDR", ":8080"),
		DBPath:    envOr("HR_DB_PATH", "./data/hr.db"),
		JWTSecret: envOr("HR_JWT_SECRET", devSecret),
	}

	ttl := envOr("HR_TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid HR_TOKEN_TTL %q: %w", ttl, err)
	}
	cfg.TokenTTL = d

	for _, origin := range strings.Split(envOr("HR_CORS_ORIGINS", "*"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
