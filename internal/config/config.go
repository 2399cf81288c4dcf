// Package config loads runtime configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server-level settings. Database settings live in the
// database package next to the pool they configure.
type Config struct {
	Port string

	// Redis settings for the optional rate limiter. An empty RedisAddr
	// disables rate limiting entirely.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// RateLimit is the number of requests allowed per client IP within
	// RateWindow. Only consulted when Redis is configured.
	RateLimit  int
	RateWindow time.Duration
}

// Load reads configuration, first merging a .env file (if present) into the
// process environment. Real environment variables win over .env entries.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	return Config{
		Port:          getEnv("PORT", "8080"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RateLimit:     getEnvInt("RATE_LIMIT", 100),
		RateWindow:    time.Duration(getEnvInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using fallback", "key", key, "value", v)
		return fallback
	}
	return n
}
