// Package config loads daemon settings from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port         string
	CookieSecure bool // Set Secure flag on session cookies (default: true)
	LogLevel     string

	// Storage
	DatabaseURL string

	// Cache (optional; in-process cache is used when RedisURL is empty)
	RedisURL string
	CacheTTL int // seconds, default 300

	// Sessions
	SessionMaxAge int // seconds, default 86400 (24h)
	PurgeInterval int // seconds between expired-session sweeps, default 3600
}

func (c *Config) SessionMaxAgeDuration() time.Duration {
	return time.Duration(c.SessionMaxAge) * time.Second
}

func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

func (c *Config) PurgeIntervalDuration() time.Duration {
	return time.Duration(c.PurgeInterval) * time.Second
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		CookieSecure: getEnvBool("COOKIE_SECURE", true),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisURL: os.Getenv("REDIS_URL"),
		CacheTTL: getEnvInt("CACHE_TTL", 300),

		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),
		PurgeInterval: getEnvInt("SESSION_PURGE_INTERVAL", 3600),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SessionMaxAge < 60 {
		return nil, fmt.Errorf("SESSION_MAX_AGE must be at least 60 seconds, got %d", cfg.SessionMaxAge)
	}
	if cfg.CacheTTL < 1 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %d", cfg.CacheTTL)
	}
	if cfg.PurgeInterval < 60 {
		return nil, fmt.Errorf("SESSION_PURGE_INTERVAL must be at least 60 seconds, got %d", cfg.PurgeInterval)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
