package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	RedisURL    string
	CORSOrigins string
	TablePrefix string
	// AI collaborator configuration
	AIBaseURL    string
	AIProvider   string // "remote", "mock" or "auto" (remote with mock fallback)
	AIMaxRetries int
	AITimeout    time.Duration
	AICacheTTL   time.Duration
	// Auth. When JWKSURL is empty the server runs without token
	// verification and every request is attributed to a local user.
	JWKSURL string
	// Wizard sessions
	SessionTTL    time.Duration
	SweepSchedule string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		// AI collaborator configuration
		AIBaseURL:    getEnv("AI_BASE_URL", "http://localhost:5000/api"),
		AIProvider:   getEnv("AI_PROVIDER", "auto"),
		AIMaxRetries: getEnvInt("AI_MAX_RETRIES", 2),
		AITimeout:    getEnvDuration("AI_TIMEOUT", 60*time.Second),
		AICacheTTL:   getEnvDuration("AI_CACHE_TTL", 30*time.Minute),
		JWKSURL:      getEnv("JWKS_URL", ""),
		// Wizard sessions
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
		SweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 10m"),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
