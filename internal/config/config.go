package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port         string
	Env          string
	DatabasePath string
	JWTSecret    string
	TokenTTL     time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Env:          getEnv("ENV", "development"),
		DatabasePath: getEnv("DATABASE_PATH", "patter.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTL:     getDuration("TOKEN_TTL", 7*24*time.Hour),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			panic("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-do-not-use"
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
