package config

import (
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port        string
	Env         string
	FrontendURL string

	GoogleClientID string
	JWTSecret      string
	// SessionDurationHours bounds both the JWT expiry and the session row.
	SessionDurationHours int

	DB DatabaseConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is picked up automatically.
func Load() *Config {
	cfg := &Config{
		Port:                 getEnvWithDefault("PORT", "3002"),
		Env:                  getEnvWithDefault("ENV", "development"),
		FrontendURL:          getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionDurationHours: getEnvIntWithDefault("SESSION_DURATION_HOURS", 168),
		DB: DatabaseConfig{
			Host:     getEnvWithDefault("DB_HOST", "localhost"),
			Port:     getEnvWithDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
		},
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production-use-openssl-rand-hex-32"
		slog.Warn("JWT_SECRET not set, using insecure development default")
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}
