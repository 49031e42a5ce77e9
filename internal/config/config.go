package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the API server and worker
type Config struct {
	// HTTP Configuration
	HTTP HTTPConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration
	Redis RedisConfig

	// Token Configuration
	Auth AuthConfig

	// Mail Configuration
	Mail MailConfig

	// Logging Configuration
	Logging LoggingConfig

	// TokenPurgeSchedule is the cron expression for purging expired revoked tokens
	TokenPurgeSchedule string
}

// HTTPConfig holds HTTP listener configuration
type HTTPConfig struct {
	Port        string
	CORSOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// AuthConfig holds JWT and bootstrap account configuration
type AuthConfig struct {
	JWTSecret            string // Empty = generated once and persisted in the database
	AccessTokenLifetime  time.Duration
	RefreshTokenLifetime time.Duration
	AdminUsername        string
	AdminPassword        string
}

// MailConfig holds outgoing mail configuration for contact messages
type MailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
}

// SMTPEnabled reports whether an SMTP relay is configured
func (m MailConfig) SMTPEnabled() bool {
	return m.SMTPHost != ""
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	accessLifetime, err := durationEnv("ACCESS_TOKEN_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshLifetime, err := durationEnv("REFRESH_TOKEN_LIFETIME", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTP: HTTPConfig{
			Port:        getEnv("PORT", "8000"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "taskflow.sqlite"),
		},
		Redis: RedisConfig{
			Address: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Auth: AuthConfig{
			JWTSecret:            os.Getenv("JWT_SECRET"),
			AccessTokenLifetime:  accessLifetime,
			RefreshTokenLifetime: refreshLifetime,
			AdminUsername:        os.Getenv("ADMIN_USERNAME"),
			AdminPassword:        os.Getenv("ADMIN_PASSWORD"),
		},
		Mail: MailConfig{
			SMTPHost:     os.Getenv("SMTP_HOST"),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: os.Getenv("SMTP_USERNAME"),
			SMTPPassword: os.Getenv("SMTP_PASSWORD"),
			FromAddress:  getEnv("DEFAULT_FROM_EMAIL", "noreply@taskflow.local"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		TokenPurgeSchedule: getEnv("TOKEN_PURGE_SCHEDULE", "0 * * * *"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
