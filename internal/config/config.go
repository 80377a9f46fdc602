package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	// Server
	Port           string
	AllowedOrigins []string
	TrustedProxies []string

	// Database
	DatabaseURL string // takes precedence when set (production)
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string

	// Sessions
	JWTSecret       string
	SessionDuration time.Duration

	// Email
	SendGridAPIKey string
	FromEmail      string
	FromName       string

	// Reminder sweep
	SweepEnabled  bool
	SweepInterval time.Duration
}

// Load reads configuration from the environment. Database and JWT settings
// are required and abort startup when missing.
func Load() *Config {
	cfg := &Config{
		Port:            GetEnv("PORT", "8080"),
		AllowedOrigins:  []string{GetEnv("ALLOWED_ORIGIN", "http://localhost:3000")},
		TrustedProxies:  []string{"127.0.0.1"},
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       getEnvRequired("JWT_SECRET_KEY"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 8*time.Hour),
		SendGridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		FromEmail:       GetEnv("NOTIFICATIONS_FROM_EMAIL", "access-management@example.com"),
		FromName:        GetEnv("NOTIFICATIONS_FROM_NAME", "Access Management System"),
		SweepEnabled:    getEnvBool("REMINDER_SWEEP_ENABLED", true),
		SweepInterval:   getEnvDuration("REMINDER_SWEEP_INTERVAL", time.Hour),
	}

	if cfg.DatabaseURL == "" {
		cfg.DBHost = getEnvRequired("DB_HOST")
		cfg.DBUser = getEnvRequired("DB_USER")
		cfg.DBPassword = getEnvRequired("DB_PASSWORD")
		cfg.DBName = getEnvRequired("DB_NAME")
		cfg.DBPort = GetEnv("DB_PORT", "5432")
		cfg.DBSSLMode = GetEnv("DB_SSL_MODE", "disable")
	}

	return cfg
}

// GetEnv retrieves an environment variable, falling back to defaultValue
// when unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired returns the environment variable value or aborts if not set.
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	log.Fatalf("Required environment variable %s is not set", key)
	return ""
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return d
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Invalid boolean for %s: %v", key, err)
	}
	return b
}
