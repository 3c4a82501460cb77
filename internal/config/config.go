package config

import (
	"os"
	"strconv"
	"strings"
)

// SMTPConfig holds settings for the outbound mail dispatcher.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string // From address on every outgoing mail
}

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// CORS
	AllowedOrigins []string

	// AI
	OpenAIAPIKey string

	// Features
	EnableAIChat bool

	// Outbound email
	SMTP SMTPConfig

	// Reminder sweep
	ReminderEnabled  bool
	ReminderSchedule string // Cron expression
}

func Load() *Config {
	env := getEnv("ENV", "development")

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  env,

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/nestegg?sslmode=disable"),

		// Auth
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// AI
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),

		// Features
		EnableAIChat: getBoolEnv("ENABLE_AI_CHAT", true),

		// Outbound email
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getIntEnv("SMTP_PORT", 25),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Sender:   getEnv("SMTP_SENDER", "NestEgg <no-reply@nestegg.app>"),
		},

		// Reminder sweep
		ReminderEnabled:  getBoolEnv("REMINDER_ENABLED", true),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 8 * * *"), // Default: daily at 08:00
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
