package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment. It is
// loaded once in main and passed into constructors explicitly.
type Config struct {
	DatabaseURL    string
	Host           string
	Port           string
	AllowedOrigins string
	ScreenshotDir  string
	CheckSchedule  string // cron expression, with seconds
	CheckOnStart   bool
	RateLimitRPS   float64
	RequestTimeout time.Duration
	Alerts         AlertConfig
}

// AlertConfig holds outbound notification settings
type AlertConfig struct {
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	FromEmail      string
	ToEmail        string
	ChatWebhookURL string
}

// Load reads the configuration from the environment
func Load() *Config {
	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		ScreenshotDir:  getEnv("SCREENSHOT_DIR", "/tmp/pricing-monitor"),
		CheckSchedule:  getEnv("CHECK_SCHEDULE", "0 0 */12 * * *"),
		CheckOnStart:   getEnvBool("CHECK_ON_START", true),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		Alerts: AlertConfig{
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getEnv("SMTP_PORT", "587"),
			SMTPUser:       os.Getenv("SMTP_USER"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			FromEmail:      getEnv("ALERTS_FROM_EMAIL", "alerts@pricewatch.local"),
			ToEmail:        os.Getenv("ALERTS_TO_EMAIL"),
			ChatWebhookURL: os.Getenv("CHAT_WEBHOOK_URL"),
		},
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
