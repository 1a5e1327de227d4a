// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	Port        string
	DatabaseURL string // empty => in-memory campaign store
	AMQPURL     string // empty => in-process dispatch queue
	LogLevel    string
	Environment string

	// Daily trigger
	CronSpecDaily string
	MinScore      int
	WatchScore    int

	// Identity stamped into rendered messages
	Originator string
	NMLS       string

	// Dispatch mode: "queue" or "simulated"
	DispatchMode string

	// Email sender (dry-run when SMTPUser/SMTPPass are unset)
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	NotifyFrom string

	// SMS gateway (dry-run when unset)
	SMSGatewayURL string
	SMSAPIKey     string
	SMSSenderID   string

	// Voice gateway (dry-run when unset)
	VoiceGatewayURL string
	VoiceAPIKey     string
}

// Load reads configuration from environment variables and .env file (if
// present). godotenv.Load will not override existing env variables.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AMQPURL:         os.Getenv("AMQP_URL"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:     strings.ToLower(getEnv("ENVIRONMENT", "development")),
		CronSpecDaily:   getEnv("CRON_SPEC_DAILY", "0 7 * * *"),
		Originator:      getEnv("ORIGINATOR_NAME", "Brad Overlin, Movement Mortgage"),
		NMLS:            getEnv("ORIGINATOR_NMLS", "987905"),
		DispatchMode:    strings.ToLower(getEnv("DISPATCH_MODE", "queue")),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnv("SMTP_PORT", "587"),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		NotifyFrom:      getEnv("NOTIFY_FROM", "clair@movement-rate-tracker.com"),
		SMSGatewayURL:   getEnv("SMS_GATEWAY_URL", "https://api.smsmagic.com/v1/messages"),
		SMSAPIKey:       os.Getenv("SMS_API_KEY"),
		SMSSenderID:     getEnv("SMS_SENDER_ID", "MovementMtg"),
		VoiceGatewayURL: os.Getenv("VOICE_GATEWAY_URL"),
		VoiceAPIKey:     os.Getenv("VOICE_API_KEY"),
	}

	var err error
	cfg.MinScore, err = getEnvInt("MIN_SCORE", 50)
	if err != nil {
		return nil, err
	}
	cfg.WatchScore, err = getEnvInt("WATCH_SCORE", 30)
	if err != nil {
		return nil, err
	}

	if cfg.DispatchMode != "queue" && cfg.DispatchMode != "simulated" {
		return nil, fmt.Errorf("invalid DISPATCH_MODE %q: want queue or simulated", cfg.DispatchMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
