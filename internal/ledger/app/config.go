package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer  string // Optional: issuer claim for tokens (default: base URL)
	BaseURL string // Optional: explicit public URL used in emailed links
	SiteURL string // Optional: deployment URL, used when BaseURL is unset

	SigningKeyFile string        // Optional: PKCS8 Ed25519 PEM; ephemeral key when unset
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./ledger.db)
	PepperFile     string        // Optional: path to password hashing pepper file (default: ./pepper)
	StorageRoot    string        // Optional: root directory for uploaded files (default: ./data)
	AMQPURL        string        // Optional: RabbitMQ URL; events are dropped when unset
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 7 days)
	OTPTTL         time.Duration // Optional: email confirmation token lifetime (default: 24h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	// Optional .env for local development; env vars always win.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               os.Getenv("LEDGER_ISSUER"),
		BaseURL:              os.Getenv("LEDGER_BASE_URL"),
		SiteURL:              os.Getenv("LEDGER_SITE_URL"),
		SigningKeyFile:       os.Getenv("LEDGER_SIGNING_KEY_FILE"),
		DatabaseFile:         getEnvOrDefault("LEDGER_DATABASE_FILE", "ledger.db"),
		PepperFile:           getEnvOrDefault("LEDGER_PEPPER_FILE", "pepper"),
		StorageRoot:          getEnvOrDefault("LEDGER_STORAGE_ROOT", "data"),
		AMQPURL:              os.Getenv("LEDGER_AMQP_URL"),
		AccessTTL:            getEnvDurationOrDefault("LEDGER_ACCESS_TTL", 0),
		RefreshTTL:           getEnvDurationOrDefault("LEDGER_REFRESH_TTL", 0),
		OTPTTL:               getEnvDurationOrDefault("LEDGER_OTP_TTL", 0),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	// Public URL resolution order: explicit override, then the deployment
	// URL, then a localhost fallback for local runs.
	if cfg.BaseURL == "" {
		cfg.BaseURL = cfg.SiteURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.Issuer == "" {
		cfg.Issuer = cfg.BaseURL
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
