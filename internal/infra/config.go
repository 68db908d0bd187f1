package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents application configuration loaded from environment variables.
// It is constructed once at startup and passed by reference; nothing below
// the cmd layer reads the environment on its own.
type Config struct {
	AppEnv           string
	AstriaAPIKey     string
	AstriaBaseURL    string
	RequestTimeout   time.Duration
	PollInterval     time.Duration
	MaxPollAttempts  int
	CallbackPort     string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		AstriaAPIKey:     os.Getenv("ASTRIA_API_KEY"),
		AstriaBaseURL:    getEnv("ASTRIA_BASE_URL", "https://api.astria.ai"),
		RequestTimeout:   time.Second * time.Duration(getEnvInt("ASTRIA_REQUEST_TIMEOUT_SECONDS", 30)),
		PollInterval:     time.Second * time.Duration(getEnvInt("ASTRIA_POLL_INTERVAL_SECONDS", 2)),
		MaxPollAttempts:  getEnvInt("ASTRIA_MAX_POLL_ATTEMPTS", 90),
		CallbackPort:     getEnv("CALLBACK_PORT", "8090"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.AstriaAPIKey == "" {
		return nil, fmt.Errorf("ASTRIA_API_KEY is required")
	}

	if cfg.MaxPollAttempts <= 0 {
		return nil, fmt.Errorf("ASTRIA_MAX_POLL_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
