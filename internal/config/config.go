package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port      string
	RedisAddr string `validate:"required"`

	// Affiliate Open API credentials
	AppKey     string
	AppSecret  string
	TrackingID string
	BaseURL    string `validate:"required,url"`
	Timeout    time.Duration

	// Search defaults
	PageSize int `validate:"min=1,max=50"`
	Currency string
	Language string

	// Rate limits, per service
	SearchPerSecond    int `validate:"min=1"`
	SearchPerDay       int `validate:"min=0"`
	AffiliatePerSecond int `validate:"min=1"`
	AffiliatePerDay    int `validate:"min=0"`
}

// Load loads configuration from environment variables with fallbacks to defaults
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		AppKey:             getEnv("ALIEXPRESS_APP_KEY", ""),
		AppSecret:          getEnv("ALIEXPRESS_APP_SECRET", ""),
		TrackingID:         getEnv("ALIEXPRESS_TRACKING_ID", "default_tracking_id"),
		BaseURL:            getEnv("ALIEXPRESS_BASE_URL", "https://api-sg.aliexpress.com/sync"),
		Timeout:            10 * time.Second,
		PageSize:           20,
		Currency:           getEnv("TARGET_CURRENCY", "USD"),
		Language:           getEnv("TARGET_LANGUAGE", "EN"),
		SearchPerSecond:    2,
		SearchPerDay:       10000,
		AffiliatePerSecond: 5,
		AffiliatePerDay:    50000,
	}

	if ms, err := strconv.Atoi(getEnv("API_TIMEOUT_MS", "")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n, err := strconv.Atoi(getEnv("SEARCH_PAGE_SIZE", "")); err == nil && n > 0 {
		cfg.PageSize = n
	}
	if n, err := strconv.Atoi(getEnv("SEARCH_RATE_PER_SECOND", "")); err == nil && n > 0 {
		cfg.SearchPerSecond = n
	}
	if n, err := strconv.Atoi(getEnv("SEARCH_RATE_PER_DAY", "")); err == nil && n >= 0 {
		cfg.SearchPerDay = n
	}
	if n, err := strconv.Atoi(getEnv("AFFILIATE_RATE_PER_SECOND", "")); err == nil && n > 0 {
		cfg.AffiliatePerSecond = n
	}
	if n, err := strconv.Atoi(getEnv("AFFILIATE_RATE_PER_DAY", "")); err == nil && n >= 0 {
		cfg.AffiliatePerDay = n
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// placeholders commonly left in example .env files; any of these means
// the pipeline runs in offline demo mode instead of calling the live API.
var placeholderValues = []string{"", "demo", "changeme", "your_app_key", "your_app_secret"}

// DemoMode reports whether real API credentials are configured.
func (c *Config) DemoMode() bool {
	return isPlaceholder(c.AppKey) || isPlaceholder(c.AppSecret)
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, p := range placeholderValues {
		if v == p {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
