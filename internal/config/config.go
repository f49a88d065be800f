// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// Recipients maps Telegram chat IDs to display labels, e.g.
	// RECIPIENTS="123456:Mr mouse,789012:Mrs tiger".
	Recipients map[int64]string `envconfig:"RECIPIENTS" required:"true"`

	BaseURL   string `envconfig:"CIAN_BASE_URL" default:"https://api.cian.ru/"`
	UserAgent string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/90.0.4600.0 Iron Safari/537.36"`

	// MaxRetries bounds token refresh attempts and per-page search
	// attempts. RetryDelay is both the pause between attempts and the
	// sleep between polling cycles.
	MaxRetries uint          `envconfig:"MAX_RETRIES" default:"7"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"5s"`

	StoreBackend    string `envconfig:"STORE_BACKEND" default:"json"`
	KnownOffersPath string `envconfig:"KNOWN_OFFERS_PATH" default:"./data/known_offers.json"`
	DatabasePath    string `envconfig:"DATABASE_PATH" default:"./data/bot.db"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Search SearchConfig
}

// SearchConfig is the fixed search filter sent to the listing service.
type SearchConfig struct {
	Rooms          []int `envconfig:"SEARCH_ROOMS" default:"1,2"`
	MaxPrice       int   `envconfig:"SEARCH_MAX_PRICE" default:"110000"`
	MaxFootMinutes int   `envconfig:"SEARCH_MAX_FOOT_MINUTES" default:"20"`
	MetroID        int   `envconfig:"SEARCH_METRO_ID" default:"338"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.StoreBackend != BackendJSON && cfg.StoreBackend != BackendSQLite {
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want %q or %q)", cfg.StoreBackend, BackendJSON, BackendSQLite)
	}
	if cfg.MaxRetries == 0 {
		return nil, fmt.Errorf("MAX_RETRIES must be at least 1")
	}
	if len(cfg.Search.Rooms) == 0 {
		return nil, fmt.Errorf("SEARCH_ROOMS must list at least one room count")
	}

	return &cfg, nil
}
