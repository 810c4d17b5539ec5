package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingKey indicates a required environment variable was not set.
// It is returned (wrapped) from Load and is the only fatal configuration error.
var ErrMissingKey = errors.New("missing required configuration key")

// Config holds all runtime settings for the research agent. Values are read
// once at startup; the struct is treated as read-only afterwards and is safe
// to share across concurrent research calls.
type Config struct {
	SerperAPIKey string
	OpenAIAPIKey string

	ModelName   string
	Temperature float64

	// MaxSources bounds how many search results are scraped per topic.
	MaxSources int
	// HTTPTimeout applies to every outbound HTTP call.
	HTTPTimeout time.Duration
	// RespectRobots enables robots.txt checks before scraping a URL.
	RespectRobots bool
	// Fingerprint selects the TLS client profile used by the scraper.
	Fingerprint string
	// MetricsPort exposes /metrics when non-zero.
	MetricsPort int
}

// Load reads configuration from the process environment. An optional .env
// file in the working directory is merged in first, with real environment
// variables taking precedence. Missing required keys fail here, not at first
// use.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		// Real env vars win over file values, so only unset keys are filled.
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	v.SetDefault("MODEL_NAME", "gpt-4")
	v.SetDefault("TEMPERATURE", 0.1)
	v.SetDefault("SCOUT_MAX_SOURCES", 5)
	v.SetDefault("SCOUT_HTTP_TIMEOUT", "15s")
	v.SetDefault("SCOUT_RESPECT_ROBOTS", false)
	v.SetDefault("SCOUT_FINGERPRINT", "chrome")
	v.SetDefault("SCOUT_METRICS_PORT", 0)

	cfg := &Config{
		SerperAPIKey:  v.GetString("SERPER_API_KEY"),
		OpenAIAPIKey:  v.GetString("OPENAI_API_KEY"),
		ModelName:     v.GetString("MODEL_NAME"),
		Temperature:   v.GetFloat64("TEMPERATURE"),
		MaxSources:    v.GetInt("SCOUT_MAX_SOURCES"),
		HTTPTimeout:   v.GetDuration("SCOUT_HTTP_TIMEOUT"),
		RespectRobots: v.GetBool("SCOUT_RESPECT_ROBOTS"),
		Fingerprint:   v.GetString("SCOUT_FINGERPRINT"),
		MetricsPort:   v.GetInt("SCOUT_METRICS_PORT"),
	}

	if cfg.SerperAPIKey == "" {
		return nil, fmt.Errorf("%w: SERPER_API_KEY", ErrMissingKey)
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingKey)
	}

	validate(cfg)
	return cfg, nil
}

// validate clamps out-of-range values to safe bounds rather than failing.
func validate(cfg *Config) {
	if cfg.Temperature < 0 {
		cfg.Temperature = 0
	}
	if cfg.Temperature > 2 {
		cfg.Temperature = 2
	}
	if cfg.MaxSources < 1 {
		cfg.MaxSources = 1
	}
	if cfg.MaxSources > 10 {
		cfg.MaxSources = 10
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
}
