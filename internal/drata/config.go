package drata

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roivaz/drata-compliance-mcp/internal/config"
	"github.com/roivaz/drata-compliance-mcp/internal/logging"
)

const (
	defaultPageSize = 50
	maxPageSize     = 50
	defaultMaxPages = 20
	defaultTimeout  = 30 * time.Second
)

// ErrMissingAPIKey is returned when no API key is configured. Callers treat it
// as fatal at startup.
var ErrMissingAPIKey = errors.New("drata_api_key (DRATA_API_KEY) is required")

var regionBaseURLs = map[string]string{
	"us":   "https://public-api.drata.com",
	"eu":   "https://public-api.eu.drata.com",
	"apac": "https://public-api.apac.drata.com",
}

type Config struct {
	APIKey   string
	Region   string
	BaseURL  string // overrides Region when set
	Timeout  time.Duration
	PageSize int // records per request, capped at the API maximum of 50
	MaxPages int // upper bound on pages walked by the ListAll* calls
	Logger   logging.Logger
	Observer RequestObserver
}

// LoadConfig builds a client Config from viper-backed settings.
func LoadConfig() (Config, error) {
	cfg := Config{
		APIKey:   config.APIKey(),
		Region:   config.Region(),
		BaseURL:  config.BaseURL(),
		PageSize: config.PageSize(),
		MaxPages: config.MaxPages(),
	}
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	timeout, err := parseDuration(config.Timeout(), defaultTimeout)
	if err != nil {
		return Config{}, fmt.Errorf("invalid drata_timeout: %w", err)
	}
	cfg.Timeout = timeout

	if _, err := cfg.ResolveBaseURL(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveBaseURL returns the explicit base URL or the one for the region.
func (c Config) ResolveBaseURL() (string, error) {
	if trimmed := strings.TrimSpace(c.BaseURL); trimmed != "" {
		return strings.TrimRight(trimmed, "/"), nil
	}
	region := strings.ToLower(strings.TrimSpace(c.Region))
	if region == "" {
		region = "us"
	}
	base, ok := regionBaseURLs[region]
	if !ok {
		return "", fmt.Errorf("unknown drata_region %q (expected us, eu or apac)", c.Region)
	}
	return base, nil
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.PageSize > maxPageSize {
		c.PageSize = maxPageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, err
	}
	return d, nil
}
