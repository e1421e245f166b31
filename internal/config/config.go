// Package config defines pipeline configuration and how it is loaded.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and GRIDIRON_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for serve, e.g. ":9080".
	Addr string `koanf:"addr"`

	LeagueID string `koanf:"league_id"`
	Season   int    `koanf:"season"`
	// Week is the current week; 0 means use MaxWeek.
	Week    int `koanf:"week"`
	MaxWeek int `koanf:"max_week"`

	// Provider client.
	BaseURL                 string  `koanf:"base_url"`
	HTTPTimeoutMS           int     `koanf:"http_timeout_ms"`
	MaxRetries              int     `koanf:"max_retries"`
	RequestsPerSecond       float64 `koanf:"requests_per_second"`
	RequestBurst            int     `koanf:"request_burst"`
	BreakerFailureThreshold int     `koanf:"breaker_failure_threshold"`
	BreakerOpenTimeoutMS    int     `koanf:"breaker_open_timeout_ms"`

	// WorkerCount sets the number of concurrent week fetches.
	WorkerCount int `koanf:"worker_count"`

	// StoreBackend selects where snapshots go: file, sqlite or dynamodb.
	StoreBackend  string `koanf:"store_backend"`
	DataDir       string `koanf:"data_dir"`
	SQLitePath    string `koanf:"sqlite_path"`
	DynamoDBTable string `koanf:"dynamodb_table"`
	AWSRegion     string `koanf:"aws_region"`

	// RedisURL, when set, moves the player catalog cache to redis.
	RedisURL          string `koanf:"redis_url"`
	CatalogTTLMinutes int    `koanf:"catalog_ttl_minutes"`

	TrendingLookbackHours int `koanf:"trending_lookback_hours"`
	TrendingLimit         int `koanf:"trending_limit"`

	// Schedule is a cron expression for serve mode; empty disables it.
	Schedule string `koanf:"schedule"`

	// ScoringOverrides maps stat kinds to weights applied over league settings.
	ScoringOverrides map[string]float64 `koanf:"scoring_overrides"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		MaxWeek:                 18,
		BaseURL:                 "https://api.sleeper.app/v1",
		HTTPTimeoutMS:           20_000,
		MaxRetries:              3,
		RequestsPerSecond:       10,
		RequestBurst:            5,
		BreakerFailureThreshold: 5,
		BreakerOpenTimeoutMS:    30_000,
		WorkerCount:             runtime.NumCPU(),
		StoreBackend:            BackendFile,
		DataDir:                 "data",
		SQLitePath:              "data/gridiron.db",
		AWSRegion:               "us-east-1",
		CatalogTTLMinutes:       12 * 60,
		TrendingLookbackHours:   24,
		TrendingLimit:           100,
		ScoringOverrides:        map[string]float64{},
	}
}

// CurrentWeek returns Week, or MaxWeek when Week is unset.
func (c *Config) CurrentWeek() int {
	if c.Week > 0 {
		return c.Week
	}
	return c.MaxWeek
}

// HTTPTimeout returns the provider request timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// BreakerOpenTimeout returns how long the breaker stays open.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutMS) * time.Millisecond
}

// CatalogTTL returns how long a cached player catalog stays fresh.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.CatalogTTLMinutes) * time.Minute
}

// Validate checks field ranges and backend requirements.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Season < 0:
		return fmt.Errorf("%w: season must not be negative", ErrInvalidConfig)
	case c.MaxWeek < 1:
		return fmt.Errorf("%w: max_week must be at least 1", ErrInvalidConfig)
	case c.Week < 0 || c.Week > c.MaxWeek:
		return fmt.Errorf("%w: week must be between 0 and max_week", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	case c.RequestsPerSecond <= 0 || c.RequestBurst < 1:
		return fmt.Errorf("%w: requests_per_second and request_burst must be positive", ErrInvalidConfig)
	case c.BreakerFailureThreshold < 1:
		return fmt.Errorf("%w: breaker_failure_threshold must be positive", ErrInvalidConfig)
	case c.CatalogTTLMinutes < 0:
		return fmt.Errorf("%w: catalog_ttl_minutes must not be negative", ErrInvalidConfig)
	}

	switch c.StoreBackend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data_dir is required for the file backend", ErrInvalidConfig)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("%w: dynamodb_table is required for the dynamodb backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}
