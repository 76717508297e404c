// Package config defines growthlens configuration and its loading.
//
// Conventions:
// - New(ctx) builds a Config with defaults.
// - Load(ctx, path) layers defaults, an optional YAML file and GROWTH_ env vars.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// SnapshotPath is where collect writes and analyze reads the snapshot collection.
	SnapshotPath string `koanf:"snapshot_path"`

	// ListingPattern is a printf pattern for rated-user listing pages, taking the page number.
	ListingPattern string `koanf:"listing_pattern"`

	// ListingPages is how many listing pages collect reads.
	ListingPages int `koanf:"listing_pages"`

	// TargetUsers caps how many handles collect takes from the listings.
	TargetUsers int `koanf:"target_users"`

	// APIBaseURL is the Codeforces API root.
	APIBaseURL string `koanf:"api_base_url"`

	// RequestTimeoutMS bounds a single API request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RetryAttempts is the total number of tries per API call.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBackoffMS is multiplied by the attempt number between tries.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// RequestIntervalMS is the minimum gap between two API calls.
	RequestIntervalMS int `koanf:"request_interval_ms"`

	// WorkerCount sets the number of collection workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory handle queue.
	QueueSize int `koanf:"queue_size"`

	// TopTags is how many tag rows the console report prints.
	TopTags int `koanf:"top_tags"`

	// Addr configures the HTTP listen address of serve, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CachePath points at the SQLite response cache. Empty disables caching.
	CachePath string `koanf:"cache_path"`
}

// New creates a Config with defaults. The context is reserved for loaders
// that need it and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		SnapshotPath:      "./data/snapshots.json",
		ListingPattern:    "./data/ratings_page_%d.html",
		ListingPages:      6,
		TargetUsers:       20,
		APIBaseURL:        "https://codeforces.com/api",
		RequestTimeoutMS:  30_000,
		RetryAttempts:     3,
		RetryBackoffMS:    3_000,
		RequestIntervalMS: 3_000,
		WorkerCount:       min(runtime.NumCPU(), 4),
		QueueSize:         1_000,
		TopTags:           15,
		Addr:              ":9080",
		CachePath:         "",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// RetryBackoff returns RetryBackoffMS as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// RequestInterval returns RequestIntervalMS as a duration.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}
