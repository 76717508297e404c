// Package codeforces retrieves rating histories and submissions from the
// Codeforces public API.
package codeforces

import (
	"net/http"
	"time"

	"github.com/okian/growthlens/pkg/logger"
)

// Default client configuration constants.
const (
	DefaultBaseURL     = "https://codeforces.com/api"
	DefaultAttempts    = 3
	DefaultBackoff     = 3 * time.Second
	DefaultMinInterval = 3 * time.Second
	DefaultTimeout     = 30 * time.Second
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets the total number of attempts and the linear backoff unit.
// The wait before attempt n+1 is n*backoff.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// WithMinInterval sets the minimum gap between two API calls.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.throttle = newThrottle(d)
		}
	}
}

// WithCache enables the raw response cache.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
