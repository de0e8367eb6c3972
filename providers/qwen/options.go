// Package qwen provides a Qwen (DashScope) API provider implementation for Braid.
package qwen

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/braid-labs/braid/core"
)

// DefaultBaseURL is the default base URL for the DashScope
// OpenAI-compatible endpoint (international region).
const DefaultBaseURL = "https://dashscope-intl.aliyuncs.com/compatible-mode/v1"

// Config holds the configuration for the Qwen provider.
type Config struct {
	// APIKey is the DashScope API key for authentication.
	APIKey core.Secret

	// Model is the model this provider instance serves. Defaults to
	// DefaultModel.
	Model core.ModelID

	// BaseURL is the base URL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the shared process transport. When nil,
	// requests ride transport.Default().
	HTTPClient *http.Client

	// Headers are additional headers to include in requests.
	Headers http.Header

	// Timeout bounds each request when HTTPClient is nil. Zero means no
	// timeout.
	Timeout time.Duration

	// Temperature is the sampling temperature sent when non-nil.
	Temperature *float32

	// MaxTokens caps completion length when non-nil.
	MaxTokens *int

	// Logger receives operational warnings. Defaults to a discard logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring the Qwen provider.
type Option func(*Config)

// WithModel sets the model served by this provider instance.
func WithModel(model core.ModelID) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithBaseURL sets the base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeaders sets additional headers to include in requests.
func WithHeaders(headers http.Header) Option {
	return func(c *Config) {
		c.Headers = headers
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.Temperature = &temperature
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.MaxTokens = &maxTokens
	}
}

// WithLogger sets the logger for operational warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
