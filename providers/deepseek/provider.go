package deepseek

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/transport"
)

// DefaultAPIKeyEnvVar is the environment variable name for the DeepSeek API key.
const DefaultAPIKeyEnvVar = "DEEPSEEK_API_KEY"

// ErrAPIKeyMissing is returned by New when called with an empty API key.
var ErrAPIKeyMissing = fmt.Errorf("deepseek: missing API key: %w", core.ErrConfig)

// ErrAPIKeyNotFound is returned when the API key environment variable is not set.
var ErrAPIKeyNotFound = fmt.Errorf("deepseek: DEEPSEEK_API_KEY environment variable not set: %w", core.ErrConfig)

// NewFromEnv creates a new DeepSeek provider using the DEEPSEEK_API_KEY
// environment variable. This is a convenience factory for quick setup:
//
//	provider, err := deepseek.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := core.NewClient(provider)
func NewFromEnv(opts ...Option) (*DeepSeek, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...)
}

// DeepSeek is an LLM provider implementation for the DeepSeek chat API.
// DeepSeek is safe for concurrent use.
type DeepSeek struct {
	config Config

	clientOnce sync.Once
	client     *http.Client
}

// New creates a new DeepSeek provider with the given API key and options.
// The key is validated here, so a misconfigured provider fails before any
// request is attempted.
func New(apiKey string, opts ...Option) (*DeepSeek, error) {
	cfg := Config{
		APIKey:  core.NewSecret(apiKey),
		Model:   DefaultModel,
		BaseURL: DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.APIKey.IsEmpty() {
		return nil, ErrAPIKeyMissing
	}

	return &DeepSeek{config: cfg}, nil
}

// ID returns the provider identifier.
func (p *DeepSeek) ID() string {
	return "deepseek"
}

// Models returns the list of available models.
func (p *DeepSeek) Models() []core.ModelInfo {
	return AvailableModels()
}

// Supports reports whether the provider supports the given feature.
func (p *DeepSeek) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureReasoning:
		return true
	default:
		return false
	}
}

// Model resolves the configured model against the static model table.
// Unknown identifiers fall back to DefaultModel, so resolution never
// fails and callers can rely on the selection naming a known model.
func (p *DeepSeek) Model() core.ModelSelection {
	if info := GetModelInfo(p.config.Model); info != nil {
		return core.ModelSelection{ID: p.config.Model, Info: *info}
	}
	return core.ModelSelection{ID: DefaultModel, Info: *GetModelInfo(DefaultModel)}
}

// Complete sends a non-streaming chat request.
func (p *DeepSeek) Complete(ctx context.Context, system string, history []core.Message) (*core.Response, error) {
	return p.doComplete(ctx, system, history)
}

// CreateMessage sends a streaming chat request.
func (p *DeepSeek) CreateMessage(ctx context.Context, system string, history []core.Message) (*core.MessageStream, error) {
	return p.doCreateMessage(ctx, system, history)
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *DeepSeek) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	// Copy any extra headers
	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// httpClient resolves the HTTP client lazily, so constructing a provider
// never touches the process transport. The first request pins the choice.
func (p *DeepSeek) httpClient() *http.Client {
	p.clientOnce.Do(func() {
		switch {
		case p.config.HTTPClient != nil:
			p.client = p.config.HTTPClient
		case p.config.Timeout > 0:
			p.client = transport.Default().NewClient(transport.ClientOptions{Timeout: p.config.Timeout})
		default:
			p.client = transport.Default().Client()
		}
	})
	return p.client
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (p *DeepSeek) logger() *slog.Logger {
	if p.config.Logger != nil {
		return p.config.Logger
	}
	return discardLogger
}

// Compile-time check that DeepSeek implements the provider interface.
var _ core.Provider = (*DeepSeek)(nil)
