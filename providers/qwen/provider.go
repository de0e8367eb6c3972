package qwen

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

// DefaultAPIKeyEnvVar is the environment variable name for the Qwen API key.
const DefaultAPIKeyEnvVar = "QWEN_API_KEY"

// DashScopeAPIKeyEnvVar is the DashScope-native environment variable,
// honored as a fallback for users coming from the DashScope SDKs.
const DashScopeAPIKeyEnvVar = "DASHSCOPE_API_KEY"

// ErrAPIKeyMissing is returned by New when called with an empty API key.
var ErrAPIKeyMissing = fmt.Errorf("qwen: missing API key: %w", core.ErrConfig)

// ErrAPIKeyNotFound is returned when no API key environment variable is set.
var ErrAPIKeyNotFound = fmt.Errorf("qwen: QWEN_API_KEY environment variable not set: %w", core.ErrConfig)

// NewFromEnv creates a new Qwen provider from the environment, checking
// QWEN_API_KEY first and DASHSCOPE_API_KEY second.
func NewFromEnv(opts ...Option) (*Qwen, error) {
	apiKey := os.Getenv(DefaultAPIKeyEnvVar)
	if apiKey == "" {
		apiKey = os.Getenv(DashScopeAPIKeyEnvVar)
	}
	if apiKey == "" {
		return nil, ErrAPIKeyNotFound
	}
	return New(apiKey, opts...)
}

// Qwen is an LLM provider implementation for the Qwen models served by
// the DashScope OpenAI-compatible API. Qwen is safe for concurrent use.
type Qwen struct {
	config Config

	clientOnce sync.Once
	client     *http.Client
}

// New creates a new Qwen provider with the given API key and options.
func New(apiKey string, opts ...Option) (*Qwen, error) {
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

	return &Qwen{config: cfg}, nil
}

// ID returns the provider identifier.
func (p *Qwen) ID() string {
	return "qwen"
}

// Models returns the list of available models.
func (p *Qwen) Models() []core.ModelInfo {
	return AvailableModels()
}

// Supports reports whether the provider supports the given feature.
func (p *Qwen) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureChat, core.FeatureChatStreaming, core.FeatureReasoning:
		return true
	default:
		return false
	}
}

// Model resolves the configured model against the static model table,
// falling back to DefaultModel for unknown identifiers.
func (p *Qwen) Model() core.ModelSelection {
	if info := GetModelInfo(p.config.Model); info != nil {
		return core.ModelSelection{ID: p.config.Model, Info: *info}
	}
	return core.ModelSelection{ID: DefaultModel, Info: *GetModelInfo(DefaultModel)}
}

// Complete sends a non-streaming chat request.
func (p *Qwen) Complete(ctx context.Context, system string, history []core.Message) (*core.Response, error) {
	return p.doComplete(ctx, system, history)
}

// CreateMessage sends a streaming chat request.
func (p *Qwen) CreateMessage(ctx context.Context, system string, history []core.Message) (*core.MessageStream, error) {
	return p.doCreateMessage(ctx, system, history)
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *Qwen) buildHeaders() http.Header {
	headers := make(http.Header)

	headers.Set("Authorization", "Bearer "+p.config.APIKey.Expose())
	headers.Set("Content-Type", "application/json")

	for key, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	return headers
}

// httpClient resolves the HTTP client lazily, pinning the choice on
// first use.
func (p *Qwen) httpClient() *http.Client {
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

func (p *Qwen) logger() *slog.Logger {
	if p.config.Logger != nil {
		return p.config.Logger
	}
	return discardLogger
}

// Compile-time check that Qwen implements the provider interface.
var _ core.Provider = (*Qwen)(nil)
