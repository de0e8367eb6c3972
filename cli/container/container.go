// Package container wires the CLI's services with go.uber.org/dig.
// Commands resolve a Container once per invocation and work through the
// typed getters; dig stays an implementation detail of this package.
package container

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/dig"

	"github.com/braid-labs/braid/cli/config"
	"github.com/braid-labs/braid/cli/keystore"
	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers"
	"github.com/braid-labs/braid/providers/deepseek"
	"github.com/braid-labs/braid/providers/qwen"
	"github.com/braid-labs/braid/transport"
)

// Options carries CLI-level settings into the service graph. Zero values
// defer to the config file and provider defaults.
type Options struct {
	// Config is the loaded CLI configuration. Nil behaves like an
	// empty config.
	Config *config.Config

	// ProviderID selects the provider, overriding default_provider.
	ProviderID string

	// ModelID selects the model, overriding the configured model.
	ModelID string

	// Temperature is the sampling temperature. Zero leaves the
	// provider default in place.
	Temperature float32

	// MaxTokens caps completion length when positive.
	MaxTokens int

	// Logger receives operational logging and request telemetry.
	// Nil discards.
	Logger *slog.Logger

	// Keystore overrides the default encrypted file keystore.
	Keystore keystore.Keystore
}

// Container holds the resolved service singletons for one CLI invocation.
type Container struct {
	cfg       *config.Config
	transport *transport.Config
	keystore  keystore.Keystore
	provider  core.Provider
	client    *core.Client
}

// Config returns the loaded CLI configuration.
func (c *Container) Config() *config.Config { return c.cfg }

// Transport returns the process-wide HTTP transport configuration.
func (c *Container) Transport() *transport.Config { return c.transport }

// Keystore returns the API key store.
func (c *Container) Keystore() keystore.Keystore { return c.keystore }

// Provider returns the selected provider.
func (c *Container) Provider() core.Provider { return c.provider }

// Client returns the request client bound to the selected provider.
func (c *Container) Client() *core.Client { return c.client }

// New builds the service graph and resolves it into a Container.
// Construction fails fast: a bad CA bundle, a missing API key, or an
// unknown provider surfaces here, before any request is attempted.
func New(opts Options) (*Container, error) {
	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	d := dig.New()

	if err := d.Provide(func() Options { return opts }); err != nil {
		return nil, err
	}
	if err := d.Provide(func(o Options) *config.Config { return o.Config }); err != nil {
		return nil, err
	}
	if err := d.Provide(NewTransport); err != nil {
		return nil, err
	}
	if err := d.Provide(newKeystore); err != nil {
		return nil, err
	}
	if err := d.Provide(newProvider); err != nil {
		return nil, err
	}
	if err := d.Provide(newClient); err != nil {
		return nil, err
	}

	var c *Container
	err := d.Invoke(func(cfg *config.Config, tr *transport.Config, ks keystore.Keystore, p core.Provider, cl *core.Client) {
		c = &Container{cfg: cfg, transport: tr, keystore: ks, provider: p, client: cl}
	})
	if err != nil {
		// Surface the constructor's own error so callers can classify
		// it with errors.Is.
		return nil, dig.RootCause(err)
	}
	return c, nil
}

// NewTransport builds the HTTP transport for a config. A ca_bundle config
// entry takes precedence over the environment-driven default. Exported so
// commands that need connectivity without credentials, like doctor, can
// share the wiring.
func NewTransport(cfg *config.Config) (*transport.Config, error) {
	if cfg != nil && cfg.CABundle != "" {
		tr, err := transport.New(transport.WithCABundle(cfg.CABundle))
		if err != nil {
			return nil, fmt.Errorf("ca_bundle: %v: %w", err, core.ErrConfig)
		}
		return tr, nil
	}
	tr := transport.Default()
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, core.ErrConfig)
	}
	return tr, nil
}

func newKeystore(o Options) (keystore.Keystore, error) {
	if o.Keystore != nil {
		return o.Keystore, nil
	}
	return keystore.NewKeystore()
}

// newProvider resolves the provider ID, API key, model, and base URL and
// constructs the provider on the shared transport.
func newProvider(o Options, cfg *config.Config, ks keystore.Keystore, tr *transport.Config) (core.Provider, error) {
	id := o.ProviderID
	if id == "" {
		id = cfg.DefaultProvider
	}
	if id == "" {
		return nil, fmt.Errorf("no provider selected: pass --provider or set default_provider in %s: %w", config.DefaultConfigPath(), core.ErrConfig)
	}

	apiKey, err := resolveAPIKey(ks, cfg.KeyRef(id), id)
	if err != nil {
		return nil, err
	}

	model := o.ModelID
	if model == "" {
		model = cfg.ModelFor(id)
	}

	var baseURL string
	if pc := cfg.GetProvider(id); pc != nil {
		baseURL = pc.BaseURL
	}

	switch id {
	case "deepseek":
		popts := []deepseek.Option{
			deepseek.WithHTTPClient(tr.Client()),
			deepseek.WithLogger(o.Logger),
		}
		if model != "" {
			popts = append(popts, deepseek.WithModel(core.ModelID(model)))
		}
		if baseURL != "" {
			popts = append(popts, deepseek.WithBaseURL(baseURL))
		}
		if o.Temperature != 0 {
			popts = append(popts, deepseek.WithTemperature(o.Temperature))
		}
		if o.MaxTokens > 0 {
			popts = append(popts, deepseek.WithMaxTokens(o.MaxTokens))
		}
		return deepseek.New(apiKey, popts...)

	case "qwen":
		popts := []qwen.Option{
			qwen.WithHTTPClient(tr.Client()),
			qwen.WithLogger(o.Logger),
		}
		if model != "" {
			popts = append(popts, qwen.WithModel(core.ModelID(model)))
		}
		if baseURL != "" {
			popts = append(popts, qwen.WithBaseURL(baseURL))
		}
		if o.Temperature != 0 {
			popts = append(popts, qwen.WithTemperature(o.Temperature))
		}
		if o.MaxTokens > 0 {
			popts = append(popts, qwen.WithMaxTokens(o.MaxTokens))
		}
		return qwen.New(apiKey, popts...)

	default:
		// Third-party providers registered via providers.Register get
		// default construction without the wiring above.
		if providers.IsRegistered(id) {
			return providers.Create(id, apiKey)
		}
		return nil, fmt.Errorf("unknown provider: %s (available: %v): %w", id, providers.List(), core.ErrConfig)
	}
}

func newClient(o Options, p core.Provider) *core.Client {
	return core.NewClient(p, core.WithTelemetry(NewLogTelemetry(o.Logger)))
}

// resolveAPIKey looks up the provider's API key, preferring the keystore
// entry and falling back to the provider's environment variables.
func resolveAPIKey(ks keystore.Keystore, ref, id string) (string, error) {
	value, err := ks.Get(ref)
	if err == nil {
		return value, nil
	}
	var notFound *keystore.ErrKeyNotFound
	if !errors.As(err, &notFound) {
		return "", err
	}

	if key := envAPIKey(id); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("no API key for %s: run 'braid keys set %s' or set %s: %w", id, id, primaryEnvVar(id), core.ErrConfig)
}

// envAPIKey returns the API key from the provider's environment variables.
func envAPIKey(id string) string {
	switch id {
	case "qwen":
		// QWEN_API_KEY wins; DASHSCOPE_API_KEY covers DashScope users
		if key := os.Getenv(qwen.DefaultAPIKeyEnvVar); key != "" {
			return key
		}
		return os.Getenv(qwen.DashScopeAPIKeyEnvVar)
	case "deepseek":
		return os.Getenv(deepseek.DefaultAPIKeyEnvVar)
	default:
		return os.Getenv(strings.ToUpper(id) + "_API_KEY")
	}
}

// primaryEnvVar names the environment variable suggested in errors.
func primaryEnvVar(id string) string {
	switch id {
	case "qwen":
		return qwen.DefaultAPIKeyEnvVar
	case "deepseek":
		return deepseek.DefaultAPIKeyEnvVar
	default:
		return strings.ToUpper(id) + "_API_KEY"
	}
}
