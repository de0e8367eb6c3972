package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider is the interface that LLM backends must implement.
// Providers SHOULD be safe for concurrent calls.
// If a provider cannot be concurrent-safe, it MUST document this.
type Provider interface {
	// ID returns the provider identifier (e.g., "deepseek", "qwen").
	ID() string

	// Models returns the list of models available from this provider.
	Models() []ModelInfo

	// Supports reports whether the provider supports the given feature.
	Supports(feature Feature) bool

	// Model resolves the configured model identifier against the
	// provider's static model table, falling back to the provider
	// default when the identifier is unknown. It never fails.
	Model() ModelSelection

	// Complete sends the system prompt and history and blocks until the
	// full response is available.
	Complete(ctx context.Context, system string, history []Message) (*Response, error)

	// CreateMessage sends the system prompt and history and returns a
	// stream of normalized events. The stream terminates when the backend
	// closes it; cancel ctx to abandon it early.
	CreateMessage(ctx context.Context, system string, history []Message) (*MessageStream, error)
}

// Client is the main entry point for talking to a provider. It layers
// retry, telemetry, and request correlation IDs over the raw provider.
// Client is safe for concurrent use.
type Client struct {
	provider  Provider
	telemetry TelemetryHook
	retry     RetryPolicy
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new Client with the given provider and options.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:  p,
		telemetry: NoopTelemetryHook{},
		retry:     DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTelemetry sets the telemetry hook for the client.
func WithTelemetry(h TelemetryHook) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.telemetry = h
		}
	}
}

// WithRetryPolicy sets the retry policy for the client.
func WithRetryPolicy(r RetryPolicy) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.retry = r
		}
	}
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// Model returns the provider's resolved model selection.
func (c *Client) Model() ModelSelection {
	return c.provider.Model()
}

// Complete sends a non-streaming request, retrying transient failures
// per the client's policy.
func (c *Client) Complete(ctx context.Context, system string, history []Message) (*Response, error) {
	providerID := c.provider.ID()
	model := c.provider.Model().ID
	requestID := uuid.NewString()
	start := time.Now()

	c.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Model:     model,
		RequestID: requestID,
		Start:     start,
	})

	var resp *Response
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = c.provider.Complete(ctx, system, history)
		if err == nil {
			break
		}

		delay, ok := c.retry.NextDelay(attempt, err)
		if !ok {
			err = retryExhausted(attempt, err)
			break
		}
		if werr := sleep(ctx, delay); werr != nil {
			err = werr
			break
		}
	}

	var usage Usage
	if resp != nil {
		usage = resp.Usage
	}
	c.telemetry.OnRequestEnd(RequestEndEvent{
		Provider:  providerID,
		Model:     model,
		RequestID: requestID,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})

	return resp, err
}

// CreateMessage sends a streaming request wrapped in RetryStream: failures
// before the first event are retried per the client's policy, failures
// after partial output are terminal. Telemetry fires when the stream
// terminates.
func (c *Client) CreateMessage(ctx context.Context, system string, history []Message) (*MessageStream, error) {
	providerID := c.provider.ID()
	model := c.provider.Model().ID
	requestID := uuid.NewString()
	start := time.Now()

	c.telemetry.OnRequestStart(RequestStartEvent{
		Provider:  providerID,
		Model:     model,
		RequestID: requestID,
		Start:     start,
	})

	stream, err := RetryStream(ctx, c.retry, func(ctx context.Context) (*MessageStream, error) {
		return c.provider.CreateMessage(ctx, system, history)
	})
	if err != nil {
		c.telemetry.OnRequestEnd(RequestEndEvent{
			Provider:  providerID,
			Model:     model,
			RequestID: requestID,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	return c.instrumentStream(ctx, stream, providerID, model, requestID, start), nil
}

// instrumentStream relays a stream and emits OnRequestEnd with the final
// usage and error once it terminates.
func (c *Client) instrumentStream(
	ctx context.Context,
	stream *MessageStream,
	provider string,
	model ModelID,
	requestID string,
	start time.Time,
) *MessageStream {
	out := make(chan StreamEvent, 1)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		var usage Usage
		var streamErr error

		// fail records the first terminal error; later errors are dropped.
		fail := func(err error) {
			if streamErr == nil && err != nil {
				streamErr = err
				errc <- err
			}
		}

		events, errs := stream.Ch, stream.Err
		for events != nil || errs != nil {
			select {
			case <-ctx.Done():
				fail(ctx.Err())
				events, errs = nil, nil

			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if ev.Type == EventUsage {
					usage = ev.Usage
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					fail(ctx.Err())
					events, errs = nil, nil
				}

			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				fail(err)
			}
		}

		c.telemetry.OnRequestEnd(RequestEndEvent{
			Provider:  provider,
			Model:     model,
			RequestID: requestID,
			Start:     start,
			End:       time.Now(),
			Usage:     usage,
			Err:       streamErr,
		})
	}()

	return &MessageStream{Ch: out, Err: errc}
}
