// Package core provides the Braid client and the types that all providers
// implement.
//
// Braid is a client-side integration layer for talking to multiple LLM
// backends through one uniform streaming event interface. Every outbound
// request rides the process-wide transport (see the transport package),
// which honors the host environment's proxy and certificate configuration.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds
// retry logic, telemetry, and request correlation IDs:
//
//	provider, err := deepseek.New(os.Getenv("DEEPSEEK_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	client := core.NewClient(provider,
//	    core.WithRetryPolicy(core.DefaultRetryPolicy()),
//	)
//
// # Streaming
//
// Braid treats streaming as the first-class primitive. [Client.CreateMessage]
// returns a [MessageStream] whose Ch channel yields [StreamEvent] values in
// backend order:
//
//	stream, err := client.CreateMessage(ctx, "You are helpful.", history)
//	if err != nil {
//	    return err
//	}
//	for ev := range stream.Ch {
//	    switch ev.Type {
//	    case core.EventText:
//	        fmt.Print(ev.Content)
//	    case core.EventReasoning:
//	        // thinking output, if the backend reports it separately
//	    case core.EventUsage:
//	        // token totals, usually on the final chunk
//	    }
//	}
//	if err := <-stream.Err; err != nil {
//	    return err
//	}
//
// An event is never emitted for an empty delta, so consumers can print
// every text event without filtering. Use [CollectStream] to accumulate a
// stream into a [Response] when deltas are not needed, or call
// [Client.Complete] to skip streaming entirely.
//
// # Retry
//
// [RetryStream] wraps a streaming call so that transient failures (rate
// limits, 5xx, network errors) occurring before the first event are retried
// with exponential backoff. A failure after partial output is terminal and
// propagates on the stream's Err channel; no retry ever duplicates events.
// Configure the schedule with [NewRetryPolicy]:
//
//	policy := core.NewRetryPolicy(core.RetryConfig{
//	    MaxRetries: 5,
//	    BaseDelay:  500 * time.Millisecond,
//	})
//	client := core.NewClient(provider, core.WithRetryPolicy(policy))
//
// # Error Handling
//
// The package defines sentinel errors for common failure modes:
//   - [ErrConfig]: missing API key or bad construction, before any I/O
//   - [ErrUnauthorized]: key rejected by the backend
//   - [ErrRateLimited]: provider rate limit exceeded
//   - [ErrBadRequest]: invalid request parameters
//   - [ErrServer]: provider server error (5xx)
//   - [ErrNetwork]: DNS, connect, or proxy failure
//   - [ErrDecode]: response parsing failed
//   - [ErrProxyUnsupported]: SOCKS proxy configured; refused, never bypassed
//
// Use errors.Is to classify:
//
//	if errors.Is(err, core.ErrRateLimited) {
//	    // back off
//	}
//
// Exhausted retries surface as a [*RetryError] wrapping the last attempt's
// error, so both the root cause and the attempt count are visible.
//
// # Telemetry
//
// Implement [TelemetryHook] to observe request lifecycle events. Hooks
// receive operational metadata only, never keys, prompts, or outputs.
//
// # Thread Safety
//
// [Client] is safe for concurrent use. A [MessageStream] may be consumed by
// one goroutine at a time. Providers are safe for concurrent calls; each
// CreateMessage invocation owns its own network stream.
package core
