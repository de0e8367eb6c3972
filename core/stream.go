package core

import (
	"context"
	"strings"
)

// MessageStream represents a streaming response from a provider.
//
// Channel Rules:
//   - Events arrive on Ch in backend order; Ch is closed when the stream ends
//   - Err emits at most one terminal error and is closed with the stream
//   - Providers MUST close both channels on every exit path (completion,
//     error, cancellation)
//   - Providers MUST select on ctx.Done while sending so an abandoned
//     consumer cannot leak the producing goroutine
//   - Ch buffers at most one translated chunk; the producer suspends until
//     the consumer pulls
//
// A MessageStream is not restartable. A second request requires a new call
// to the provider.
type MessageStream struct {
	// Ch emits stream events in order. Closed when the stream ends.
	Ch <-chan StreamEvent

	// Err emits at most one error, then is closed. An error received here
	// terminates the stream; events already received remain valid.
	Err <-chan error
}

// CollectStream drains a stream into a Response, accumulating text and
// reasoning deltas and keeping the last usage report. Blocks until the
// stream completes, fails, or ctx is cancelled.
func CollectStream(ctx context.Context, s *MessageStream) (*Response, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var content, reasoning strings.Builder
	var usage Usage
	var streamErr error

	events := s.Ch
	errs := s.Err
	for events != nil || errs != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev.Type {
			case EventText:
				content.WriteString(ev.Content)
			case EventReasoning:
				reasoning.WriteString(ev.Content)
			case EventUsage:
				usage = ev.Usage
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				streamErr = err
			}
		}
	}

	if streamErr != nil {
		return nil, streamErr
	}

	return &Response{
		Content:   content.String(),
		Reasoning: reasoning.String(),
		Usage:     usage,
	}, nil
}
