package qwen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers/internal/sse"
)

// doneSignal marks the end of an SSE stream.
const doneSignal = "[DONE]"

// maxDecodeFailures is the number of consecutive undecodable chunks
// tolerated before the stream is abandoned with a decode error.
const maxDecodeFailures = 3

// doCreateMessage performs a streaming chat completion request.
func (p *Qwen) doCreateMessage(ctx context.Context, system string, history []core.Message) (*core.MessageStream, error) {
	body, err := json.Marshal(p.buildRequest(system, history, true))
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}
	httpReq.Header = p.buildHeaders()
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.httpClient().Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get("x-request-id"))
	}

	eventCh := make(chan core.StreamEvent, 1)
	errCh := make(chan error, 1)

	go p.processStream(ctx, resp.Body, eventCh, errCh)

	return &core.MessageStream{Ch: eventCh, Err: errCh}, nil
}

// processStream reads the SSE stream and emits normalized events.
// Both channels are closed on every exit path.
func (p *Qwen) processStream(
	ctx context.Context,
	body io.ReadCloser,
	eventCh chan<- core.StreamEvent,
	errCh chan<- error,
) {
	defer body.Close()
	defer close(eventCh)
	defer close(errCh)

	scanner := sse.NewScanner(body)
	decodeFailures := 0

	for scanner.Next() {
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		default:
		}

		payload := scanner.Event().Data
		if payload == doneSignal {
			return
		}

		var chunk qwenStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			decodeFailures++
			p.logger().Warn("skipping undecodable stream chunk",
				"provider", "qwen",
				"error", err,
			)
			if decodeFailures >= maxDecodeFailures {
				errCh <- newDecodeError(err)
				return
			}
			continue
		}
		decodeFailures = 0

		for _, choice := range chunk.Choices {
			if choice.Delta.ReasoningContent != "" {
				if !emit(ctx, eventCh, errCh, core.ReasoningEvent(choice.Delta.ReasoningContent)) {
					return
				}
			}
			if choice.Delta.Content != "" {
				if !emit(ctx, eventCh, errCh, core.TextEvent(choice.Delta.Content)) {
					return
				}
			}
		}

		if chunk.Usage != nil {
			if !emit(ctx, eventCh, errCh, core.UsageEvent(chunk.Usage.PromptTokens, chunk.Usage.CompletionTokens)) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			errCh <- ctx.Err()
			return
		}
		errCh <- newNetworkError(err)
	}
}

// emit delivers ev unless ctx is done first. A false return means the
// consumer is gone and the stream goroutine must exit.
func emit(ctx context.Context, eventCh chan<- core.StreamEvent, errCh chan<- error, ev core.StreamEvent) bool {
	select {
	case eventCh <- ev:
		return true
	case <-ctx.Done():
		errCh <- ctx.Err()
		return false
	}
}
