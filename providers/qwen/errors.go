package qwen

import (
	"errors"

	"github.com/braid-labs/braid/providers/internal/normalize"
)

// errEmptyChoices indicates a well-formed response with no choices.
var errEmptyChoices = errors.New("response contained no choices")

// normalizeError converts an HTTP error response into a ProviderError.
func normalizeError(statusCode int, body []byte, requestID string) error {
	return normalize.OpenAIStyleProviderError("qwen", statusCode, body, requestID)
}

// newNetworkError wraps a transport-level failure.
func newNetworkError(err error) error {
	return normalize.NetworkError("qwen", err)
}

// newDecodeError wraps a response parsing failure.
func newDecodeError(err error) error {
	return normalize.DecodeError("qwen", err)
}
