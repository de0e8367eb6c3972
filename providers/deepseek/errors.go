package deepseek

import (
	"errors"

	"github.com/braid-labs/braid/providers/internal/normalize"
)

// errEmptyChoices signals a well-formed response carrying no choices.
var errEmptyChoices = errors.New("response contains no choices")

// normalizeError converts an HTTP error response to a ProviderError with the appropriate sentinel.
func normalizeError(status int, body []byte, requestID string) error {
	return normalize.OpenAIStyleProviderError("deepseek", status, body, requestID)
}

// newNetworkError creates a ProviderError for network-related failures.
func newNetworkError(err error) error {
	return normalize.NetworkError("deepseek", err)
}

// newDecodeError creates a ProviderError for JSON decode failures.
func newDecodeError(err error) error {
	return normalize.DecodeError("deepseek", err)
}
