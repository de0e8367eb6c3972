// Package normalize provides shared provider error normalization helpers.
package normalize

import (
	"encoding/json"
	"net/http"

	"github.com/braid-labs/braid/core"
)

// openAIStyleErrorResponse represents providers that return:
// {"error":{"message":"...","type":"...","code":"..."}}
type openAIStyleErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// OpenAIStyleProviderError normalizes providers that use OpenAI-style error envelopes.
func OpenAIStyleProviderError(provider string, status int, body []byte, requestID string) error {
	var errResp openAIStyleErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	code := errResp.Error.Code
	if code == "" {
		code = errResp.Error.Type
	}

	return ProviderError(provider, status, requestID, code, message, SentinelForStatus(status))
}

// NetworkError wraps transport failures as provider-specific network errors.
func NetworkError(provider string, err error) error {
	return &core.ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      core.ErrNetwork,
	}
}

// DecodeError wraps decode/parsing failures as provider-specific decode errors.
func DecodeError(provider string, err error) error {
	return &core.ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      core.ErrDecode,
	}
}

// ProviderError constructs a normalized ProviderError.
// If message is empty, HTTP status text is used.
// If sentinel is nil, default status-based mapping is applied.
func ProviderError(provider string, status int, requestID, code, message string, sentinel error) error {
	if message == "" {
		message = http.StatusText(status)
	}
	if sentinel == nil {
		sentinel = SentinelForStatus(status)
	}
	return &core.ProviderError{
		Provider:  provider,
		Status:    status,
		RequestID: requestID,
		Code:      code,
		Message:   message,
		Err:       sentinel,
	}
}

// SentinelForStatus maps an HTTP status code to a core sentinel error.
// Unknown statuses map to ErrServer so they stay retryable.
func SentinelForStatus(status int) error {
	switch {
	case status == http.StatusBadRequest,
		status == http.StatusPaymentRequired,
		status == http.StatusUnprocessableEntity:
		return core.ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.ErrUnauthorized
	case status == http.StatusNotFound:
		return core.ErrNotFound
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimited
	default:
		return core.ErrServer
	}
}
