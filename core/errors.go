package core

import (
	"errors"
	"fmt"
)

// ProviderError represents an error returned by a provider with full context.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	// ErrConfig marks configuration failures (missing API key, malformed
	// base configuration) detected before any network I/O.
	ErrConfig = errors.New("configuration error")

	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")

	// ErrProxyUnsupported marks a proxy configuration Braid refuses to use
	// (SOCKS schemes). Requests fail rather than silently going direct.
	ErrProxyUnsupported = errors.New("proxy scheme not supported")
)

// RetryError annotates the final error of an exhausted retry sequence with
// the number of attempts made.
type RetryError struct {
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *RetryError) Error() string {
	return fmt.Sprintf("after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error for error chaining.
func (e *RetryError) Unwrap() error {
	return e.Err
}
