// Package providers contains LLM provider implementations for Braid.
//
// Each provider is implemented in its own subpackage (e.g., providers/deepseek,
// providers/qwen). Providers implement the core.Provider interface.
//
// # Provider Interface
//
// All providers must implement core.Provider:
//
//	type Provider interface {
//	    ID() string
//	    Models() []ModelInfo
//	    Supports(feature Feature) bool
//	    Model() ModelSelection
//	    Complete(ctx context.Context, system string, history []Message) (*Response, error)
//	    CreateMessage(ctx context.Context, system string, history []Message) (*MessageStream, error)
//	}
//
// # Concurrency
//
// Providers SHOULD be safe for concurrent calls. If a provider cannot be
// concurrent-safe, it MUST document this limitation.
//
// # Streaming
//
// CreateMessage returns a *MessageStream (not a raw channel) so errors travel
// with the events. Providers MUST:
//   - Close both channels (Ch, Err) when finished, on every exit path
//   - Terminate promptly on context cancellation
//   - Send at most one error on Err
//   - Emit events in backend arrival order, and never after an error
//
// # Feature Detection
//
// Use Supports() to check provider capabilities before making requests:
//
//	if p.Supports(core.FeatureReasoning) {
//	    // Reasoning events may arrive on the stream
//	}
package providers

import "github.com/braid-labs/braid/core"

// Re-export core types for convenience.
// Provider implementations can import just the providers package.
type (
	// Provider is the interface that LLM providers must implement.
	Provider = core.Provider

	// Feature represents a capability that a provider may support.
	Feature = core.Feature

	// ModelInfo describes a model available from a provider.
	ModelInfo = core.ModelInfo

	// ModelID is a string identifier for a model.
	ModelID = core.ModelID

	// ModelSelection is a resolved model identifier with its metadata.
	ModelSelection = core.ModelSelection

	// Message represents a single message in a conversation.
	Message = core.Message

	// Role represents a message participant role.
	Role = core.Role

	// Response represents the accumulated result of a completed request.
	Response = core.Response

	// Usage tracks token consumption for a request.
	Usage = core.Usage

	// StreamEvent is one normalized event from a provider stream.
	StreamEvent = core.StreamEvent

	// MessageStream represents a streaming response from a provider.
	MessageStream = core.MessageStream

	// ProviderError represents an error returned by a provider.
	ProviderError = core.ProviderError
)

// Re-export feature constants.
const (
	FeatureChat          = core.FeatureChat
	FeatureChatStreaming = core.FeatureChatStreaming
	FeatureReasoning     = core.FeatureReasoning
)

// Re-export role constants.
const (
	RoleSystem    = core.RoleSystem
	RoleUser      = core.RoleUser
	RoleAssistant = core.RoleAssistant
)

// Re-export sentinel errors.
var (
	ErrConfig       = core.ErrConfig
	ErrUnauthorized = core.ErrUnauthorized
	ErrRateLimited  = core.ErrRateLimited
	ErrBadRequest   = core.ErrBadRequest
	ErrNotFound     = core.ErrNotFound
	ErrServer       = core.ErrServer
	ErrNetwork      = core.ErrNetwork
	ErrDecode       = core.ErrDecode
)
