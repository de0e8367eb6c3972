// Package core provides the Braid client, provider contract, and stream
// event protocol.
package core

// Feature represents a capability that a provider may support.
type Feature string

const (
	FeatureChat          Feature = "chat"
	FeatureChatStreaming Feature = "chat_streaming"
	FeatureReasoning     Feature = "reasoning"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID              ModelID   `json:"id"`
	DisplayName     string    `json:"display_name"`
	Capabilities    []Feature `json:"capabilities"`
	ContextWindow   int       `json:"context_window,omitempty"`
	MaxOutputTokens int       `json:"max_output_tokens,omitempty"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, cap := range m.Capabilities {
		if cap == f {
			return true
		}
	}
	return false
}

// ModelSelection is the result of resolving a configured model identifier
// against a provider's static model table. It always names a known model:
// providers fall back to their default when the configured ID is absent.
type ModelSelection struct {
	ID   ModelID   `json:"id"`
	Info ModelInfo `json:"info"`
}

// Role represents a message participant role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage tracks token consumption reported by a backend.
// Fields the backend omits stay zero.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is the accumulated result of a completed request: the full
// assistant text, any reasoning text the backend emitted on its separate
// channel, and the final token usage.
type Response struct {
	Content   string `json:"content"`
	Reasoning string `json:"reasoning,omitempty"`
	Usage     Usage  `json:"usage"`
}

// HasReasoning reports whether the response carries reasoning output.
func (r *Response) HasReasoning() bool {
	return r.Reasoning != ""
}
