package core

// EventType discriminates the variants of a StreamEvent.
type EventType string

const (
	// EventText is an incremental fragment of assistant text.
	EventText EventType = "text"

	// EventReasoning is an incremental fragment of reasoning ("thinking")
	// text, emitted only by backends that report a distinct reasoning
	// channel.
	EventReasoning EventType = "reasoning"

	// EventUsage carries token totals reported by the backend, typically
	// on the final chunk of a stream.
	EventUsage EventType = "usage"
)

// StreamEvent is one normalized event from a provider stream. Exactly one
// variant is populated, selected by Type: Content for text and reasoning
// events, Usage for usage events.
//
// Providers emit events in backend arrival order and never emit an event
// for an empty delta.
type StreamEvent struct {
	Type    EventType `json:"type"`
	Content string    `json:"content,omitempty"`
	Usage   Usage     `json:"usage,omitzero"`
}

// TextEvent returns a text delta event.
func TextEvent(delta string) StreamEvent {
	return StreamEvent{Type: EventText, Content: delta}
}

// ReasoningEvent returns a reasoning delta event.
func ReasoningEvent(delta string) StreamEvent {
	return StreamEvent{Type: EventReasoning, Content: delta}
}

// UsageEvent returns a usage event with the given token totals.
func UsageEvent(inputTokens, outputTokens int) StreamEvent {
	return StreamEvent{
		Type:  EventUsage,
		Usage: Usage{InputTokens: inputTokens, OutputTokens: outputTokens},
	}
}
