package qwen

// qwenRequest represents a request to the DashScope chat completions API.
type qwenRequest struct {
	Model         string             `json:"model"`
	Messages      []qwenMessage      `json:"messages"`
	Temperature   *float32           `json:"temperature,omitempty"`
	MaxTokens     *int               `json:"max_tokens,omitempty"`
	Stream        bool               `json:"stream"`
	StreamOptions *qwenStreamOptions `json:"stream_options,omitempty"`
}

// qwenMessage represents a message in the DashScope format.
type qwenMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// qwenStreamOptions controls streaming behavior.
type qwenStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// qwenResponse represents a non-streaming chat completions response.
type qwenResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []qwenChoice `json:"choices"`
	Usage   *qwenUsage   `json:"usage"`
}

// qwenChoice represents a single choice in a response.
type qwenChoice struct {
	Index        int         `json:"index"`
	Message      qwenRespMsg `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// qwenRespMsg represents the assistant message in a response.
type qwenRespMsg struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// qwenStreamChunk represents one chunk of a streaming response.
type qwenStreamChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Model   string             `json:"model"`
	Choices []qwenStreamChoice `json:"choices"`
	Usage   *qwenUsage         `json:"usage"`
}

// qwenStreamChoice represents a single choice in a stream chunk.
type qwenStreamChoice struct {
	Index        int       `json:"index"`
	Delta        qwenDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// qwenDelta carries the incremental fields of a stream chunk. QwQ models
// stream reasoning_content before content.
type qwenDelta struct {
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content"`
}

// qwenUsage reports token consumption.
type qwenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
