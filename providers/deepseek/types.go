package deepseek

// deepseekRequest represents a request to the DeepSeek chat completions API.
type deepseekRequest struct {
	Model         string                 `json:"model"`
	Messages      []deepseekMessage      `json:"messages"`
	Temperature   *float32               `json:"temperature,omitempty"`
	MaxTokens     *int                   `json:"max_tokens,omitempty"`
	Stream        bool                   `json:"stream"`
	StreamOptions *deepseekStreamOptions `json:"stream_options,omitempty"`
}

// deepseekMessage represents a message in the DeepSeek format.
type deepseekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// deepseekStreamOptions controls streaming behavior. IncludeUsage asks
// the API to attach token totals to the final chunk.
type deepseekStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// deepseekResponse represents a non-streaming chat completions response.
type deepseekResponse struct {
	ID      string           `json:"id"`
	Object  string           `json:"object"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
	Choices []deepseekChoice `json:"choices"`
	Usage   *deepseekUsage   `json:"usage"`
}

// deepseekChoice represents a single choice in a response.
type deepseekChoice struct {
	Index        int             `json:"index"`
	Message      deepseekRespMsg `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// deepseekRespMsg represents the assistant message in a response.
// ReasoningContent is populated only by the reasoner model.
type deepseekRespMsg struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// deepseekStreamChunk represents one chunk of a streaming response.
type deepseekStreamChunk struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Model   string                 `json:"model"`
	Choices []deepseekStreamChoice `json:"choices"`
	Usage   *deepseekUsage         `json:"usage"`
}

// deepseekStreamChoice represents a single choice in a stream chunk.
type deepseekStreamChoice struct {
	Index        int           `json:"index"`
	Delta        deepseekDelta `json:"delta"`
	FinishReason *string       `json:"finish_reason"`
}

// deepseekDelta carries the incremental fields of a stream chunk. The
// reasoner model streams reasoning_content before content.
type deepseekDelta struct {
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content"`
}

// deepseekUsage reports token consumption.
type deepseekUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
