package qwen

import "github.com/braid-labs/braid/core"

// buildRequest constructs the wire request, prepending the system prompt
// as a system-role message when present.
func (p *Qwen) buildRequest(system string, history []core.Message, stream bool) *qwenRequest {
	messages := make([]qwenMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, qwenMessage{
			Role:    string(core.RoleSystem),
			Content: system,
		})
	}
	for _, m := range history {
		messages = append(messages, qwenMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	req := &qwenRequest{
		Model:       string(p.Model().ID),
		Messages:    messages,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
		Stream:      stream,
	}
	if stream {
		req.StreamOptions = &qwenStreamOptions{IncludeUsage: true}
	}
	return req
}

// mapResponse converts an API response to a core response.
func mapResponse(resp *qwenResponse) (*core.Response, error) {
	if len(resp.Choices) == 0 {
		return nil, newDecodeError(errEmptyChoices)
	}

	msg := resp.Choices[0].Message
	out := &core.Response{
		Content:   msg.Content,
		Reasoning: msg.ReasoningContent,
	}
	if resp.Usage != nil {
		out.Usage = core.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		}
	}
	return out, nil
}
