package qwen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/braid-labs/braid/core"
)

// chatCompletionsPath is the API endpoint for chat completions.
const chatCompletionsPath = "/chat/completions"

// doComplete performs a non-streaming chat completion request.
func (p *Qwen) doComplete(ctx context.Context, system string, history []core.Message) (*core.Response, error) {
	body, err := json.Marshal(p.buildRequest(system, history, false))
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := p.config.BaseURL + chatCompletionsPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}
	httpReq.Header = p.buildHeaders()

	resp, err := p.httpClient().Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get("x-request-id"))
	}

	var qResp qwenResponse
	if err := json.Unmarshal(respBody, &qResp); err != nil {
		return nil, newDecodeError(err)
	}

	return mapResponse(&qResp)
}
