package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/braid-labs/braid/cli/config"
	"github.com/braid-labs/braid/core"
)

func TestExitError(t *testing.T) {
	err := exitWithCode(ExitValidation, errors.New("test error"))

	if err.Error() != "test error" {
		t.Errorf("Error() = %q, want 'test error'", err.Error())
	}

	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatal("expected *exitError type")
	}

	if exitErr.ExitCode() != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitValidation)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"success", ExitSuccess, 0},
		{"validation", ExitValidation, 1},
		{"provider", ExitProvider, 2},
		{"network", ExitNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("Exit%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestHandleChatErrorExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config", core.ErrConfig, ExitValidation},
		{"proxy unsupported", fmt.Errorf("socks5 proxy: %w", core.ErrProxyUnsupported), ExitValidation},
		{"bad request", core.ErrBadRequest, ExitValidation},
		{"network", core.ErrNetwork, ExitNetwork},
		{"wrapped network", fmt.Errorf("request failed: %w", core.ErrNetwork), ExitNetwork},
		{"generic", errors.New("boom"), ExitProvider},
		{
			"provider error",
			&core.ProviderError{Provider: "deepseek", Status: 429, Code: "rate_limit_reached", Message: "Too many requests", Err: core.ErrRateLimited},
			ExitProvider,
		},
		{
			"provider network error",
			&core.ProviderError{Provider: "qwen", Message: "connection reset", Err: core.ErrNetwork},
			ExitNetwork,
		},
		{
			"retries exhausted",
			&core.RetryError{Attempts: 3, Err: &core.ProviderError{Provider: "deepseek", Status: 500, Message: "upstream", Err: core.ErrServer}},
			ExitProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _, _ := newTestApp(t)

			err := a.handleChatError(tt.err)

			exitErr, ok := err.(*exitError)
			if !ok {
				t.Fatalf("expected *exitError type, got %T", err)
			}
			if exitErr.ExitCode() != tt.want {
				t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), tt.want)
			}
		})
	}
}

func TestHandleChatErrorProviderOutput(t *testing.T) {
	a, _, stderr := newTestApp(t)

	provErr := &core.ProviderError{
		Provider:  "deepseek",
		Status:    429,
		RequestID: "req_123",
		Code:      "rate_limit_reached",
		Message:   "Too many requests",
		Err:       core.ErrRateLimited,
	}

	_ = a.handleChatError(provErr)

	out := stderr.String()
	if !strings.Contains(out, "Too many requests") {
		t.Errorf("stderr %q should contain the provider message", out)
	}
	if !strings.Contains(out, "req_123") {
		t.Errorf("stderr %q should contain the request ID", out)
	}
}

func TestHandleChatErrorJSON(t *testing.T) {
	a, _, stderr := newTestApp(t)
	a.jsonOutput = true

	provErr := &core.ProviderError{
		Provider:  "qwen",
		Status:    401,
		RequestID: "req_456",
		Code:      "invalid_api_key",
		Message:   "Incorrect API key provided",
		Err:       core.ErrUnauthorized,
	}

	_ = a.handleChatError(provErr)

	var payload struct {
		Error struct {
			Type      string `json:"type"`
			Message   string `json:"message"`
			Provider  string `json:"provider"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	if err := json.Unmarshal(stderr.Bytes(), &payload); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, stderr.String())
	}

	if payload.Error.Type != "invalid_api_key" {
		t.Errorf("error.type = %q, want invalid_api_key", payload.Error.Type)
	}
	if payload.Error.Provider != "qwen" {
		t.Errorf("error.provider = %q, want qwen", payload.Error.Provider)
	}
	if payload.Error.RequestID != "req_456" {
		t.Errorf("error.request_id = %q, want req_456", payload.Error.RequestID)
	}
}

// streamingHandler serves a fixed SSE completion stream.
func streamingHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want Bearer sk-test", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"lo!\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"id\":\"c1\",\"choices\":[],\"usage\":{\"prompt_tokens\":3,\"completion_tokens\":2}}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}
}

func TestChatCommandStreaming(t *testing.T) {
	ts := httptest.NewServer(streamingHandler(t))
	defer ts.Close()

	a, stdout, _ := newTestApp(t, withTestConfig(&config.Config{
		DefaultProvider: "deepseek",
		Providers: map[string]config.ProviderConfig{
			"deepseek": {BaseURL: ts.URL},
		},
	}))

	a.root.SetArgs([]string{"chat", "--prompt", "hi"})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := stdout.String(); got != "Hello!\n" {
		t.Errorf("stdout = %q, want %q", got, "Hello!\n")
	}
}

func TestChatCommandBlockingJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c2","choices":[{"index":0,"message":{"role":"assistant","content":"4"}}],"usage":{"prompt_tokens":5,"completion_tokens":1}}`)
	}))
	defer ts.Close()

	a, stdout, _ := newTestApp(t, withTestConfig(&config.Config{
		DefaultProvider: "deepseek",
		Providers: map[string]config.ProviderConfig{
			"deepseek": {BaseURL: ts.URL},
		},
	}))

	a.root.SetArgs([]string{"chat", "--prompt", "2+2?", "--stream=false", "--json"})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var resp core.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if resp.Content != "4" {
		t.Errorf("content = %q, want 4", resp.Content)
	}
	if resp.Usage.InputTokens != 5 || resp.Usage.OutputTokens != 1 {
		t.Errorf("usage = %+v, want 5/1", resp.Usage)
	}
}

func TestChatCommandNoProvider(t *testing.T) {
	a, _, _ := newTestApp(t, withTestConfig(&config.Config{}))

	a.root.SetArgs([]string{"chat", "--prompt", "hi"})
	err := a.Execute()
	if err == nil {
		t.Fatal("Execute() should fail with no provider configured")
	}

	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatalf("expected *exitError, got %T", err)
	}
	if exitErr.ExitCode() != ExitValidation {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitValidation)
	}
}

func TestChatCommandServerError(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))
	defer ts.Close()

	a, _, stderr := newTestApp(t, withTestConfig(&config.Config{
		DefaultProvider: "deepseek",
		Providers: map[string]config.ProviderConfig{
			"deepseek": {BaseURL: ts.URL},
		},
	}))

	a.root.SetArgs([]string{"chat", "--prompt", "hi"})
	err := a.Execute()
	if err == nil {
		t.Fatal("Execute() should fail on a 401")
	}

	exitErr, ok := err.(*exitError)
	if !ok {
		t.Fatalf("expected *exitError, got %T", err)
	}
	if exitErr.ExitCode() != ExitProvider {
		t.Errorf("ExitCode() = %d, want %d", exitErr.ExitCode(), ExitProvider)
	}
	// Auth failures are terminal, not retried
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
	if !strings.Contains(stderr.String(), "Incorrect API key provided") {
		t.Errorf("stderr %q should contain the provider message", stderr.String())
	}
}
