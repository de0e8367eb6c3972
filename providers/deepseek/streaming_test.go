package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/braid-labs/braid/core"
)

// writeSSE writes each payload as one SSE data event.
func writeSSE(w http.ResponseWriter, payloads ...string) {
	flusher, _ := w.(http.Flusher)
	for _, p := range payloads {
		fmt.Fprintf(w, "data: %s\n\n", p)
		flusher.Flush()
	}
}

// collectEvents drains the stream and returns all events plus the
// terminal error, if any.
func collectEvents(t *testing.T, stream *core.MessageStream) ([]core.StreamEvent, error) {
	t.Helper()
	var events []core.StreamEvent
	for ev := range stream.Ch {
		events = append(events, ev)
	}
	return events, <-stream.Err
}

func TestCreateMessageSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w,
			`{"id":"c1","model":"deepseek-chat","choices":[{"index":0,"delta":{"role":"assistant","content":"He"}}]}`,
			`{"id":"c1","model":"deepseek-chat","choices":[{"index":0,"delta":{"content":"llo"}}]}`,
			`{"id":"c1","model":"deepseek-chat","choices":[],"usage":{"prompt_tokens":5,"completion_tokens":2,"total_tokens":7}}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	p, err := New("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Say hello"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Fatalf("stream error = %v", streamErr)
	}

	want := []core.StreamEvent{
		core.TextEvent("He"),
		core.TextEvent("llo"),
		core.UsageEvent(5, 2),
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestCreateMessageReasoningInterleaved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w,
			`{"choices":[{"index":0,"delta":{"reasoning_content":"Let me think. "}}]}`,
			`{"choices":[{"index":0,"delta":{"reasoning_content":"Simple question."}}]}`,
			`{"choices":[{"index":0,"delta":{"content":"The answer is 4."}}]}`,
			`{"choices":[],"usage":{"prompt_tokens":9,"completion_tokens":12,"total_tokens":21}}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	p, _ := New("test-key", WithBaseURL(server.URL), WithModel(ModelReasoner))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "2+2?"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Fatalf("stream error = %v", streamErr)
	}

	wantTypes := []core.EventType{
		core.EventReasoning,
		core.EventReasoning,
		core.EventText,
		core.EventUsage,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, ev := range events {
		if ev.Type != wantTypes[i] {
			t.Errorf("event %d type = %v, want %v", i, ev.Type, wantTypes[i])
		}
	}

	// Arrival order lets the consumer reassemble both texts.
	var reasoning, content string
	for _, ev := range events {
		switch ev.Type {
		case core.EventReasoning:
			reasoning += ev.Content
		case core.EventText:
			content += ev.Content
		}
	}
	if reasoning != "Let me think. Simple question." {
		t.Errorf("reasoning = %q", reasoning)
	}
	if content != "The answer is 4." {
		t.Errorf("content = %q", content)
	}
}

func TestCreateMessageRoleOnlyDeltaEmitsNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"choices":[{"index":0,"delta":{"role":"assistant"}}]}`,
			`{"choices":[{"index":0,"delta":{"content":"hi"}}]}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	p, _ := New("test-key", WithBaseURL(server.URL))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Fatalf("stream error = %v", streamErr)
	}
	if len(events) != 1 || events[0] != core.TextEvent("hi") {
		t.Errorf("events = %+v, want single text event", events)
	}
}

func TestCreateMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Authentication Fails","type":"authentication_error"}}`))
	}))
	defer server.Close()

	p, _ := New("bad-key", WithBaseURL(server.URL))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})

	if stream != nil {
		t.Error("expected nil stream on API error")
	}
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("error = %v, want wrapped core.ErrUnauthorized", err)
	}
}

// recordingHandler captures log records for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler            { return h }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func TestCreateMessageSkipsMalformedChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"choices":[{"index":0,"delta":{"content":"before"}}]}`,
			`{not valid json`,
			`{"choices":[{"index":0,"delta":{"content":"after"}}]}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	handler := &recordingHandler{}
	p, _ := New("test-key", WithBaseURL(server.URL), WithLogger(slog.New(handler)))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Fatalf("stream error = %v, want nil (malformed chunk skipped)", streamErr)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Content != "before" || events[1].Content != "after" {
		t.Errorf("events = %+v", events)
	}

	if handler.count() != 1 {
		t.Errorf("logged %d warnings, want 1", handler.count())
	}
}

func TestCreateMessageAbandonsAfterRepeatedDecodeFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{broken 1`,
			`{broken 2`,
			`{broken 3`,
			`{"choices":[{"index":0,"delta":{"content":"never delivered"}}]}`,
			`[DONE]`,
		)
	}))
	defer server.Close()

	p, _ := New("test-key", WithBaseURL(server.URL))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if len(events) != 0 {
		t.Errorf("got %d events, want 0: %+v", len(events), events)
	}
	if !errors.Is(streamErr, core.ErrDecode) {
		t.Errorf("stream error = %v, want wrapped core.ErrDecode", streamErr)
	}
}

func TestCreateMessageEndsWithoutDoneSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The connection closes cleanly with no [DONE] terminator.
		writeSSE(w, `{"choices":[{"index":0,"delta":{"content":"complete"}}]}`)
	}))
	defer server.Close()

	p, _ := New("test-key", WithBaseURL(server.URL))
	stream, err := p.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	events, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Errorf("stream error = %v, want nil for clean EOF", streamErr)
	}
	if len(events) != 1 || events[0].Content != "complete" {
		t.Errorf("events = %+v", events)
	}
}

func TestCreateMessageContextCancellation(t *testing.T) {
	handlerDone := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(handlerDone)
		writeSSE(w, `{"choices":[{"index":0,"delta":{"content":"partial"}}]}`)
		// Hold the stream open until the client abandons it.
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p, _ := New("test-key", WithBaseURL(server.URL))
	stream, err := p.CreateMessage(ctx, "", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	ev := <-stream.Ch
	if ev.Content != "partial" {
		t.Fatalf("first event = %+v", ev)
	}

	cancel()

	// Both channels must shut down promptly and the error must be the
	// cancellation, not a retryable network failure.
	for range stream.Ch {
	}
	if streamErr := <-stream.Err; !errors.Is(streamErr, context.Canceled) {
		t.Errorf("stream error = %v, want context.Canceled", streamErr)
	}
	<-handlerDone
}

func TestCreateMessageRequestWire(t *testing.T) {
	var gotReq deepseekRequest
	var gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeSSE(w, `[DONE]`)
	}))
	defer server.Close()

	p, _ := New("test-key", WithBaseURL(server.URL), WithTemperature(0.2), WithMaxTokens(100))
	stream, err := p.CreateMessage(context.Background(), "sys", []core.Message{
		{Role: core.RoleUser, Content: "Hi"},
		{Role: core.RoleAssistant, Content: "Hello"},
		{Role: core.RoleUser, Content: "Again"},
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if _, streamErr := collectEvents(t, stream); streamErr != nil {
		t.Fatalf("stream error = %v", streamErr)
	}

	if !gotReq.Stream {
		t.Error("Stream = false, want true")
	}
	if gotReq.StreamOptions == nil || !gotReq.StreamOptions.IncludeUsage {
		t.Error("StreamOptions.IncludeUsage not set")
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", gotReq.Temperature)
	}
	if gotReq.MaxTokens == nil || *gotReq.MaxTokens != 100 {
		t.Errorf("MaxTokens = %v, want 100", gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 4 {
		t.Fatalf("len(Messages) = %d, want 4", len(gotReq.Messages))
	}
	wantRoles := []string{"system", "user", "assistant", "user"}
	for i, m := range gotReq.Messages {
		if m.Role != wantRoles[i] {
			t.Errorf("Messages[%d].Role = %q, want %q", i, m.Role, wantRoles[i])
		}
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("Accept = %q, want text/event-stream", gotAccept)
	}
}
