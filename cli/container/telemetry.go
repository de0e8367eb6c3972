package container

import (
	"log/slog"

	"github.com/braid-labs/braid/core"
)

// LogTelemetry forwards request lifecycle events to a slog logger.
// Successful requests log at Debug so they only show under --verbose;
// failures log at Warn.
type LogTelemetry struct {
	logger *slog.Logger
}

// NewLogTelemetry creates a telemetry hook backed by the given logger.
func NewLogTelemetry(logger *slog.Logger) *LogTelemetry {
	return &LogTelemetry{logger: logger}
}

// OnRequestStart logs the start of a request.
func (t *LogTelemetry) OnRequestStart(e core.RequestStartEvent) {
	t.logger.Debug("request start",
		"provider", e.Provider,
		"model", string(e.Model),
		"request_id", e.RequestID,
	)
}

// OnRequestEnd logs the outcome of a request.
func (t *LogTelemetry) OnRequestEnd(e core.RequestEndEvent) {
	attrs := []any{
		"provider", e.Provider,
		"model", string(e.Model),
		"request_id", e.RequestID,
		"duration", e.Duration(),
		"input_tokens", e.Usage.InputTokens,
		"output_tokens", e.Usage.OutputTokens,
	}
	if e.Err != nil {
		t.logger.Warn("request failed", append(attrs, "error", e.Err)...)
		return
	}
	t.logger.Debug("request end", attrs...)
}

var _ core.TelemetryHook = (*LogTelemetry)(nil)
