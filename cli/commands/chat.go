package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/braid-labs/braid/core"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat request to a provider",
		Long: `Send a chat request to an LLM provider. Output streams to stdout as
deltas arrive; pass --stream=false to wait for the full response.

Examples:
  braid chat --provider deepseek --prompt "Hello"
  braid chat --model deepseek-reasoner --prompt "Why is the sky blue?" --verbose
  braid chat --prompt "Hello" --json`,
		RunE: a.runChat,
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "User message (required)")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "System message")
	cmd.Flags().Float32Var(&a.chatTemperature, "temperature", 0, "Temperature (0 = use default)")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&a.chatStream, "stream", true, "Stream output as it arrives")

	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(a.chatPrompt) == "" {
		return exitWithCode(ExitValidation, fmt.Errorf("prompt cannot be empty"))
	}

	c, err := a.buildContainer()
	if err != nil {
		return a.handleChatError(err)
	}

	history := []core.Message{{Role: core.RoleUser, Content: a.chatPrompt}}
	ctx := cmd.Context()

	if a.chatStream {
		return a.runStreamingChat(ctx, c.Client(), history)
	}
	return a.runBlockingChat(ctx, c.Client(), history)
}

func (a *App) runStreamingChat(ctx context.Context, client *core.Client, history []core.Message) error {
	stream, err := client.CreateMessage(ctx, a.chatSystem, history)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		// Accumulate for JSON output
		resp, err := core.CollectStream(ctx, stream)
		if err != nil {
			return a.handleChatError(err)
		}
		return a.outputJSON(resp)
	}

	var usage core.Usage
	sawReasoning := false

	for ev := range stream.Ch {
		switch ev.Type {
		case core.EventReasoning:
			// Reasoning goes to stderr so stdout stays pipeable
			if a.verbose {
				fmt.Fprint(a.stderr, ev.Content)
				sawReasoning = true
			}
		case core.EventText:
			fmt.Fprint(a.stdout, ev.Content)
		case core.EventUsage:
			usage = ev.Usage
		}
	}
	streamErr := <-stream.Err

	if sawReasoning {
		fmt.Fprintln(a.stderr)
	}
	fmt.Fprintln(a.stdout)

	if streamErr != nil {
		// Any text already written stays on screen; the stream died
		// mid-response and is not retried.
		return a.handleChatError(streamErr)
	}

	if a.verbose {
		fmt.Fprintf(a.stderr, "usage: %d input + %d output tokens\n", usage.InputTokens, usage.OutputTokens)
	}

	return nil
}

func (a *App) runBlockingChat(ctx context.Context, client *core.Client, history []core.Message) error {
	resp, err := client.Complete(ctx, a.chatSystem, history)
	if err != nil {
		return a.handleChatError(err)
	}

	if a.jsonOutput {
		return a.outputJSON(resp)
	}

	fmt.Fprintln(a.stdout, resp.Content)

	if a.verbose {
		if resp.HasReasoning() {
			fmt.Fprintf(a.stderr, "reasoning: %s\n", resp.Reasoning)
		}
		fmt.Fprintf(a.stderr, "usage: %d input + %d output tokens\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}

	return nil
}

func (a *App) handleChatError(err error) error {
	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		if a.jsonOutput {
			a.outputErrorJSON(provErr)
		} else {
			fmt.Fprintf(a.stderr, "Error: %s\n", provErr.Message)
			if provErr.RequestID != "" {
				fmt.Fprintf(a.stderr, "  Provider: %s, Request ID: %s\n", provErr.Provider, provErr.RequestID)
			}
		}

		// Determine exit code based on error type
		switch {
		case errors.Is(err, core.ErrNetwork):
			return exitWithCode(ExitNetwork, err)
		default:
			return exitWithCode(ExitProvider, err)
		}
	}

	// Network errors
	if errors.Is(err, core.ErrNetwork) {
		if a.jsonOutput {
			a.outputSimpleErrorJSON("network_error", err.Error())
		} else {
			fmt.Fprintf(a.stderr, "Error: network error: %v\n", err)
		}
		return exitWithCode(ExitNetwork, err)
	}

	// Configuration and validation errors
	if errors.Is(err, core.ErrConfig) || errors.Is(err, core.ErrProxyUnsupported) || errors.Is(err, core.ErrBadRequest) {
		if a.jsonOutput {
			a.outputSimpleErrorJSON("config_error", err.Error())
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return exitWithCode(ExitValidation, err)
	}

	// Generic error
	if a.jsonOutput {
		a.outputSimpleErrorJSON("error", err.Error())
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return exitWithCode(ExitProvider, err)
}

func (a *App) outputJSON(resp *core.Response) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func (a *App) outputErrorJSON(provErr *core.ProviderError) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":       provErr.Code,
			"message":    provErr.Message,
			"provider":   provErr.Provider,
			"request_id": provErr.RequestID,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

func (a *App) outputSimpleErrorJSON(errType, message string) {
	output := map[string]interface{}{
		"error": map[string]interface{}{
			"type":    errType,
			"message": message,
		},
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(output)
}

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
