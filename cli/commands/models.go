package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers"
	"github.com/braid-labs/braid/providers/deepseek"
	"github.com/braid-labs/braid/providers/qwen"
)

func (a *App) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models for the selected provider",
		Long: `List the models a provider serves, with capabilities and limits.

The listing is static and needs no API key.

Examples:
  braid models --provider deepseek
  braid models --provider qwen --json`,
		RunE: a.runModels,
	}
}

func (a *App) runModels(cmd *cobra.Command, args []string) error {
	providerID := a.providerID()
	if providerID == "" {
		return exitWithCode(ExitValidation, fmt.Errorf("provider required: use --provider flag or set default_provider in config"))
	}

	infos, defaultID, err := modelsForProvider(providerID)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Fprintf(a.stdout, "Models for %s:\n", providerID)
	for _, m := range infos {
		marker := ""
		if m.ID == defaultID {
			marker = "  (default)"
		}
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(a.stdout, "  %-20s %-18s context %-7d out %-6d %s%s\n",
			m.ID, m.DisplayName, m.ContextWindow, m.MaxOutputTokens,
			"["+strings.Join(caps, ", ")+"]", marker)
	}

	return nil
}

// modelsForProvider returns the static model table and default model for
// a provider. Listing works without credentials, so only the providers
// compiled into this binary are supported.
func modelsForProvider(id string) ([]core.ModelInfo, core.ModelID, error) {
	switch id {
	case "deepseek":
		return deepseek.AvailableModels(), deepseek.DefaultModel, nil
	case "qwen":
		return qwen.AvailableModels(), qwen.DefaultModel, nil
	default:
		return nil, "", fmt.Errorf("unsupported provider: %s (available: %v)", id, providers.List())
	}
}
