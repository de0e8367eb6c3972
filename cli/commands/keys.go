package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/braid-labs/braid/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long:  `Manage API keys for providers. Keys are stored encrypted on disk.`,
	}

	keys.AddCommand(&cobra.Command{
		Use:   "set <provider>",
		Short: "Set API key for a provider",
		Long:  `Set the API key for a provider. The key is prompted without echo.`,
		Args:  cobra.ExactArgs(1),
		RunE:  a.runKeysSet,
	})

	keys.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Long:  `List all stored API keys. Only provider names are shown, never key values.`,
		RunE:  a.runKeysList,
	})

	keys.AddCommand(&cobra.Command{
		Use:   "delete <provider>",
		Short: "Delete API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runKeysDelete,
	})

	return keys
}

func (a *App) runKeysSet(cmd *cobra.Command, args []string) error {
	provider := args[0]

	fmt.Fprintf(a.stdout, "Enter API key for %s: ", provider)

	apiKey, err := a.readSecret()
	if err != nil {
		return err
	}

	if apiKey == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Set(provider, apiKey); err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for %s stored successfully.\n", provider)
	return nil
}

// readSecret reads a line of secret input. On a terminal the input is not
// echoed; piped input is read as a plain line.
func (a *App) readSecret() (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		fmt.Fprintln(a.stdout) // Newline after hidden input
		return string(keyBytes), nil
	}

	// Fallback for non-terminal input; a final line without a trailing
	// newline still counts.
	reader := bufio.NewReader(a.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (a *App) runKeysList(cmd *cobra.Command, args []string) error {
	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	names, err := ks.List()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	if len(names) == 0 {
		fmt.Fprintln(a.stdout, "No API keys stored.")
		return nil
	}

	fmt.Fprintln(a.stdout, "Stored keys:")
	for _, name := range names {
		fmt.Fprintf(a.stdout, "  - %s\n", name)
	}

	return nil
}

func (a *App) runKeysDelete(cmd *cobra.Command, args []string) error {
	provider := args[0]

	ks, err := a.newKeystore()
	if err != nil {
		return fmt.Errorf("failed to open keystore: %w", err)
	}

	if err := ks.Delete(provider); err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("no key stored for %s", provider)
		}
		return fmt.Errorf("failed to delete key: %w", err)
	}

	fmt.Fprintf(a.stdout, "API key for %s deleted.\n", provider)
	return nil
}
