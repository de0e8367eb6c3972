package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/braid-labs/braid/cli/config"
	"github.com/braid-labs/braid/cli/container"
	"github.com/braid-labs/braid/cli/keystore"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// ContainerFactory builds the service container for a command run.
type ContainerFactory func(opts container.Options) (*container.Container, error)

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig   ConfigLoader
	newContainer ContainerFactory
	newKeystore  KeystoreFactory
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer

	cfgFile    string
	provider   string
	model      string
	jsonOutput bool
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger

	chatPrompt      string
	chatSystem      string
	chatTemperature float32
	chatMaxTokens   int
	chatStream      bool

	doctorTimeout time.Duration

	initProvider string
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithContainerFactory injects a container factory dependency.
func WithContainerFactory(factory ContainerFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newContainer = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:   config.LoadConfig,
		newContainer: container.New,
		newKeystore:  keystore.NewKeystore,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		initProvider: "deepseek",
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "braid",
		Short: "Braid - streaming client for LLM chat providers",
		Long: `Braid is a command-line interface for streaming chat completions.

Use Braid to manage API keys, stream chats with models, check connectivity,
and scaffold projects.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.braid/config.yaml)")
	root.PersistentFlags().StringVar(&a.provider, "provider", "", "provider ID (deepseek, qwen)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. deepseek-chat)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newDoctorCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	return nil
}

// providerID returns the selected provider: the --provider flag when set,
// otherwise the config default. Empty means nothing is selected.
func (a *App) providerID() string {
	if a.provider != "" {
		return a.provider
	}
	if a.cfg != nil {
		return a.cfg.DefaultProvider
	}
	return ""
}

// buildContainer resolves the service graph for the current invocation.
// Model and provider precedence lives in the container: flags beat the
// config file, which beats provider defaults.
func (a *App) buildContainer() (*container.Container, error) {
	return a.newContainer(container.Options{
		Config:      a.cfg,
		ProviderID:  a.provider,
		ModelID:     a.model,
		Temperature: a.chatTemperature,
		MaxTokens:   a.chatMaxTokens,
		Logger:      a.logger,
	})
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
