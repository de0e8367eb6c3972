package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-name>",
		Short: "Initialize a new Braid project",
		Long: `Initialize a new Braid project.

Creates a project directory with:
  - main.go: A starter Go file that streams a chat completion
  - braid.yaml: Project configuration

Example:
  braid init mychat
  braid init mychat --provider qwen`,
		Args: cobra.ExactArgs(1),
		RunE: a.runInit,
	}

	cmd.Flags().StringVar(&a.initProvider, "provider", "deepseek", "Default provider for generated code")

	return cmd
}

func (a *App) runInit(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	projectName := filepath.Base(projectPath)

	// Validate project name (just the base name, not full path)
	if err := validateProjectName(projectName); err != nil {
		return err
	}

	// The generated code imports the provider package, so the provider
	// has to be one this module ships.
	if _, _, err := modelsForProvider(a.initProvider); err != nil {
		return err
	}

	// Check if directory already exists
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %q already exists", projectPath)
	}

	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", projectPath, err)
	}

	// Generate main.go
	mainPath := filepath.Join(projectPath, "main.go")
	if err := generateFile(mainPath, mainGoTemplate, templateData{
		Provider: a.initProvider,
	}); err != nil {
		return fmt.Errorf("failed to create main.go: %w", err)
	}

	// Generate braid.yaml
	configPath := filepath.Join(projectPath, "braid.yaml")
	if err := generateFile(configPath, braidYamlTemplate, templateData{
		Provider: a.initProvider,
	}); err != nil {
		return fmt.Errorf("failed to create braid.yaml: %w", err)
	}

	// Print success message
	fmt.Fprintf(a.stdout, "Created Braid project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintf(a.stdout, "  export %s=<your-key>\n", envVarForProvider(a.initProvider))
	fmt.Fprintln(a.stdout, "  go run main.go")

	return nil
}

func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	// Check for invalid characters
	validName := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}

	// Check for reserved names
	reserved := []string{".", "..", "braid"}
	for _, r := range reserved {
		if name == r {
			return fmt.Errorf("invalid project name %q: reserved name", name)
		}
	}

	return nil
}

type templateData struct {
	Provider string
}

var templateFuncs = template.FuncMap{
	"envVar":       envVarForProvider,
	"defaultModel": defaultModelForProvider,
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Funcs(templateFuncs).Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

func envVarForProvider(provider string) string {
	return strings.ToUpper(provider) + "_API_KEY"
}

func defaultModelForProvider(provider string) string {
	switch provider {
	case "deepseek":
		return "deepseek-chat"
	case "qwen":
		return "qwen-max"
	default:
		return "default"
	}
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"fmt"
	"os"

	"github.com/braid-labs/braid/core"
	"github.com/braid-labs/braid/providers/{{.Provider}}"
)

func main() {
	p, err := {{.Provider}}.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	c := core.NewClient(p)

	stream, err := c.CreateMessage(context.Background(), "", []core.Message{
		{Role: core.RoleUser, Content: "Hello, world!"},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	for ev := range stream.Ch {
		if ev.Type == core.EventText {
			fmt.Print(ev.Content)
		}
	}
	fmt.Println()

	if err := <-stream.Err; err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
`

var braidYamlTemplate = `# Braid project configuration
default_provider: {{.Provider}}
default_model: {{.Provider | defaultModel}}

# API keys come from 'braid keys set <provider>' or the {{.Provider | envVar}}
# environment variable
providers:
  {{.Provider}}:
    api_key_ref: {{.Provider}}
`
