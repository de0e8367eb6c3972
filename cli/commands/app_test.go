package commands

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/braid-labs/braid/cli/config"
	"github.com/braid-labs/braid/cli/container"
	"github.com/braid-labs/braid/cli/keystore"
)

// stubKeystore is an in-memory keystore for command tests.
type stubKeystore map[string]string

func (s stubKeystore) Set(name, value string) error {
	s[name] = value
	return nil
}

func (s stubKeystore) Get(name string) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", &keystore.ErrKeyNotFound{Name: name}
	}
	return v, nil
}

func (s stubKeystore) Delete(name string) error {
	if _, ok := s[name]; !ok {
		return &keystore.ErrKeyNotFound{Name: name}
	}
	delete(s, name)
	return nil
}

func (s stubKeystore) List() ([]string, error) {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

type testAppConfig struct {
	cfg   *config.Config
	stdin string
	keys  stubKeystore
}

type testAppOption func(*testAppConfig)

func withTestConfig(cfg *config.Config) testAppOption {
	return func(tc *testAppConfig) { tc.cfg = cfg }
}

func withTestStdin(input string) testAppOption {
	return func(tc *testAppConfig) { tc.stdin = input }
}

func withTestKeys(keys stubKeystore) testAppOption {
	return func(tc *testAppConfig) { tc.keys = keys }
}

// newTestApp builds an App with buffered IO, a stub keystore preloaded
// with provider keys, and a container factory that injects the stub so
// tests never touch ~/.braid or the environment.
func newTestApp(t *testing.T, opts ...testAppOption) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	tc := &testAppConfig{
		cfg:  &config.Config{},
		keys: stubKeystore{"deepseek": "sk-test", "qwen": "sk-test"},
	}
	for _, opt := range opts {
		opt(tc)
	}

	var stdout, stderr bytes.Buffer
	a := NewApp(
		WithIO(strings.NewReader(tc.stdin), &stdout, &stderr),
		WithConfigLoader(func(string) (*config.Config, error) {
			return tc.cfg, nil
		}),
		WithKeystoreFactory(func() (keystore.Keystore, error) {
			return tc.keys, nil
		}),
		WithContainerFactory(func(o container.Options) (*container.Container, error) {
			o.Keystore = tc.keys
			return container.New(o)
		}),
	)
	a.root.SetOut(&stdout)
	a.root.SetErr(&stderr)

	return a, &stdout, &stderr
}

func TestRootCommandHasSubcommands(t *testing.T) {
	a, _, _ := newTestApp(t)

	want := []string{"chat", "doctor", "init", "keys", "models", "version"}
	var got []string
	for _, cmd := range a.root.Commands() {
		got = append(got, cmd.Name())
	}
	sort.Strings(got)

	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q (have %v)", name, got)
		}
	}
}

func TestInitConfigUsesConfigFlag(t *testing.T) {
	var loadedPath string

	var stdout, stderr bytes.Buffer
	a := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(path string) (*config.Config, error) {
			loadedPath = path
			return &config.Config{}, nil
		}),
	)
	a.root.SetOut(&stdout)
	a.root.SetErr(&stderr)

	a.root.SetArgs([]string{"version", "--config", "/tmp/custom.yaml"})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if loadedPath != "/tmp/custom.yaml" {
		t.Errorf("loaded path = %q, want /tmp/custom.yaml", loadedPath)
	}
}

func TestInitConfigDefaultPath(t *testing.T) {
	var loadedPath string

	var stdout, stderr bytes.Buffer
	a := NewApp(
		WithIO(strings.NewReader(""), &stdout, &stderr),
		WithConfigLoader(func(path string) (*config.Config, error) {
			loadedPath = path
			return &config.Config{}, nil
		}),
	)
	a.root.SetOut(&stdout)
	a.root.SetErr(&stderr)

	a.root.SetArgs([]string{"version"})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if loadedPath != config.DefaultConfigPath() {
		t.Errorf("loaded path = %q, want %q", loadedPath, config.DefaultConfigPath())
	}
}

func TestVerboseEnablesDebugLogging(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.root.SetArgs([]string{"version", "--verbose"})
	if err := a.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !a.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger should allow debug with --verbose")
	}

	b, _, _ := newTestApp(t)
	b.root.SetArgs([]string{"version"})
	if err := b.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if b.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("logger should not allow debug without --verbose")
	}
}

func TestProviderIDFallsBackToConfig(t *testing.T) {
	a, _, _ := newTestApp(t, withTestConfig(&config.Config{DefaultProvider: "qwen"}))
	if err := a.initConfig(); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}

	if got := a.providerID(); got != "qwen" {
		t.Errorf("providerID() = %q, want qwen", got)
	}

	a.provider = "deepseek"
	if got := a.providerID(); got != "deepseek" {
		t.Errorf("providerID() = %q, want deepseek after flag", got)
	}
}
