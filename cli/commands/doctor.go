package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/braid-labs/braid/cli/container"
	"github.com/braid-labs/braid/providers/deepseek"
	"github.com/braid-labs/braid/providers/qwen"
	"github.com/braid-labs/braid/transport"
)

func (a *App) newDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity to provider endpoints",
		Long: `Probe provider endpoints through the process transport and report
the proxy and certificate configuration in effect.

Probes run concurrently and need no API key: any HTTP answer, including
an auth rejection, proves the route works.

Examples:
  braid doctor
  braid doctor --provider qwen --timeout 5s`,
		RunE: a.runDoctor,
	}

	cmd.Flags().DurationVar(&a.doctorTimeout, "timeout", 10*time.Second, "Per-probe timeout")

	return cmd
}

type probeTarget struct {
	provider string
	baseURL  string
}

type probeResult struct {
	provider string
	baseURL  string
	via      string
	status   string
	err      error
}

func (a *App) runDoctor(cmd *cobra.Command, args []string) error {
	tr, err := container.NewTransport(a.cfg)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}

	targets := a.doctorTargets()

	results := make([]probeResult, len(targets))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = probeEndpoint(ctx, tr, target, a.doctorTimeout)
			return nil
		})
	}
	// Probes report failures through results, never through the group.
	_ = g.Wait()

	if a.jsonOutput {
		return a.outputDoctorJSON(tr, results)
	}

	fmt.Fprintln(a.stdout, "Transport:")
	if tr.HostManaged() {
		fmt.Fprintln(a.stdout, "  client: host-managed")
	} else if bundle := tr.CABundle(); bundle != "" {
		fmt.Fprintf(a.stdout, "  roots: system pool + %s\n", bundle)
	} else {
		fmt.Fprintln(a.stdout, "  roots: system pool")
	}

	fmt.Fprintln(a.stdout, "Endpoints:")
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(a.stdout, "  %-10s %-46s %-28s unreachable: %v\n", r.provider, r.baseURL, r.via, r.err)
			continue
		}
		fmt.Fprintf(a.stdout, "  %-10s %-46s %-28s %s\n", r.provider, r.baseURL, r.via, r.status)
	}

	if failed > 0 {
		return exitWithCode(ExitNetwork, fmt.Errorf("%d of %d endpoints unreachable", failed, len(targets)))
	}
	return nil
}

// doctorTargets picks the endpoints to probe. An explicit --provider flag
// narrows the check to that provider; otherwise every known endpoint is
// probed, with config base_url overrides applied.
func (a *App) doctorTargets() []probeTarget {
	urls := map[string]string{
		"deepseek": deepseek.DefaultBaseURL,
		"qwen":     qwen.DefaultBaseURL,
	}
	if a.cfg != nil {
		for id, pc := range a.cfg.Providers {
			if pc.BaseURL != "" {
				urls[id] = pc.BaseURL
			}
		}
	}

	if a.provider != "" {
		if u, ok := urls[a.provider]; ok {
			return []probeTarget{{provider: a.provider, baseURL: u}}
		}
	}

	ids := make([]string, 0, len(urls))
	for id := range urls {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	targets := make([]probeTarget, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, probeTarget{provider: id, baseURL: urls[id]})
	}
	return targets
}

func probeEndpoint(ctx context.Context, tr *transport.Config, target probeTarget, timeout time.Duration) probeResult {
	res := probeResult{provider: target.provider, baseURL: target.baseURL}

	proxyURL, err := tr.ProxyFor(target.baseURL)
	switch {
	case err != nil:
		res.via = "proxy error: " + err.Error()
	case proxyURL != nil:
		res.via = "proxy " + proxyURL.Redacted()
	default:
		res.via = "direct"
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.baseURL, nil)
	if err != nil {
		res.err = err
		return res
	}

	resp, err := tr.Client().Do(req)
	if err != nil {
		res.err = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	// Any HTTP answer proves the route; auth rejections count as reachable
	res.status = resp.Status
	return res
}

func (a *App) outputDoctorJSON(tr *transport.Config, results []probeResult) error {
	type endpoint struct {
		Provider string `json:"provider"`
		BaseURL  string `json:"base_url"`
		Via      string `json:"via"`
		Status   string `json:"status,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	endpoints := make([]endpoint, 0, len(results))
	failed := 0
	for _, r := range results {
		e := endpoint{
			Provider: r.provider,
			BaseURL:  r.baseURL,
			Via:      r.via,
			Status:   r.status,
		}
		if r.err != nil {
			failed++
			e.Error = r.err.Error()
		}
		endpoints = append(endpoints, e)
	}

	output := map[string]interface{}{
		"transport": map[string]interface{}{
			"host_managed": tr.HostManaged(),
			"ca_bundle":    tr.CABundle(),
		},
		"endpoints": endpoints,
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return err
	}

	if failed > 0 {
		return exitWithCode(ExitNetwork, fmt.Errorf("%d of %d endpoints unreachable", failed, len(results)))
	}
	return nil
}
