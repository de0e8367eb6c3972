// Package transport builds the process-wide HTTP transport that every
// Braid provider rides. The transport resolves the standard proxy
// environment variables (HTTP_PROXY, HTTPS_PROXY, NO_PROXY and their
// lowercase forms) exactly once at construction and can extend the
// system certificate trust store with an extra CA bundle for corporate
// or self-signed roots.
//
// SOCKS proxy URLs are refused: a request whose resolved proxy uses a
// socks scheme fails with an error wrapping core.ErrProxyUnsupported
// rather than silently going direct. PAC discovery and interactive proxy
// credentials are not supported.
//
// This package must not log. It is constructed before any logging is
// configured, so it imports no logging machinery; misconfiguration is
// reported through errors on construction or on the first request.
package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/net/http/httpproxy"

	"github.com/braid-labs/braid/core"
)

// CABundleEnvVar names the environment variable holding the path of an
// extra PEM bundle to append to the system trust store.
const CABundleEnvVar = "BRAID_CA_BUNDLE"

// Config is the resolved process transport: a proxy-aware, CA-aware
// http.Client plus the settings needed to derive further clients that
// ride the same connection path. Config is read-only after construction
// and safe for concurrent use.
type Config struct {
	client      *http.Client
	proxy       func(*http.Request) (*url.URL, error)
	caBundle    string
	hostManaged bool
	err         error
}

// Option configures transport construction.
type Option func(*options)

type options struct {
	caBundle    string
	caBundleSet bool
	hostClient  *http.Client
}

// WithCABundle sets the path of a PEM bundle appended to the system
// trust store, overriding the BRAID_CA_BUNDLE environment variable.
func WithCABundle(path string) Option {
	return func(o *options) {
		o.caBundle = path
		o.caBundleSet = true
	}
}

// WithHostClient hands transport selection to an embedding application
// that has already configured its own proxy-aware client. The client is
// used unmodified; no dispatcher is constructed and no environment is
// read.
func WithHostClient(client *http.Client) Option {
	return func(o *options) {
		o.hostClient = client
	}
}

// New constructs a transport from the current process environment and
// the given options. Proxy variables are read here, once; later changes
// to the environment have no effect on the returned Config.
//
// Malformed proxy URLs and unreachable proxies are not validated here.
// They surface as transport errors on the first request, where the retry
// layer can classify them.
func New(opts ...Option) (*Config, error) {
	o := options{caBundle: os.Getenv(CABundleEnvVar)}
	for _, opt := range opts {
		opt(&o)
	}

	if o.hostClient != nil {
		return &Config{client: o.hostClient, hostManaged: true}, nil
	}

	rootCAs, err := loadRootCAs(o.caBundle)
	if err != nil {
		return nil, err
	}

	proxy := proxyFromEnvironment()
	tr := baseTransport()
	tr.Proxy = proxy
	if rootCAs != nil {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		tr.TLSClientConfig.RootCAs = rootCAs
	}

	return &Config{
		client:   &http.Client{Transport: tr},
		proxy:    proxy,
		caBundle: o.caBundle,
	}, nil
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
)

// Default returns the shared process transport, constructing it from the
// environment on first call. The environment is never re-read; proxy
// changes require a restart.
//
// If construction fails (for example, an unreadable CA bundle named by
// BRAID_CA_BUNDLE), the returned Config fails every request with the
// recorded error rather than silently falling back to a default
// transport.
func Default() *Config {
	defaultOnce.Do(func() {
		cfg, err := New()
		if err != nil {
			cfg = &Config{
				client: &http.Client{Transport: errorTransport{err: err}},
				err:    err,
			}
		}
		defaultConfig = cfg
	})
	return defaultConfig
}

// Client returns the shared HTTP client for this transport.
func (c *Config) Client() *http.Client {
	return c.client
}

// Err reports a construction failure recorded by Default. It is nil for
// a healthy transport.
func (c *Config) Err() error {
	return c.err
}

// CABundle returns the extra CA bundle path in effect, or "".
func (c *Config) CABundle() string {
	return c.caBundle
}

// HostManaged reports whether an embedding application supplied the
// client via WithHostClient.
func (c *Config) HostManaged() bool {
	return c.hostManaged
}

// ProxyFor reports the proxy that requests to rawURL would use, or nil
// for a direct connection. For a host-managed transport the routing is
// opaque and the result is always nil.
func (c *Config) ProxyFor(rawURL string) (*url.URL, error) {
	if c.proxy == nil {
		return nil, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return c.proxy(&http.Request{URL: u})
}

// ClientOptions customize a derived client. The zero value derives a
// client identical to Client().
type ClientOptions struct {
	// Timeout bounds each request issued by the derived client,
	// including reading the full response body. Zero means no timeout.
	Timeout time.Duration

	// Headers are added to every request issued by the derived client.
	Headers http.Header
}

// NewClient derives a client with the given options that rides this
// transport's connection path, so callers get proxy and CA handling
// without touching the shared client's configuration.
func (c *Config) NewClient(opts ClientOptions) *http.Client {
	rt := c.client.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	if len(opts.Headers) > 0 {
		rt = headerTransport{base: rt, headers: opts.Headers}
	}
	return &http.Client{
		Transport: rt,
		Timeout:   opts.Timeout,
	}
}

// baseTransport clones http.DefaultTransport so connection pooling and
// HTTP/2 defaults carry over. No implicit per-request timeout is added;
// deadlines belong to callers.
func baseTransport() *http.Transport {
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		return base.Clone()
	}
	return &http.Transport{}
}

// proxyFromEnvironment snapshots the proxy environment and returns a
// proxy selector that refuses SOCKS schemes.
func proxyFromEnvironment() func(*http.Request) (*url.URL, error) {
	proxyFunc := httpproxy.FromEnvironment().ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		u, err := proxyFunc(req.URL)
		if err != nil {
			return nil, err
		}
		if u != nil && isSOCKSScheme(u.Scheme) {
			return nil, fmt.Errorf("transport: %w: %s proxy configured for %s",
				core.ErrProxyUnsupported, u.Scheme, req.URL.Host)
		}
		return u, nil
	}
}

func isSOCKSScheme(scheme string) bool {
	switch scheme {
	case "socks", "socks4", "socks4a", "socks5", "socks5h":
		return true
	}
	return false
}

// loadRootCAs returns the system pool with the PEM bundle at path
// appended, or nil when no bundle is configured so the TLS stack keeps
// its platform defaults (including SSL_CERT_FILE/SSL_CERT_DIR).
func loadRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transport: read CA bundle: %w", err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("transport: no certificates found in CA bundle %s", path)
	}
	return pool, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for key, values := range t.headers {
		for _, v := range values {
			clone.Header.Add(key, v)
		}
	}
	return t.base.RoundTrip(clone)
}

// errorTransport fails every request with a construction error. It keeps
// a misconfigured transport fail-closed instead of silently direct.
type errorTransport struct {
	err error
}

func (t errorTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, t.err
}
