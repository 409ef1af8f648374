// pkg/source/web.go
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/primait/jwks-client/pkg/keyset"
)

const (
	// DefaultConnectTimeout bounds dialing the remote endpoint.
	DefaultConnectTimeout = 20 * time.Second
	// DefaultTimeout bounds the whole request, body included.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is satisfied by *http.Client and allows easy mocking in tests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// WebSource fetches a JWKS document from a fixed absolute URL with a
// single GET per call. Any non-2xx response is a failure; so is a body
// that does not parse as a key set. No retries.
type WebSource struct {
	client HTTPDoer
	url    string
}

type WebOption func(*webConfig)

type webConfig struct {
	connectTimeout time.Duration
	timeout        time.Duration
	client         HTTPDoer
}

// WithConnectTimeout overrides the dial timeout.
func WithConnectTimeout(d time.Duration) WebOption {
	return func(c *webConfig) { c.connectTimeout = d }
}

// WithTimeout overrides the total request timeout.
func WithTimeout(d time.Duration) WebOption {
	return func(c *webConfig) { c.timeout = d }
}

// WithHTTPClient swaps the underlying client; timeout options are ignored
// when set.
func WithHTTPClient(client HTTPDoer) WebOption {
	return func(c *webConfig) { c.client = client }
}

// NewWebSource validates the URL and builds the source.
func NewWebSource(rawURL string, opts ...WebOption) (*WebSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid jwks url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("jwks url must be absolute: %q", rawURL)
	}

	cfg := webConfig{
		connectTimeout: DefaultConnectTimeout,
		timeout:        DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client := cfg.client
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: cfg.connectTimeout,
				}).DialContext,
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
			Timeout: cfg.timeout,
		}
	}

	return &WebSource{client: client, url: u.String()}, nil
}

// URL returns the configured endpoint.
func (s *WebSource) URL() string { return s.url }

func (s *WebSource) FetchKeys(ctx context.Context) (keyset.KeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return keyset.KeySet{}, fmt.Errorf("key fetch %s: %w", s.url, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return keyset.KeySet{}, fmt.Errorf("key fetch %s: %w", s.url, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return keyset.KeySet{}, &StatusError{URL: s.url, StatusCode: res.StatusCode, Status: res.Status}
	}

	var set keyset.KeySet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return keyset.KeySet{}, &ParseError{URL: s.url, Err: err}
	}
	return set, nil
}

// StatusError reports a non-2xx JWKS endpoint response.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("key fetch %s: %s", e.URL, e.Status)
}

// ParseError reports a 2xx response whose body is not a valid key set.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse jwks from %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
