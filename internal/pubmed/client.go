// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed is a client for the NCBI PubMed E-utilities API.
// It runs paginated esearch queries, fetches records with paginated
// efetch calls, and parses the returned XML into citation records.
//
// Requests are issued one at a time; a multi-page search or fetch either
// completes or fails as a whole.
//
// E-utilities documentation: https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pdiddy/litter-getter/internal/httputil"
	"github.com/pdiddy/litter-getter/internal/observability"
	"github.com/pdiddy/litter-getter/pkg/types"
)

const (
	// DefaultBaseURL is the E-utilities root.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultSearchPageSize is the esearch retmax used when none is given.
	DefaultSearchPageSize = 5000

	// MaxSearchPageSize is the largest retmax esearch honours. Larger
	// page sizes are clamped to it.
	MaxSearchPageSize = 10000

	// DefaultFetchPageSize is the number of ids per efetch call.
	DefaultFetchPageSize = 1000

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	defaultUserAgent = "litter-getter/0.1"

	database         = "pubmed"
	esearchEndpoint  = "esearch.fcgi"
	efetchEndpoint   = "efetch.fcgi"
	maxResponseBytes = 256 << 20
)

// Client talks to E-utilities on behalf of one identified tool.
// The zero value is not usable; construct with New.
type Client struct {
	cfg      types.PubMedConfig
	http     *http.Client
	log      zerolog.Logger
	metrics  *observability.Metrics
	validate *validator.Validate

	mu       sync.RWMutex
	settings types.Settings
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (tests pass the
// httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request and summary logging.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics records request and record counters on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client with placeholder identification. Call Connect
// before issuing requests.
func New(cfg types.PubMedConfig, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = DefaultSearchPageSize
	}
	if cfg.FetchPageSize <= 0 {
		cfg.FetchPageSize = DefaultFetchPageSize
	}

	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		settings: types.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect replaces the client identification. Both values are validated
// first; on error the previous settings stay in place.
func (c *Client) Connect(tool, email string) error {
	s := types.Settings{
		Tool:  strings.TrimSpace(tool),
		Email: strings.TrimSpace(email),
	}
	if err := c.validate.Struct(s); err != nil {
		return fmt.Errorf("invalid identification: %w", err)
	}

	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()

	c.log.Debug().Str("tool", s.Tool).Str("email", s.Email).Msg("connected")
	return nil
}

// Settings returns a copy of the current identification.
func (c *Client) Settings() types.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// post sends one form-encoded request to endpoint and returns the body.
// Identification and the database name are added to form.
func (c *Client) post(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	s := c.Settings()
	if s.IsPlaceholder() {
		return nil, ErrNotConnected
	}

	form.Set("db", database)
	form.Set("tool", s.Tool)
	form.Set("email", s.Email)

	req, err := httputil.NewFormRequest(ctx, c.cfg.BaseURL+"/"+endpoint, form, c.cfg.UserAgent)
	if err != nil {
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, observability.OutcomeTransport)
		return nil, &ConnectionError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome := observability.OutcomeHTTPError
		if resp.StatusCode == http.StatusTooManyRequests {
			outcome = observability.OutcomeRateLimited
		}
		c.metrics.ObserveRequest(endpoint, outcome)
		return nil, &ConnectionError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.metrics.ObserveRequest(endpoint, observability.OutcomeTransport)
		return nil, &ConnectionError{Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.metrics.ObserveRequest(endpoint, observability.OutcomeOK)
	return body, nil
}

// pageCount returns ceil(total / size) for positive inputs.
func pageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	n := total / size
	if total%size != 0 {
		n++
	}
	return n
}
