// Package bear implements a client for the bear analytics metadata API: the
// catalog, date dataset and metadata object resources a workspace catalog is
// loaded from.
package bear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default request parameters.
const (
	DefaultPageSize    = 100
	DefaultTimeout     = 60 * time.Second
	objectsBatchSize   = 50
	maxErrorBodyLength = 512
)

// Operation names used for logging and metrics.
const (
	OpLoadItems        = "loadItems"
	OpLoadDateDataSets = "loadDateDataSets"
	OpLoadGroups       = "loadGroups"
	OpGetObjects       = "getObjects"
	OpQueryObjects     = "queryObjects"
	OpIdentifiers      = "identifiers"
)

// Client talks to one bear backend. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	token    string
	logger   *zap.Logger
	metrics  *Metrics
	pageSize int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithPageSize sets the loadCatalog page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New creates a client for the backend at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse endpoint: %q is not an absolute url", endpoint)
	}
	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do sends one JSON request and decodes the JSON response into out.
// A nil body sends no payload; a nil out discards the response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	target := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		c.logger.Debug("backend request failed",
			zap.String("op", op),
			zap.String("url", target.String()),
			zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.observe(op, resp.StatusCode, elapsed)
	c.logger.Debug("backend request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", target.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        target.String(),
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func internalPath(workspace, resource string) string {
	return "/gdc/internal/projects/" + workspace + "/" + resource
}

func mdPath(workspace, resource string) string {
	return "/gdc/md/" + workspace + "/" + resource
}
