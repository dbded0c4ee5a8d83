// Package httpclient is the HTTP collaborator list controllers fetch through.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/simp-lee/procurebase/internal/listquery"
)

const (
	defaultTimeout  = 10 * time.Second
	maxErrorExcerpt = 512
)

// Config holds client settings.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Headers are sent with every request, e.g. an Authorization header.
	Headers map[string]string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client issues list GETs against a base URL, retrying transient failures.
type Client struct {
	base    *url.URL
	http    *retryablehttp.Client
	headers map[string]string
	logger  *slog.Logger
}

var _ listquery.Getter = (*Client)(nil)

// New creates a client. logger may be nil, in which case slog.Default() is used.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("httpclient: base URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("httpclient: invalid base URL %q: scheme must be http or https", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.Logger = logger
	rc.RetryMax = max(cfg.RetryMax, 0)
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = max(cfg.RetryWaitMax, rc.RetryWaitMin)
	}
	rc.HTTPClient.Timeout = defaultTimeout
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	// Keep the last response so non-2xx bodies can be reported.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		base:    base,
		http:    rc,
		headers: maps.Clone(cfg.Headers),
		logger:  logger,
	}, nil
}

// Get fetches path relative to the base URL and decodes the list envelope.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*listquery.Page, error) {
	target := c.base.JoinPath(path)
	target.RawQuery = params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", target.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorExcerpt))
		c.logger.Warn("list request rejected",
			slog.String("path", target.Path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var page listquery.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}
	return &page, nil
}
