// Package apiclient is the HTTP plumbing shared by the Fedora web service
// clients: rate limiting, a circuit breaker, JSON decoding and typed
// status errors.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 10 << 20

// Config holds configuration for a backend client
type Config struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	// Observe, when set, receives the duration of every request
	Observe           func(service string, elapsed time.Duration)
	Name              string
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig(name, baseURL string) Config {
	return Config{
		Name:              name,
		BaseURL:           baseURL,
		UserAgent:         "zodbot",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// Client performs rate limited JSON requests against one backend
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitBreaker
	logger     *zap.Logger
	observe    func(string, time.Duration)
	name       string
	baseURL    string
	userAgent  string
}

// New creates a backend client, filling in defaults for unset fields
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "zodbot"
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	logger := cfg.Logger.With(zap.String("backend", cfg.Name))
	return &Client{
		httpClient: cfg.HTTPClient,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    newCircuitBreaker(logger),
		logger:     logger,
		observe:    cfg.Observe,
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
	}
}

// BaseURL returns the backend base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetJSON issues a GET for path (relative to the base URL) and decodes the
// 2xx response body into out. Non-2xx responses return *StatusError.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, header http.Header, out any) error {
	ok, err := c.breaker.canAttempt(c.name)
	if !ok {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", c.name, err)
	}

	requestURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.observe != nil {
		c.observe(c.name, time.Since(start))
	}
	if err != nil {
		// A cancelled command says nothing about the backend's health
		if ctx.Err() == nil {
			c.breaker.recordFailure(c.name, err)
		}
		return fmt.Errorf("%s: request to %s failed: %w", c.name, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.breaker.recordFailure(c.name, err)
		return fmt.Errorf("%s: failed to read response body: %w", c.name, err)
	}

	if resp.StatusCode >= 500 {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: body}
		c.breaker.recordFailure(c.name, statusErr)
		return statusErr
	}
	c.breaker.recordSuccess(c.name)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("backend returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return nil
}
