// Package http provides the shared outbound HTTP client used by the GitHub,
// NuGet registry and icon prefetch clients.
//
// It wraps the standard http.Client with timeouts, user agent management,
// retry with backoff, per-host circuit breaking and rate limiting, and
// HTTP/2 (optionally HTTP/3) transports.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/willibrandon/nugetcatalog/observability"
	"github.com/willibrandon/nugetcatalog/resilience"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "nugetcatalog/0.1.0"
)

// Client wraps http.Client with retry and per-host protection.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	retryConfig    *RetryConfig
	logger         observability.Logger
	circuitBreaker *resilience.HTTPCircuitBreaker // nil disables
	rateLimiter    *resilience.HostLimiter        // nil disables
}

// Config holds HTTP client configuration
type Config struct {
	Timeout              time.Duration
	UserAgent            string
	Transport            TransportConfig
	RetryConfig          *RetryConfig
	Logger               observability.Logger             // nil uses NullLogger
	EnableTracing        bool                             // wrap transport with OpenTelemetry spans
	CircuitBreakerConfig *resilience.CircuitBreakerConfig // nil disables
	RateLimiterConfig    *resilience.LimiterConfig        // nil disables

	// RoundTripper overrides the constructed transport (tests).
	RoundTripper http.RoundTripper
}

// DefaultConfig returns a client configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		Transport:   DefaultTransportConfig(),
		RetryConfig: DefaultRetryConfig(),
	}
}

// NewClient creates a new HTTP client with the given configuration
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RetryConfig == nil {
		cfg.RetryConfig = DefaultRetryConfig()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	transport := cfg.RoundTripper
	if transport == nil {
		transport = NewTransport(cfg.Transport)
	}
	if cfg.EnableTracing {
		transport = observability.NewHTTPTracingTransport(transport, observability.TracerName+"/http")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNullLogger()
	}

	client := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent:   cfg.UserAgent,
		retryConfig: cfg.RetryConfig,
		logger:      logger,
	}

	if cfg.CircuitBreakerConfig != nil {
		client.circuitBreaker = resilience.NewHTTPCircuitBreaker(*cfg.CircuitBreakerConfig)
	}
	if cfg.RateLimiterConfig != nil {
		client.rateLimiter = resilience.NewHostLimiter(*cfg.RateLimiterConfig)
	}

	return client
}

// StatusError is returned by the Get helpers for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s returned %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// Do executes a single HTTP attempt with context and user agent.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if err := c.waitForHost(ctx, req); err != nil {
		return nil, err
	}

	return c.protect(ctx, req.URL.Host, func(ctx context.Context) (*http.Response, error) {
		return c.send(ctx, req)
	})
}

// DoWithRetry executes an HTTP request, retrying transient failures with backoff.
func (c *Client) DoWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.waitForHost(ctx, req); err != nil {
		return nil, err
	}

	// The breaker wraps the whole retry sequence, not each attempt.
	return c.protect(ctx, req.URL.Host, func(ctx context.Context) (*http.Response, error) {
		var lastErr error
		var resp *http.Response

		for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
			reqClone := req.Clone(ctx)
			if reqClone.Header.Get("User-Agent") == "" {
				reqClone.Header.Set("User-Agent", c.userAgent)
			}

			resp, lastErr = c.send(ctx, reqClone)

			if lastErr == nil && !IsRetriableStatus(resp.StatusCode) {
				if attempt > 0 {
					c.logger.InfoContext(ctx, "HTTP {Method} {URL} succeeded after {Attempt} retries",
						req.Method, req.URL.String(), attempt)
				}
				return resp, nil
			}

			if lastErr != nil && !IsRetriable(lastErr) {
				return nil, lastErr
			}

			if attempt == c.retryConfig.MaxRetries {
				break
			}

			var backoff time.Duration
			if resp != nil {
				backoff = ParseRetryAfter(resp.Header.Get("Retry-After"))
				_ = resp.Body.Close()
			}
			if backoff == 0 {
				backoff = c.retryConfig.CalculateBackoff(attempt)
			}

			observability.RecordRetry(ctx, attempt+1, lastErr)
			c.logger.DebugContext(ctx, "HTTP {Method} {URL} retry {Attempt}/{MaxRetries} after {Backoff}ms",
				req.Method, req.URL.String(), attempt+1, c.retryConfig.MaxRetries, backoff.Milliseconds())

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if lastErr != nil {
			c.logger.WarnContext(ctx, "HTTP {Method} {URL} failed after {MaxRetries} retries: {Error}",
				req.Method, req.URL.String(), c.retryConfig.MaxRetries, lastErr)
			return nil, fmt.Errorf("after %d retries: %w", c.retryConfig.MaxRetries, lastErr)
		}

		// Retriable status on the final attempt is handed back to the caller.
		return resp, nil
	})
}

// Get performs a single-attempt GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(ctx, req)
}

// GetBytes performs a single-attempt GET and returns the body of a 2xx response.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// GetText is GetBytes for text content.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.GetBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) waitForHost(ctx context.Context, req *http.Request) error {
	if c.rateLimiter == nil {
		return nil
	}
	if err := c.rateLimiter.Wait(ctx, req.URL.Host); err != nil {
		c.logger.WarnContext(ctx, "HTTP {Method} {URL} rate limit wait failed: {Error}",
			req.Method, req.URL.String(), err)
		return fmt.Errorf("rate limit wait failed: %w", err)
	}
	return nil
}

func (c *Client) protect(ctx context.Context, host string, op resilience.HTTPOperation) (*http.Response, error) {
	if c.circuitBreaker != nil {
		return c.circuitBreaker.Execute(ctx, host, op)
	}
	return op(ctx)
}

func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugContext(ctx, "HTTP {Method} {URL} failed after {Duration}ms: {Error}",
			req.Method, req.URL.String(), duration.Milliseconds(), err)
		observability.HTTPRequestsTotal.WithLabelValues(req.Method, "error", req.URL.Host).Inc()
		return nil, err
	}

	c.logger.DebugContext(ctx, "HTTP {Method} {URL} → {StatusCode} ({Duration}ms)",
		req.Method, req.URL.String(), resp.StatusCode, duration.Milliseconds())
	observability.HTTPRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode), req.URL.Host).Inc()
	observability.HTTPRequestDuration.WithLabelValues(req.Method, req.URL.Host).Observe(duration.Seconds())

	return resp, nil
}
