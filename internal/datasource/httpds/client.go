// Package httpds is a small HTTP client with retry and backoff, used to talk
// to JSON APIs such as FoodData Central.
//
// Transport errors, 429 and 5xx responses are retried with exponential
// backoff (honoring Retry-After when the server sends one). Any other status
// is final. Waits respect context cancellation. Query parameters named
// api_key are masked in every error and log line.
package httpds

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nutrition/internal/metrics"
)

// Config configures the client. Zero values get defaults:
// Timeout 30s, InitialBackoff 200ms, MaxBackoff 5s, no retries.
type Config struct {
	// Timeout is the per-attempt timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int

	// InitialBackoff doubles on every retry up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// InsecureSkipVerify disables TLS certificate checks (for intercepting
	// proxies in test environments).
	InsecureSkipVerify bool

	// BaseHeaders are added to every request; per-request headers win.
	BaseHeaders http.Header

	// Transport replaces the default *http.Transport.
	Transport http.RoundTripper

	// Job labels request metrics. Logger receives retry warnings.
	Job    string
	Logger zerolog.Logger
}

// Client wraps an http.Client with retry and backoff behavior.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	baseHeaders    http.Header
	job            string
	log            zerolog.Logger

	// wait blocks for d or until ctx is done; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // explicitly configurable
			},
		}
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout, Transport: transport},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		baseHeaders:    cfg.BaseHeaders.Clone(),
		job:            cfg.Job,
		log:            cfg.Logger,
		wait:           sleepWithContext,
	}
}

// StatusError is returned for a final non-2xx response.
type StatusError struct {
	Method string
	URL    string // api_key masked
	Code   int
	Body   string // first bytes of the response body
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("httpds: %s %s: status %d", e.Method, e.URL, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Do sends a request, retrying transient failures. The body is a byte slice
// so it can be re-sent. The caller must close the returned response body.
// Non-2xx statuses that are not retryable are returned as a response, not an
// error; exhausting retries on a retryable status yields a *StatusError.
func (c *Client) Do(
	ctx context.Context,
	method, rawURL string,
	body []byte,
	headers http.Header,
) (*http.Response, error) {
	if method == "" {
		return nil, fmt.Errorf("httpds: method must not be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil || rawURL == "" {
		return nil, fmt.Errorf("httpds: invalid url %q", Redact(rawURL))
	}
	safeURL := Redact(rawURL)
	endpoint := endpointLabel(u)

	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}
		for k, vs := range c.baseHeaders {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Set(k, v)
			}
		}

		var retryAfter time.Duration
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordRequest(c.job, endpoint, 0)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("httpds: %s %s: %w", method, safeURL, redactErr(err))
		} else {
			metrics.RecordRequest(c.job, endpoint, resp.StatusCode)
			if !isRetryableStatus(resp.StatusCode) {
				return resp, nil
			}
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			lastErr = &StatusError{Method: method, URL: safeURL, Code: resp.StatusCode, Body: snippet(resp.Body)}
			_ = resp.Body.Close()
		}

		if attempt+1 >= attempts {
			return nil, lastErr
		}

		backoff := backoffDuration(c.initialBackoff, attempt, c.maxBackoff)
		if retryAfter > backoff {
			backoff = min(retryAfter, c.maxBackoff)
		}
		c.log.Warn().
			Err(lastErr).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("retrying request")
		if err := c.wait(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// Get is a convenience wrapper over Do for HTTP GET.
func (c *Client) Get(ctx context.Context, rawURL string, headers http.Header) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, rawURL, nil, headers)
}

// GetJSON fetches rawURL and decodes a 2xx JSON body into v. Any other status
// is returned as a *StatusError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	h := http.Header{}
	h.Set("Accept", "application/json")
	resp, err := c.Get(ctx, rawURL, h)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method: http.MethodGet,
			URL:    Redact(rawURL),
			Code:   resp.StatusCode,
			Body:   snippet(resp.Body),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("httpds: decode %s: %w", Redact(rawURL), err)
	}
	return nil
}

// Redact masks the value of any api_key query parameter in rawURL.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("api_key") {
		return rawURL
	}
	q.Set("api_key", "***")
	u.RawQuery = q.Encode()
	return u.String()
}

func redactErr(err error) error {
	if ue, ok := err.(*url.Error); ok {
		return &url.Error{Op: ue.Op, URL: Redact(ue.URL), Err: ue.Err}
	}
	return err
}

// endpointLabel is the URL path with numeric segments collapsed, so
// /food/123 and /food/456 share one metric series.
func endpointLabel(u *url.URL) string {
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, s := range segs {
		if _, err := strconv.ParseUint(s, 10, 64); err == nil {
			segs[i] = ":id"
		}
	}
	return "/" + strings.Join(segs, "/")
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

// isRetryableStatus reports whether code is transient: 429 or any 5xx.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// backoffDuration returns initial * 2^attempt, clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt <= 0 {
		if initial > max {
			return max
		}
		return initial
	}
	d := initial << attempt
	if d > max || d <= 0 {
		return max
	}
	return d
}

// sleepWithContext waits for d, returning early with ctx.Err() on cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
