package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Default HTTP client behavior shared by the provider adapters.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 500 * time.Millisecond
	DefaultMaxRetryDelay  = 5 * time.Second
)

// httpError carries the status code so retry classification can tell
// rate limits and server errors apart from client mistakes.
type httpError struct {
	status int
	url    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d from %s", e.status, e.url)
}

// transient reports whether a fetch error is worth retrying: network
// timeouts, 429 rate limits and 5xx responses. Anything else (bad
// request, auth failure, malformed body) fails immediately.
func transient(err error) bool {
	var he *httpError
	if errors.As(err, &he) {
		return he.status == http.StatusTooManyRequests || he.status >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Client is the shared HTTP layer under the provider adapters: one
// rate limiter per provider, a per-request timeout, and bounded retries
// with exponential backoff plus jitter for transient failures.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	maxAttempts uint
	retryDelay  time.Duration
	maxDelay    time.Duration
	log         zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestTimeout sets the per-request HTTP timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMaxAttempts bounds the total attempts per request (first try
// included).
func WithMaxAttempts(n uint) ClientOption {
	return func(c *Client) { c.maxAttempts = n }
}

// WithRetryDelay sets the initial backoff delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client rate-limited to rps requests per second
// with the given burst.
func NewClient(log zerolog.Logger, rps float64, burst int, opts ...ClientOption) *Client {
	c := &Client{
		http:        &http.Client{Timeout: DefaultRequestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxRetryDelay,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a rate-limited GET with retries and decodes the
// response body into out. On exhausting retries the last error is
// wrapped in ErrExhausted.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := retry.DoWithData(
		func() ([]byte, error) { return c.get(ctx, url, header) },
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(c.maxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.RetryIf(transient),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().Uint("attempt", n+1).Err(err).Str("url", url).Msg("retrying fetch")
		}),
	)
	if err != nil {
		if transient(err) {
			return fmt.Errorf("%w: %w", ErrExhausted, err)
		}
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &httpError{status: resp.StatusCode, url: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}
