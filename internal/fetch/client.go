package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/i474232898/danish-weather/internal/metrics"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxRetries  = 2
	DefaultBackoffStep = time.Second
)

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client performs GET requests with a per-attempt timeout and linear backoff
// between attempts.
type Client struct {
	http        *http.Client
	timeout     time.Duration
	maxRetries  int
	backoffStep time.Duration
	userAgent   string
	timer       backoff.Timer
}

type Option func(*Client)

// WithTimeout bounds each attempt, not the whole call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithMaxRetries sets how many attempts follow the first one.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithBackoffStep sets the unit of the linear backoff.
func WithBackoffStep(d time.Duration) Option {
	return func(c *Client) { c.backoffStep = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimer replaces the timer used for backoff sleeps.
func WithTimer(t backoff.Timer) Option {
	return func(c *Client) { c.timer = t }
}

// New returns a Client with the package defaults.
func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		http:        httpClient,
		timeout:     DefaultTimeout,
		maxRetries:  DefaultMaxRetries,
		backoffStep: DefaultBackoffStep,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	return c
}

// Get fetches url, retrying transport failures and non-2xx responses up to
// the retry budget. After exhaustion it returns a *FetchError wrapping the
// last observed error.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	var (
		out      *Response
		attempts int
	)

	operation := func() error {
		attempts++
		resp, err := c.attempt(ctx, url)
		if err != nil {
			metrics.FetchAttemptsTotal.WithLabelValues("error").Inc()
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		metrics.FetchAttemptsTotal.WithLabelValues("ok").Inc()
		out = resp
		return nil
	}

	notify := func(err error, next time.Duration) {
		log.Debug().
			Str("component", "fetch").
			Str("url", url).
			Int("attempt", attempts).
			Dur("backoff", next).
			Err(err).
			Msg("attempt failed, retrying")
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(&LinearBackOff{Step: c.backoffStep}, uint64(c.maxRetries)),
		ctx,
	)

	if err := backoff.RetryNotifyWithTimer(operation, bo, notify, c.timer); err != nil {
		return nil, &FetchError{URL: url, Attempts: attempts, Err: err}
	}
	return out, nil
}

// attempt runs one request under its own timeout. The body is read before the
// timeout is released so the caller never sees a cancelled stream.
func (c *Client) attempt(ctx context.Context, url string) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	otel.GetTextMapPropagator().Inject(attemptCtx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, attemptCtx, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) transportError(parent, attemptCtx context.Context, err error) error {
	timedOut := parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
	return &TransportError{Err: err, Timeout: timedOut, After: c.timeout}
}

// LinearBackOff waits Step, 2*Step, 3*Step, ... between attempts.
type LinearBackOff struct {
	Step time.Duration
	n    int
}

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	return time.Duration(b.n) * b.Step
}

func (b *LinearBackOff) Reset() { b.n = 0 }
