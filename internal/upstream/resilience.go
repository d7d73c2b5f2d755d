package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/danish-weather/internal/metrics"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errInvalidJSON  = errors.New("response is not valid JSON")
	errNotObject    = errors.New("response is not a JSON object")
)

// newBreaker returns the circuit breaker guarding one upstream service.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes one request through the circuit breaker and returns the
// JSON body. There is no retry here: the adapters retry against the proxy.
func doRequest(
	ctx context.Context,
	provider string,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (json.RawMessage, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	ctx, span := tracer.Start(ctx, "upstream."+provider)
	defer span.End()

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("http.url", req.URL.String()))

	start := time.Now()
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read body: %w", readErr)
		}
		// The proxy envelope holds one object per provider; null or a bare
		// scalar would leave a provider with neither payload nor error.
		if !gjson.ValidBytes(body) {
			return nil, errInvalidJSON
		}
		if !gjson.ParseBytes(body).IsObject() {
			return nil, errNotObject
		}
		return json.RawMessage(body), nil
	})
	metrics.UpstreamLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamCallsTotal.WithLabelValues(provider, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}
	metrics.UpstreamCallsTotal.WithLabelValues(provider, "ok").Inc()

	body, ok := result.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}
