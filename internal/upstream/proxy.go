package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"

	"github.com/i474232898/danish-weather/internal/weather"
)

var tracer = otel.Tracer("github.com/i474232898/danish-weather/internal/upstream")

var errNoSource = errors.New("upstream source not configured")

// DefaultTimeout bounds each outbound call made by the proxy.
const DefaultTimeout = 10 * time.Second

// Source is one third-party weather service.
type Source interface {
	Name() string
	Fetch(ctx context.Context, coord weather.Coordinate) (json.RawMessage, error)
}

// Result carries the raw upstream payloads keyed by provider. A nil payload
// marshals as null and always comes with a non-nil error.
type Result struct {
	YR     json.RawMessage        `json:"yr"`
	DMI    json.RawMessage        `json:"dmi"`
	Errors weather.ProviderErrors `json:"errors"`
}

// Failed reports whether both upstream calls failed.
func (r Result) Failed() bool {
	return r.YR == nil && r.DMI == nil
}

// Proxy is the network egress point: it calls both upstream services in
// parallel and tracks their failures independently.
type Proxy struct {
	yr      Source
	dmi     Source
	timeout time.Duration
}

// NewProxy creates a new Proxy. A non-positive timeout uses DefaultTimeout.
func NewProxy(yr, dmi Source, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Proxy{yr: yr, dmi: dmi, timeout: timeout}
}

// Fetch calls both sources and waits for both.
func (p *Proxy) Fetch(ctx context.Context, coord weather.Coordinate) Result {
	var (
		wg     sync.WaitGroup
		res    Result
		yrErr  error
		dmiErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		res.YR, yrErr = p.call(ctx, p.yr, coord)
	}()
	go func() {
		defer wg.Done()
		res.DMI, dmiErr = p.call(ctx, p.dmi, coord)
	}()
	wg.Wait()

	res.Errors.YR = errString(yrErr)
	res.Errors.DMI = errString(dmiErr)
	return res
}

func (p *Proxy) call(ctx context.Context, src Source, coord weather.Coordinate) (json.RawMessage, error) {
	if src == nil {
		return nil, errNoSource
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := src.Fetch(ctx, coord)
	if err == nil && !gjson.ParseBytes(body).IsObject() {
		err = errNotObject
	}
	if err != nil {
		log.Error().
			Str("component", "proxy").
			Str("provider", src.Name()).
			Str("coordinate", coord.Key()).
			Err(err).
			Msg("upstream call failed")
		return nil, err
	}
	return body, nil
}

func errString(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
