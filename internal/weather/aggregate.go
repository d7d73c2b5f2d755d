package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/danish-weather/internal/metrics"
)

var tracer = otel.Tracer("github.com/i474232898/danish-weather/internal/weather")

var errNoAdapter = errors.New("adapter not configured")

// Aggregator joins the YR and DMI adapters into one partial-failure tolerant result.
type Aggregator struct {
	yr  Adapter
	dmi Adapter
}

// NewAggregator creates a new Aggregator.
func NewAggregator(yr, dmi Adapter) *Aggregator {
	return &Aggregator{yr: yr, dmi: dmi}
}

// Aggregate runs both adapters concurrently and waits for both. It never
// fails: every adapter error ends up in the result's Errors.
func (a *Aggregator) Aggregate(ctx context.Context, coord Coordinate) AggregatedResult {
	ctx, span := tracer.Start(ctx, "weather.Aggregate")
	defer span.End()

	var (
		wg      sync.WaitGroup
		yr, dmi outcome
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		yr = a.run(ctx, ProviderYR, a.yr, coord)
	}()
	go func() {
		defer wg.Done()
		dmi = a.run(ctx, ProviderDMI, a.dmi, coord)
	}()
	wg.Wait()

	var res AggregatedResult
	res.YR, res.Errors.YR = yr.fold()
	res.DMI, res.Errors.DMI = dmi.fold()

	if res.Failed() {
		span.SetStatus(codes.Error, "all providers failed")
		log.Warn().
			Str("component", "aggregator").
			Str("coordinate", coord.Key()).
			Msg("no provider produced an observation")
	}
	return res
}

type outcome struct {
	obs Observation
	err error
}

// fold converts an outcome into the (observation, error) pair of the result.
// Exactly one side is non-nil.
func (o outcome) fold() (*Observation, *string) {
	if o.err != nil {
		msg := o.err.Error()
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &msg
	}
	obs := o.obs
	return &obs, nil
}

func (a *Aggregator) run(ctx context.Context, name string, ad Adapter, coord Coordinate) (out outcome) {
	ctx, span := tracer.Start(ctx, "adapter."+name)
	span.SetAttributes(
		attribute.Float64("weather.latitude", coord.Latitude),
		attribute.Float64("weather.longitude", coord.Longitude),
	)

	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("%s adapter panicked: %v", name, r)}
		}

		status := "ok"
		if out.err != nil {
			status = "error"
			span.RecordError(out.err)
			span.SetStatus(codes.Error, out.err.Error())
			log.Warn().
				Str("component", "aggregator").
				Str("provider", name).
				Err(out.err).
				Msg("provider fetch failed")
		}
		metrics.AdapterResults.WithLabelValues(name, status).Inc()
		span.End()
	}()

	if ad == nil {
		return outcome{err: errNoAdapter}
	}

	obs, err := ad.FetchObservation(ctx, coord)
	return outcome{obs: obs, err: err}
}
