package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Shutdown flushes and stops the tracer provider.
type Shutdown func(ctx context.Context) error

// Setup installs the W3C trace-context propagator and, when zipkinURL is set,
// a tracer provider exporting to Zipkin. Without a URL the global no-op
// provider stays in place.
func Setup(serviceName, zipkinURL string) (Shutdown, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if zipkinURL == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := zipkin.New(zipkinURL)
	if err != nil {
		return nil, fmt.Errorf("create zipkin exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
