package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetup_WithoutZipkin(t *testing.T) {
	shutdown, err := Setup("danish-weather", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithZipkin(t *testing.T) {
	shutdown, err := Setup("danish-weather", "http://127.0.0.1:9411/api/v2/spans")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	// Nothing listens on the collector port; only the provider must stop.
	_ = shutdown(context.Background())
}

func TestSetup_BadZipkinURL(t *testing.T) {
	_, err := Setup("danish-weather", "://nope")
	assert.Error(t, err)
}
