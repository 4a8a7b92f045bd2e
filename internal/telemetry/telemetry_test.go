package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestNew_Disabled(t *testing.T) {
	cfg := NewDefaultConfig()

	tel, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tel)

	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.Health().Healthy)
	assert.False(t, tel.Health().Degraded)

	// No-op providers must still be usable
	tracer := tel.Tracer("bizflow.test")
	_, span := tracer.Start(context.Background(), "noop")
	span.End()

	meter := tel.Meter("bizflow.test")
	counter, err := meter.Int64Counter("noop.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = ""

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry

	assert.NotNil(t, tel.Tracer("x"))
	assert.NotNil(t, tel.Meter("x"))
	assert.Nil(t, tel.LoggerProvider())
	assert.False(t, tel.IsEnabled())
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))

	health := tel.Health()
	assert.False(t, health.Healthy)
	assert.True(t, health.Degraded)
}

func TestTestTelemetry_RecordsSpans(t *testing.T) {
	tt := NewTestTelemetry()

	tracer := tt.Tracer("bizflow.orchestrator")
	_, span := tracer.Start(context.Background(), "pipeline.convert",
		oteltrace.WithAttributes(attribute.Int("retries", 1)),
	)
	span.End()

	tt.AssertSpanExists(t, "pipeline.convert")
	tt.AssertSpanAttribute(t, "pipeline.convert", "retries", int64(1))
	assert.Nil(t, tt.SpanByName("nonexistent"))
}

func TestTestTelemetry_RecordsMetrics(t *testing.T) {
	tt := NewTestTelemetry()
	ctx := context.Background()

	meter := tt.Meter("bizflow.orchestrator")
	counter, err := meter.Int64Counter("conversions.total")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	require.NoError(t, tt.MetricReader.ForceFlush(ctx))

	collected := tt.MetricReader.Metrics()
	require.Len(t, collected, 1)
	require.NotEmpty(t, collected[0].ScopeMetrics)
	assert.Equal(t, "conversions.total", collected[0].ScopeMetrics[0].Metrics[0].Name)
}

func TestTelemetry_IsEnabled(t *testing.T) {
	tt := NewTestTelemetry()
	assert.True(t, tt.IsEnabled())

	require.NoError(t, tt.Shutdown(context.Background()))
	assert.False(t, tt.IsEnabled())
}
