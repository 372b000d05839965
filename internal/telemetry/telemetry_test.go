package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEnabledExportsSpans(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Config{Enabled: true, Writer: &buf, ServiceVersion: "test"})
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "unit-span")
	span.End()
	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit-span")
}

func TestRecordAPICall(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordAPICall(ctx, "messages.list", 10*time.Millisecond, nil)
	m.RecordAPICall(ctx, "messages.list", 20*time.Millisecond, nil)
	m.RecordAPICall(ctx, "messages.get", 5*time.Millisecond, errors.New("boom"))
	m.RecordMessages(ctx, 3)
	m.RecordMessages(ctx, 0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	calls := findSum(t, rm, "gmail_api_calls_total")
	got := map[string]int64{}
	for _, dp := range calls.DataPoints {
		op, _ := dp.Attributes.Value(attribute.Key(attrOperation))
		res, _ := dp.Attributes.Value(attribute.Key(attrResult))
		got[op.AsString()+"/"+res.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{
		"messages.list/success": 2,
		"messages.get/error":    1,
	}, got)

	fetched := findSum(t, rm, "messages_fetched_total")
	require.Len(t, fetched.DataPoints, 1)
	assert.Equal(t, int64(3), fetched.DataPoints[0].Value)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordAPICall(context.Background(), "labels.list", time.Millisecond, nil)
	m.RecordMessages(context.Background(), 2)
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != name {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T", name, met.Data)
			return sum
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}
