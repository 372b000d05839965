package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrOperation = "operation"
	attrResult    = "result"

	resultSuccess = "success"
	resultError   = "error"
)

// Metrics records Gmail API activity.
type Metrics struct {
	apiCallsTotal   metric.Int64Counter
	apiCallDuration metric.Float64Histogram
	messagesFetched metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.apiCallsTotal, err = meter.Int64Counter(
		"gmail_api_calls_total",
		metric.WithDescription("Total number of Gmail API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_calls_total counter: %w", err)
	}

	m.apiCallDuration, err = meter.Float64Histogram(
		"gmail_api_call_duration_seconds",
		metric.WithDescription("Gmail API call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_call_duration_seconds histogram: %w", err)
	}

	m.messagesFetched, err = meter.Int64Counter(
		"messages_fetched_total",
		metric.WithDescription("Total number of full messages returned by a run"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_fetched_total counter: %w", err)
	}
	return m, nil
}

// DefaultMetrics creates instruments on the global meter provider. It returns
// nil, which records nothing, if the instruments cannot be created.
func DefaultMetrics() *Metrics {
	m, err := NewMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil
	}
	return m
}

// RecordAPICall records one Gmail API call.
func (m *Metrics) RecordAPICall(ctx context.Context, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, operation),
		attribute.String(attrResult, result),
	)
	m.apiCallsTotal.Add(ctx, 1, attrs)
	m.apiCallDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordMessages adds n to the fetched message counter.
func (m *Metrics) RecordMessages(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.messagesFetched.Add(ctx, int64(n))
}
