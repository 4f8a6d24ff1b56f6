// Package observe provides OpenTelemetry metrics and tracing for the
// falcon-mcp server, plus HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exposed
// through a Prometheus exporter bridge set up by [InitProvider]. Tests should
// use [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution. Attribute values are tool names, transports and error kinds;
// credential material is never used as an attribute.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "falcon-mcp"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// ToolCalls counts invocations by tool, transport and outcome kind.
	ToolCalls metric.Int64Counter

	// ToolDuration tracks end-to-end pipeline latency per tool.
	ToolDuration metric.Float64Histogram

	// InFlight tracks invocations currently executing.
	InFlight metric.Int64UpDownCounter

	// UpstreamRequests counts Falcon API attempts by status class.
	UpstreamRequests metric.Int64Counter

	// UpstreamRetries counts retried Falcon API attempts.
	UpstreamRetries metric.Int64Counter

	// HTTPRequestDuration tracks REST gateway request latency.
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries in seconds.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.ToolCalls, err = m.Int64Counter("falcon_mcp.tool.calls",
		metric.WithDescription("Total tool invocations by tool, transport and outcome."),
	); err != nil {
		return nil, err
	}
	if met.ToolDuration, err = m.Float64Histogram("falcon_mcp.tool.duration",
		metric.WithDescription("Latency of tool invocations."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.InFlight, err = m.Int64UpDownCounter("falcon_mcp.tool.in_flight",
		metric.WithDescription("Number of tool invocations currently executing."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamRequests, err = m.Int64Counter("falcon_mcp.upstream.requests",
		metric.WithDescription("Falcon API request attempts by status class."),
	); err != nil {
		return nil, err
	}
	if met.UpstreamRetries, err = m.Int64Counter("falcon_mcp.upstream.retries",
		metric.WithDescription("Falcon API attempts that were retried."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("falcon_mcp.http.request.duration",
		metric.WithDescription("REST gateway request latency by method and route."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordToolCall records one finished invocation. kind is empty on success.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, transport, kind string, seconds float64) {
	outcome := "success"
	if kind != "" {
		outcome = kind
	}
	attrs := metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("transport", transport),
		attribute.String("outcome", outcome),
	)
	m.ToolCalls.Add(ctx, 1, attrs)
	m.ToolDuration.Record(ctx, seconds, attrs)
}

// RecordUpstream records one Falcon API attempt.
func (m *Metrics) RecordUpstream(ctx context.Context, method, statusClass string) {
	m.UpstreamRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status_class", statusClass),
		),
	)
}
