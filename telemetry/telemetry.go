// Package telemetry instruments the external-call boundaries the spec's
// ambient stack requires spans and metrics around: LLM completions, vector
// search, and graph traversal. Grounded on MrWong99-glyphoxa's
// internal/observe/provider.go TracerProvider/MeterProvider bootstrap
// pattern, trimmed to the exporters this module's go.mod actually declares.
// Library: go.opentelemetry.io/otel (+metric, +sdk, +trace).
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OTel SDK's trace provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	SpanExporter   sdktrace.SpanExporter // optional; nil records spans without exporting
}

// Init installs a resource-tagged TracerProvider as the global provider and
// returns a shutdown function to flush it on exit. Metrics use whatever
// MeterProvider is already globally registered (a no-op provider unless the
// caller has wired one), since this module's go.mod pins only the metric
// API and SDK trace packages, not a metric SDK exporter.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "knowcore"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.SpanExporter != nil {
		opts = append(opts, sdktrace.WithBatcher(cfg.SpanExporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the named tracer off the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Meter returns the named meter off the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ExternalCallRecorder wraps the histogram/counter pair every external-call
// boundary (LLM, vector, graph) records against, keyed by a "system"
// attribute so a single dashboard panel can break latency and error rate
// down per dependency.
type ExternalCallRecorder struct {
	latency metric.Float64Histogram
	errors  metric.Int64Counter
}

// NewExternalCallRecorder builds a recorder off the given meter.
func NewExternalCallRecorder(meter metric.Meter) (*ExternalCallRecorder, error) {
	latency, err := meter.Float64Histogram("knowcore.external_call.duration_ms",
		metric.WithDescription("External dependency call latency in milliseconds"))
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter("knowcore.external_call.errors",
		metric.WithDescription("External dependency call failures"))
	if err != nil {
		return nil, err
	}
	return &ExternalCallRecorder{latency: latency, errors: errs}, nil
}

// Record wraps fn with a span and latency/error metrics tagged by system
// (e.g. "llm", "qdrant", "neo4j", "postgres").
func (r *ExternalCallRecorder) Record(ctx context.Context, system, operation string, fn func(context.Context) error) error {
	ctx, span := Tracer("knowcore").Start(ctx, system+"."+operation)
	defer span.End()

	attrs := metric.WithAttributes(attribute.String("system", system), attribute.String("operation", operation))

	start := time.Now()
	err := fn(ctx)
	r.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		r.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
	}
	return err
}
