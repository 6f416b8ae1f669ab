// Package observability provides OpenTelemetry tracing for the dispatcher.
// Grounded on core/pkg/observability.go, trimmed to the trace-only subset —
// this runtime has no RED-metrics surface to instrument (see DESIGN.md).
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the trace provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	SampleRate     float64
	BatchTimeout   time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns defaults for a local run: telemetry disabled unless
// explicitly turned on, since most dispatcher invocations are one-shot CLI
// runs rather than a long-lived service.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "adamos",
		ServiceVersion: "0.1.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        false,
		Insecure:       true,
	}
}

// Provider manages the OpenTelemetry trace provider backing one span per
// dispatcher run.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	logger         *slog.Logger
}

// New creates a trace provider. If config.Enabled is false, New returns a
// Provider whose Tracer() is a no-op tracer and StartSpan is a cheap pass-
// through — callers never need to branch on whether tracing is enabled.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	p := &Provider{config: cfg, logger: slog.Default().With("component", "observability")}

	if !cfg.Enabled {
		p.logger.InfoContext(ctx, "tracing disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observability: building resource: %w", err)
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("observability: creating trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	p.tracer = otel.Tracer("adamos.dispatch", trace.WithInstrumentationVersion(cfg.ServiceVersion))

	p.logger.InfoContext(ctx, "tracing initialized", "endpoint", cfg.OTLPEndpoint, "sample_rate", cfg.SampleRate)
	return p, nil
}

// Shutdown flushes and stops the trace provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.Shutdown(ctx)
}

// Tracer returns the configured tracer, or a global no-op tracer when
// tracing is disabled.
func (p *Provider) Tracer() trace.Tracer {
	if p.tracer == nil {
		return otel.Tracer("adamos.dispatch")
	}
	return p.tracer
}

// StartRun starts one span per dispatcher run, tagged with the run id and
// tool name.
func (p *Provider) StartRun(ctx context.Context, runID, toolName string) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, "dispatch.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("adamos.run_id", runID),
			attribute.String("adamos.tool_name", toolName),
		),
	)
}

// StartSpan starts a generic named span under the configured tracer.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// TrackOperation starts a span and returns a finish func that ends it,
// recording the error (if any) as the span status.
func (p *Provider) TrackOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := p.StartSpan(ctx, name, attrs...)
	return ctx, func(err error) {
		SetSpanStatus(ctx, err)
		span.End()
	}
}

// RunAttributes builds the standard attribute set attached to a dispatcher
// run span.
func RunAttributes(runID, toolName, status string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("adamos.run_id", runID),
		attribute.String("adamos.tool_name", toolName),
		attribute.String("adamos.status", status),
	}
}

// SpanFromContext returns the active span, or a no-op span if none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanEvent records a named event on the active span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanStatus marks the active span as errored, or Ok if err is nil.
func SetSpanStatus(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
