// Package observability provides OpenTelemetry tracing for the payload
// pipeline.
package observability

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dglo/payload-sub005/pkg/config"
	"github.com/dglo/payload-sub005/pkg/errors"
)

// Tracing owns the tracer provider of one run.
type Tracing struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// Option configures InitTracing.
type Option func(*tracingOptions)

type tracingOptions struct {
	writer  io.Writer
	version string
	syncer  bool
}

// WithWriter sends exported spans to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *tracingOptions) { o.writer = w }
}

// WithVersion sets the service version resource attribute.
func WithVersion(v string) Option {
	return func(o *tracingOptions) { o.version = v }
}

// WithSyncExport exports every span as soon as it ends.
func WithSyncExport() Option {
	return func(o *tracingOptions) { o.syncer = true }
}

// InitTracing sets up tracing. When tracing is disabled the returned
// Tracing hands out no-op spans.
func InitTracing(cfg config.TracingConfig, opts ...Option) (*Tracing, error) {
	if !cfg.Enabled {
		return &Tracing{tracer: noop.NewTracerProvider().Tracer(cfg.ServiceName)}, nil
	}

	o := tracingOptions{writer: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(o.version),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create resource")
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(o.writer))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	export := sdktrace.WithBatcher(exporter)
	if o.syncer {
		export = sdktrace.WithSyncer(exporter)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		export,
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracing{provider: tp, tracer: tp.Tracer(cfg.ServiceName)}, nil
}

// Tracer returns the run's tracer.
func (t *Tracing) Tracer() trace.Tracer {
	return t.tracer
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// StartSpan starts a span named name with the given attributes.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan ends span, recording err when it is not nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
