// Package observability wires OpenTelemetry tracing and metrics.
//
// Instrumented code always goes through the global providers, so it works
// unchanged whether Setup installed OTLP exporters or not:
//
//	shutdown, err := observability.Setup(ctx, cfg, info)
//	defer shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "account.login")
//	defer span.End()
package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer and meter name used across the service.
const InstrumentationName = "github.com/kbukum/feedback"

// Attribute keys.
const (
	AttrServiceName    = "service.name"
	AttrServiceVersion = "service.version"
	AttrEnvironment    = "deployment.environment"
	AttrUserID         = "user.id"
	AttrUserRole       = "user.role"
	AttrReason         = "reason"
	AttrOutcome        = "outcome"
)

// Setup installs OTLP trace and metric providers when cfg.Enabled is set.
// The returned function flushes and stops them; it is safe to call when
// nothing was installed.
func Setup(ctx context.Context, cfg Config, info ServiceInfo) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop, nil
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return noop, err
	}

	tp, err := InitTracer(ctx, cfg, info)
	if err != nil {
		return noop, err
	}
	mp, err := InitMeter(ctx, cfg, info)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return noop, err
	}
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// InitTracer installs an OTLP/HTTP tracer provider as the global provider.
func InitTracer(ctx context.Context, cfg Config, info ServiceInfo) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(info)),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

func newResource(info ServiceInfo) *resource.Resource {
	return resource.NewSchemaless(
		attribute.String(AttrServiceName, info.Name),
		attribute.String(AttrServiceVersion, info.Version),
		attribute.String(AttrEnvironment, info.Environment),
	)
}

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// StartSpan starts a span on the service tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SetSpanError records err on the span in ctx.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err)
	}
}
