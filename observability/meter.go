package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
func InitMeter(ctx context.Context, cfg Config, info ServiceInfo) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval))),
		sdkmetric.WithResource(newResource(info)),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns the service meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// AuthMetrics holds the instruments of the authentication path.
type AuthMetrics struct {
	rejections metric.Int64Counter
	logins     metric.Int64Counter
}

// NewAuthMetrics creates the authentication instruments on meter.
func NewAuthMetrics(meter metric.Meter) (*AuthMetrics, error) {
	rejections, err := meter.Int64Counter("auth.gate.rejections",
		metric.WithDescription("Requests rejected by the auth gate, by reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.gate.rejections counter: %w", err)
	}
	logins, err := meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating auth.login.attempts counter: %w", err)
	}
	return &AuthMetrics{rejections: rejections, logins: logins}, nil
}

// RecordRejection counts a gate rejection. A nil receiver is a no-op.
func (m *AuthMetrics) RecordRejection(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}

// RecordLogin counts a login attempt. A nil receiver is a no-op.
func (m *AuthMetrics) RecordLogin(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrOutcome, outcome)))
}
