package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %q", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.MetricInterval != 15*time.Second {
		t.Errorf("expected 15s interval, got %s", cfg.MetricInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	cfg.SampleRate = 2
	if cfg.Validate() == nil {
		t.Error("expected error for sample rate above 1")
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, ServiceInfo{Name: "feedback"})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown returned %v", err)
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	_, err := Setup(context.Background(), Config{Enabled: true, SampleRate: -1}, ServiceInfo{Name: "feedback"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, sdktrace.AlwaysSample().Description()},
		{0, sdktrace.NeverSample().Description()},
		{0.5, sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()},
	}
	for _, tc := range tests {
		if got := sampler(tc.rate).Description(); got != tc.want {
			t.Errorf("sampler(%v) = %s, want %s", tc.rate, got, tc.want)
		}
	}
}

func TestNewResource(t *testing.T) {
	res := newResource(ServiceInfo{Name: "feedback", Version: "1.2.3", Environment: "test"})
	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.AsString()
	}
	if got[AttrServiceName] != "feedback" || got[AttrServiceVersion] != "1.2.3" || got[AttrEnvironment] != "test" {
		t.Errorf("unexpected resource attributes %v", got)
	}
}

func TestStartSpanAndError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), "account.login")
	SetSpanError(ctx, errors.New("bad password"))
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "account.login" {
		t.Errorf("unexpected span name %q", spans[0].Name)
	}
	if len(spans[0].Events) != 1 {
		t.Errorf("expected the error to be recorded as an event, got %d events", len(spans[0].Events))
	}
}

func TestSetSpanError_NoSpan(t *testing.T) {
	SetSpanError(context.Background(), errors.New("ignored"))
}

func TestAuthMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewAuthMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.RecordRejection(ctx, "missing")
	m.RecordRejection(ctx, "missing")
	m.RecordRejection(ctx, "expired")
	m.RecordLogin(ctx, "success")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[md.Name] += dp.Value
			}
		}
	}
	if totals["auth.gate.rejections"] != 3 {
		t.Errorf("expected 3 rejections, got %d", totals["auth.gate.rejections"])
	}
	if totals["auth.login.attempts"] != 1 {
		t.Errorf("expected 1 login, got %d", totals["auth.login.attempts"])
	}
}

func TestAuthMetrics_NilSafe(t *testing.T) {
	var m *AuthMetrics
	m.RecordRejection(context.Background(), "missing")
	m.RecordLogin(context.Background(), "failure")

	if _, err := NewAuthMetrics(noop.NewMeterProvider().Meter("test")); err != nil {
		t.Errorf("noop meter should create instruments: %v", err)
	}
}
