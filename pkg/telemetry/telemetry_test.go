package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNewWithDefaults(t *testing.T) {
	tel, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create telemetry: %v", err)
	}
	defer tel.Shutdown(context.Background())

	if tel.Logger == nil || tel.Tracer == nil || tel.Metrics == nil {
		t.Fatal("expected all telemetry components to be initialized")
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracing.Exporter = "jaeger"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unsupported exporter")
	}

	cfg = DefaultConfig()
	cfg.Tracing.SamplingRate = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range sampling rate")
	}

	cfg = DefaultConfig()
	cfg.ServiceName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty service name")
	}
}

func TestDisabledMetricsAreNoops(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	// Must not panic with a nil registry.
	m.RecordFilter("ec2", "tag-count", time.Millisecond)
	m.RecordPipeline("ec2", 10, 3)
	m.RecordProviderCall("aws")
	m.RecordProviderError("aws", "AccessDenied")
	m.RecordNotFoundSuppressed("aws", "InvalidInstanceID.NotFound")

	if m.Handler() != nil {
		t.Error("disabled metrics should not expose a handler")
	}
}

func TestEnabledMetrics(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "test"})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordFilter("ec2", "tag-count", time.Millisecond)
	m.RecordPipeline("ec2", 10, 3)
	m.RecordNotFoundSuppressed("aws", "InvalidInstanceID.NotFound")

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected gathered metric families")
	}

	if m.Handler() == nil {
		t.Error("enabled metrics should expose a handler")
	}
}

func TestFilterSpanNaming(t *testing.T) {
	tr, err := NewTracer(TracingConfig{Enabled: false}, "test", "dev", "test")
	if err != nil {
		t.Fatalf("failed to create tracer: %v", err)
	}

	ctx, span := tr.StartFilterSpan(context.Background(), "tag-count")
	if ctx == nil || span == nil {
		t.Fatal("expected span even with tracing disabled")
	}
	span.End()
}
