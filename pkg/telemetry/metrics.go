package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the resource-management core.
// A disabled Metrics value is safe to call; every recorder is a no-op.
type Metrics struct {
	config MetricsConfig

	// Filter pipeline metrics
	filtersApplied *prometheus.CounterVec
	filterDuration *prometheus.HistogramVec
	resourcesIn    *prometheus.CounterVec
	resourcesOut   *prometheus.CounterVec

	// Provider call metrics
	providerCalls      *prometheus.CounterVec
	providerErrors     *prometheus.CounterVec
	notFoundSuppressed *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		filtersApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filters_applied_total",
				Help:      "Total number of filter applications",
			},
			[]string{"resource_type", "filter_type"},
		),
		filterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "filter_duration_seconds",
				Help:      "Duration of filter application in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource_type", "filter_type"},
		),
		resourcesIn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_resources_in_total",
				Help:      "Resources entering the filter pipeline",
			},
			[]string{"resource_type"},
		),
		resourcesOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_resources_out_total",
				Help:      "Resources surviving the filter pipeline",
			},
			[]string{"resource_type"},
		),
		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "Total number of guarded provider API calls",
			},
			[]string{"provider"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Provider API errors propagated to callers",
			},
			[]string{"provider", "code"},
		),
		notFoundSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_not_found_suppressed_total",
				Help:      "Provider not-found errors suppressed by the call guard",
			},
			[]string{"provider", "code"},
		),
	}

	collectors := []prometheus.Collector{
		m.filtersApplied,
		m.filterDuration,
		m.resourcesIn,
		m.resourcesOut,
		m.providerCalls,
		m.providerErrors,
		m.notFoundSuppressed,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordFilter records one filter application.
func (m *Metrics) RecordFilter(resourceType, filterType string, duration time.Duration) {
	if m == nil || !m.config.Enabled {
		return
	}
	m.filtersApplied.WithLabelValues(resourceType, filterType).Inc()
	m.filterDuration.WithLabelValues(resourceType, filterType).Observe(duration.Seconds())
}

// RecordPipeline records the resource counts entering and leaving a
// filter pipeline run.
func (m *Metrics) RecordPipeline(resourceType string, in, out int) {
	if m == nil || !m.config.Enabled {
		return
	}
	m.resourcesIn.WithLabelValues(resourceType).Add(float64(in))
	m.resourcesOut.WithLabelValues(resourceType).Add(float64(out))
}

// RecordProviderCall records one guarded provider call.
func (m *Metrics) RecordProviderCall(provider string) {
	if m == nil || !m.config.Enabled {
		return
	}
	m.providerCalls.WithLabelValues(provider).Inc()
}

// RecordProviderError records a provider error propagated to the caller.
func (m *Metrics) RecordProviderError(provider, code string) {
	if m == nil || !m.config.Enabled {
		return
	}
	m.providerErrors.WithLabelValues(provider, code).Inc()
}

// RecordNotFoundSuppressed records a provider not-found error swallowed by
// the call guard.
func (m *Metrics) RecordNotFoundSuppressed(provider, code string) {
	if m == nil || !m.config.Enabled {
		return
	}
	m.notFoundSuppressed.WithLabelValues(provider, code).Inc()
}

// Handler returns an HTTP handler serving the metrics registry, or nil
// when metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil || !m.config.Enabled {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for test assertions.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
