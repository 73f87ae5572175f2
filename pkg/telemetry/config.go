package telemetry

import (
	"fmt"
	"time"
)

// Config contains the telemetry configuration for the engine.
type Config struct {
	// ServiceName identifies the service in traces and metrics.
	ServiceName string

	// ServiceVersion is the version reported with telemetry.
	ServiceVersion string

	// Environment is the deployment environment (dev, staging, prod).
	Environment string

	// Logging configures structured logging.
	Logging LoggingConfig

	// Tracing configures distributed tracing.
	Tracing TracingConfig

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool
}

// TracingConfig configures distributed tracing.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	Enabled bool

	// Exporter specifies the trace exporter (otlp, stdout, none).
	Exporter string

	// Endpoint is the OTLP collector endpoint.
	Endpoint string

	// Insecure disables TLS on the OTLP connection.
	Insecure bool

	// SamplingRate is the trace sampling rate (0.0 to 1.0).
	SamplingRate float64

	// ExportTimeout bounds trace export.
	ExportTimeout time.Duration
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	Enabled bool

	// Namespace prefixes all metric names.
	Namespace string
}

// DefaultConfig returns a configuration suitable for library use: console
// logging at info level, no tracing export, no metrics endpoint.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "openpatrol",
		ServiceVersion: "dev",
		Environment:    "dev",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: TracingConfig{
			Enabled:       false,
			Exporter:      "none",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "openpatrol",
		},
	}
}

// Validate checks the configuration for unsupported values.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	switch c.Tracing.Exporter {
	case "", "otlp", "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Tracing.Exporter)
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("sampling rate must be between 0 and 1, got %f", c.Tracing.SamplingRate)
	}
	return nil
}
