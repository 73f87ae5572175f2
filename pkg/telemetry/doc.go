// Package telemetry provides the observability instrumentation used by the
// OpenPatrol resource-management core.
//
// It combines structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus) behind small wrappers that the
// rest of the engine depends on:
//
//   - Logger: component-scoped structured logging. Resource handlers
//     derive a child logger per resource type.
//   - Tracer: span instrumentation. Filter application runs inside a
//     "filter:<type>" span; provider calls inside "provider:<operation>".
//   - Metrics: counters and histograms for filter application, provider
//     calls and not-found suppression.
//
// Typical initialization:
//
//	tel, err := telemetry.New(telemetry.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// All three components accept a disabled configuration and degrade to
// no-ops, so library consumers that want none of this pay nothing.
package telemetry
