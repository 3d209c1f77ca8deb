// Package instrumentation provides OpenTelemetry-based observability for
// the fleep-mcp server.
//
// It covers three concerns:
//
//   - Metrics: MCP tool invocation counters/histograms, Fleep API operation
//     metrics, and authentication metrics (login attempts, session
//     refreshes). Exported via Prometheus (default), OTLP, or stdout.
//   - Tracing: spans for tool invocations and Fleep API operations,
//     exported via OTLP or stdout, disabled by default.
//   - Audit logging: structured slog records for every tool invocation,
//     with account emails anonymized unless PII logging is explicitly
//     enabled.
//
// Configuration comes from environment variables (OTEL_SERVICE_NAME,
// METRICS_EXPORTER, TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT,
// METRICS_DETAILED_LABELS, AUDIT_LOGGING_ENABLED, ...); see DefaultConfig.
// Instrumentation is optional: a disabled Provider hands out no-op
// recorders, and all recording methods tolerate uninitialized instruments.
package instrumentation
