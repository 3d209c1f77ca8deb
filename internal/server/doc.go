// Package server provides the MCP server context and the operational
// HTTP surface for the fleep-mcp application.
//
// # Key Components
//
// ServerContext owns the Fleep API client shared by all tool handlers,
// along with the optional metrics recorder and audit logger. Shutting it
// down cancels in-flight work and releases the client's transport.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, kept
// separate from the MCP transport so operational data never leaks to
// MCP clients.
//
// HealthChecker serves liveness and readiness endpoints suitable for
// Kubernetes probes, reporting not-ready once the server context begins
// shutting down.
package server
