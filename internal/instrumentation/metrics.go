package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
// The zero value is a no-op recorder, so a nil-provider setup degrades
// gracefully.
type Metrics struct {
	// Fleep API metrics
	fleepAPIOperationsTotal   metric.Int64Counter
	fleepAPIOperationDuration metric.Float64Histogram

	// Authentication metrics
	authTotal           metric.Int64Counter
	sessionRefreshTotal metric.Int64Counter

	// MCP tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all instruments registered
// on the given meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.fleepAPIOperationsTotal, err = meter.Int64Counter(
		"fleep_api_operations_total",
		metric.WithDescription("Total number of Fleep API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleep_api_operations_total counter: %w", err)
	}

	m.fleepAPIOperationDuration, err = meter.Float64Histogram(
		"fleep_api_operation_duration_seconds",
		metric.WithDescription("Fleep API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleep_api_operation_duration_seconds histogram: %w", err)
	}

	m.authTotal, err = meter.Int64Counter(
		"fleep_auth_total",
		metric.WithDescription("Total number of Fleep login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleep_auth_total counter: %w", err)
	}

	m.sessionRefreshTotal, err = meter.Int64Counter(
		"fleep_session_refresh_total",
		metric.WithDescription("Total number of session invalidations triggered by authorization rejections"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fleep_session_refresh_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordAPIOperation records a Fleep API operation with its result.
//
// Parameters:
//   - operation: Operation type (login, create, send, sync, store_labels)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordAPIOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.fleepAPIOperationsTotal == nil || m.fleepAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.fleepAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.fleepAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAuthAttempt records a login attempt with its result
// ("success" or "error").
func (m *Metrics) RecordAuthAttempt(ctx context.Context, result string) {
	if m.authTotal == nil {
		return // Instrumentation not initialized
	}

	m.authTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordSessionRefresh records a session invalidation caused by a 401
// rejection of the held session pair.
func (m *Metrics) RecordSessionRefresh(ctx context.Context) {
	if m.sessionRefreshTotal == nil {
		return // Instrumentation not initialized
	}

	m.sessionRefreshTotal.Add(ctx, 1)
}

// RecordToolInvocation records an MCP tool invocation with tool name,
// status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocationWithAccount is like RecordToolInvocation but adds the
// account label when detailed (high-cardinality) labels are enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
