// Package common provides shared helpers for MCP tool implementations:
// instrumentation wrappers that record metrics and audit logs around tool
// handlers, and account resolution for invocations.
package common
