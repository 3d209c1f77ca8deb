package fleep_tools

import (
	"fmt"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/fleepio/fleep-mcp/internal/fleep"
	"github.com/fleepio/fleep-mcp/internal/server"
)

// getFleepClient returns the configured Fleep client or an error suitable
// for a tool result.
func getFleepClient(sc *server.ServerContext) (*fleep.Client, error) {
	client := sc.FleepClient()
	if client == nil {
		return nil, fmt.Errorf("no Fleep client configured. Set %s and %s and restart the server", fleep.EnvEmail, fleep.EnvPassword)
	}
	return client, nil
}

// splitCommaSeparated splits a comma-separated argument into trimmed,
// non-empty items.
func splitCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// RegisterFleepTools registers all Fleep-related tools with the MCP server
func RegisterFleepTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Conversation tools (create requires write permissions, info is read-only)
	if err := RegisterConversationTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register conversation tools: %w", err)
	}

	// Message tools (require write permissions)
	if err := RegisterMessageTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register message tools: %w", err)
	}

	// Label tools (get is read-only, set requires write permissions)
	if err := RegisterLabelTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register label tools: %w", err)
	}

	return nil
}
