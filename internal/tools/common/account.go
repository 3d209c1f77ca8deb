package common

import (
	"github.com/fleepio/fleep-mcp/internal/server"
)

// AccountForInvocation resolves the Fleep account an invocation runs as.
// The server holds a single client authenticated from environment
// credentials, so the account is that client's email, or "default" when
// no client is configured (for example in tests).
func AccountForInvocation(sc *server.ServerContext) string {
	if sc == nil {
		return "default"
	}
	if client := sc.FleepClient(); client != nil && client.Email() != "" {
		return client.Email()
	}
	return "default"
}
