package server

import (
	"context"
	"sync"

	"github.com/fleepio/fleep-mcp/internal/fleep"
	"github.com/fleepio/fleep-mcp/internal/instrumentation"
)

// ServerContext holds the shared state for the MCP server: the Fleep client
// it proxies to, plus optional instrumentation. The Fleep client is owned
// by this context and released on Shutdown; no other component closes it.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	fleepClient *fleep.Client
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context wrapping the given Fleep
// client. The client may be nil in tests; tool handlers report a
// configuration error when no client is available.
func NewServerContext(ctx context.Context, client *fleep.Client) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:         shutdownCtx,
		cancel:      cancel,
		fleepClient: client,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// FleepClient returns the Fleep client, or nil if none is configured.
func (sc *ServerContext) FleepClient() *fleep.Client {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.fleepClient
}

// SetFleepClient replaces the Fleep client. Used by tests.
func (sc *ServerContext) SetFleepClient(client *fleep.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.fleepClient = client
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// AuditLogger returns the audit logger, or nil if not configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(auditLogger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context and releases the Fleep client's
// transport. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	if sc.fleepClient != nil {
		sc.fleepClient.Close()
	}
	return nil
}
