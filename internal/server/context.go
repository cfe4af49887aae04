package server

import (
	"context"
	"sync"

	"github.com/calmeet/calmeet/internal/auth"
	"github.com/calmeet/calmeet/internal/dispatch"
	"github.com/calmeet/calmeet/internal/instrumentation"
)

// ServerContext holds the shared dependencies of a running MCP server.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	auth       *auth.Manager
	registry   *dispatch.Registry
	dispatcher *dispatch.Dispatcher
	provider   *instrumentation.Provider

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context wrapping the given
// dependencies. The instrumentation provider may be nil when telemetry
// is disabled.
func NewServerContext(ctx context.Context, mgr *auth.Manager, registry *dispatch.Registry, dispatcher *dispatch.Dispatcher, provider *instrumentation.Provider) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		auth:       mgr,
		registry:   registry,
		dispatcher: dispatcher,
		provider:   provider,
	}
}

// Context returns the server context. It is canceled on Shutdown.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Auth returns the credential manager.
func (sc *ServerContext) Auth() *auth.Manager {
	return sc.auth
}

// Registry returns the tool registry.
func (sc *ServerContext) Registry() *dispatch.Registry {
	return sc.registry
}

// Dispatcher returns the tool dispatcher.
func (sc *ServerContext) Dispatcher() *dispatch.Dispatcher {
	return sc.dispatcher
}

// Instrumentation returns the telemetry provider, or nil when disabled.
func (sc *ServerContext) Instrumentation() *instrumentation.Provider {
	return sc.provider
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
