package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
)

// Module serves the HTTP API as part of the mono application.
type Module struct {
	addr     string
	handlers *Handlers
	log      *slog.Logger

	app      *fiber.App
	listener net.Listener
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the API module listening on addr.
func NewModule(addr string, handlers *Handlers, log *slog.Logger) *Module {
	return &Module{
		addr:     addr,
		handlers: handlers,
		log:      log,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Start binds the listener and serves requests in the background.
func (m *Module) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.addr, err)
	}
	m.listener = ln
	m.app = NewApp(m.handlers)

	go func() {
		if err := m.app.Listener(ln); err != nil {
			m.log.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()

	m.log.Info("HTTP server started", "addr", ln.Addr().String())
	return nil
}

// Stop shuts down the HTTP server, waiting for in-flight requests.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.log.Info("shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.listener == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "not listening",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr": m.listener.Addr().String(),
		},
	}
}

// Addr returns the bound listen address, or "" before Start.
func (m *Module) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}
