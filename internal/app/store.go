package app

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
)

// StoreModule owns the database within the mono application. On start it
// repairs project references left by interrupted deletes.
type StoreModule struct {
	app *App
}

// Compile-time interface checks.
var _ mono.Module = (*StoreModule)(nil)
var _ mono.HealthCheckableModule = (*StoreModule)(nil)

// StoreModule returns the store module for a.
func (a *App) StoreModule() *StoreModule {
	return &StoreModule{app: a}
}

// Name returns the module name.
func (m *StoreModule) Name() string {
	return "store"
}

// Start runs the orphan reconciliation pass.
func (m *StoreModule) Start(ctx context.Context) error {
	n, err := m.app.Tracker.ReconcileOrphans(ctx)
	if err != nil {
		return err
	}
	m.app.Log.Info("store ready", "path", m.app.DB.Path(), "repaired", n)
	return nil
}

// Stop leaves the database open; App.Close closes it once the API has
// drained.
func (m *StoreModule) Stop(_ context.Context) error {
	return nil
}

// Health pings the database.
func (m *StoreModule) Health(ctx context.Context) mono.HealthStatus {
	if err := m.app.DB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.app.DB.Path(),
		},
	}
}
