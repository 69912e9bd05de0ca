// Package app wires configuration, storage and services into one process.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dori/taskmate/internal/auth"
	"github.com/dori/taskmate/internal/config"
	"github.com/dori/taskmate/internal/db"
	"github.com/dori/taskmate/internal/tracker"
	"github.com/gofrs/flock"
)

var _ tracker.Store = (*db.DB)(nil)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	DB       *db.DB
	Accounts *auth.Service
	Tracker  *tracker.Service
	lockFile *flock.Flock
}

// Options controls how New opens the data directory.
type Options struct {
	// Exclusive takes the data directory lock so that only one server runs
	// against it.
	Exclusive bool
}

// New creates a new application instance
func New(cfg *config.Config, log *slog.Logger, opts Options) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config: cfg,
		Log:    log,
	}

	if opts.Exclusive {
		if err := app.acquireLock(); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(cfg.DBPath, log)
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	gdb, err := auth.OpenGorm(database.DB)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.UsesDevSecret() {
		log.Warn("auth.secret is not set; using the development secret")
	}
	tokens := auth.NewTokenManager(auth.TokenConfig{
		SecretKey:            cfg.Auth.Secret,
		AccessTokenDuration:  cfg.Auth.AccessTTL,
		RefreshTokenDuration: cfg.Auth.RefreshTTL,
		Issuer:               cfg.Auth.Issuer,
	})
	app.Accounts = auth.NewService(auth.NewUserRepository(gdb), auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, log)
	app.Tracker = tracker.NewService(database, log)

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another taskmate server is already using %s", a.Config.DataDir)
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
