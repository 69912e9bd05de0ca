package main

import (
	"context"
	"errors"
	"os"

	"github.com/dori/taskmate/internal/api"
	"github.com/dori/taskmate/internal/app"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(app.Options{Exclusive: true})
	if err != nil {
		return err
	}
	cfg := a.Config

	monoApp, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		a.Close()
		return err
	}

	handlers := api.NewHandlers(a.Accounts, a.Tracker, a.DB, a.Log, cfg.Auth.CookieSecure)

	// Order: the store module first, then the API that depends on it
	if err := monoApp.Register(a.StoreModule()); err != nil {
		a.Close()
		return err
	}
	if err := monoApp.Register(api.NewModule(cfg.Server.Addr, handlers, a.Log)); err != nil {
		a.Close()
		return err
	}

	if err := monoApp.Start(context.Background()); err != nil {
		a.Close()
		return err
	}
	a.Log.Info("taskmate started", "version", rootCmd.Version, "addr", cfg.Server.Addr, "data_dir", cfg.DataDir)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				a.Log.Info("graceful shutdown initiated")
				return errors.Join(monoApp.Stop(ctx), a.Close())
			},
		},
	)

	exitCode := <-wait
	a.Log.Info("taskmate exited", "code", exitCode)
	os.Exit(exitCode)
	return nil
}
