package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dori/taskmate/internal/app"
	"github.com/dori/taskmate/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskmate",
		Short: "taskmate - a personal task and project tracker",
		Long: `taskmate keeps per-user tasks and projects in a local SQLite database
and serves them over a JSON HTTP API.

Settings come from defaults, an optional YAML file (--config) and
TASKMATE_* environment variables, e.g. TASKMATE_SERVER_ADDR.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("taskmate v%s\n", rootCmd.Version)
	},
}

// openApp loads configuration and opens the data directory.
func openApp(opts app.Options) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := app.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	return app.New(cfg, log, opts)
}
