package main

import (
	"context"
	"fmt"

	"github.com/dori/taskmate/internal/app"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Detach tasks from projects that no longer exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Tracker.ReconcileOrphans(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Reconciled:"), fmt.Sprintf("%d task(s) detached", n))
		return nil
	},
}
