package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Rebuild the stats counters and markdown report from the data root.",
	RunE: func(_ *cobra.Command, _ []string) error {
		a, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.UpdateStats(); err != nil {
			return err
		}
		slog.Info("stats report updated")
		return nil
	},
}
