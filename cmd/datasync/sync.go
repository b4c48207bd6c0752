package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	baseRef   string
	targetRef string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync files changed since the last successful run.",
	Long: `Diffs the data directory between the last synced commit (or --base) and
the current head (or --target) and delivers the changed JSON files in batches.
Falls back to a full resync when no previous run is recorded.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := a.Sync(ctx, baseRef, targetRef)
		if report != nil {
			printReport(report)
		}
		if err != nil {
			return err
		}
		return reportError(report)
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	syncCmd.Flags().StringVar(&baseRef, "base", "", "base reference (default: last synced ref from the state store)")
	syncCmd.Flags().StringVar(&targetRef, "target", "", "target reference (default: HEAD)")
}
