package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var resyncCmd = &cobra.Command{
	Use:   "resync [scope]",
	Short: "Force-resync all matching files, ignoring the last synced ref.",
	Long: `Lists every JSON file under the data root at the current head and delivers
all of them in batches. The optional scope argument (YYYY/MM) limits the
resync to one month partition; a scope that matches nothing is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		var scope string
		if len(args) == 1 {
			scope = args[0]
		}

		report, err := a.Resync(ctx, scope)
		if report != nil {
			printReport(report)
		}
		if err != nil {
			return err
		}
		return reportError(report)
	},
}
