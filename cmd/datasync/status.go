package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last synced reference and recent run history.",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		a, cleanup, err := newApp()
		if err != nil {
			return err
		}
		defer cleanup()

		lastRef, err := a.LastSyncedRef(ctx)
		if err != nil {
			return fmt.Errorf("failed to load last synced ref: %w", err)
		}
		runs, err := a.RecentRuns(ctx, 10)
		if err != nil {
			return fmt.Errorf("failed to load run history: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"last_synced_ref": lastRef,
				"runs":            runs,
			})
		}

		if lastRef == "" {
			fmt.Println("No completed sync run recorded yet.")
		} else {
			fmt.Printf("Last synced ref: %s\n", lastRef)
		}
		if len(runs) == 0 {
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RUN\tMODE\tSTATUS\tFILES\tFAILED\tFINISHED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				shortID(run.ID),
				run.Mode,
				run.Status,
				run.FilesTotal,
				run.FilesFailed,
				run.FinishedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "output as JSON")
}
