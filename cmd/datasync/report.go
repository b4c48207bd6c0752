package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/sevigo/datasync/internal/core"
)

var (
	red    = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
)

// printReport renders the run report for the invoking environment. The
// exit status carries the machine-readable outcome; this is for humans
// and CI logs.
func printReport(r *core.RunReport) {
	var status string
	switch r.Status {
	case core.StatusCompleted:
		status = green(string(r.Status))
	case core.StatusPartiallyFailed:
		status = yellow(string(r.Status))
	default:
		status = red(string(r.Status))
	}

	fmt.Printf("Run %s (%s): %s, %d files in %d batches, %d failed, took %s\n",
		shortID(r.RunID),
		r.Mode,
		status,
		r.FilesAttempted(),
		r.BatchesTotal(),
		r.FilesFailed(),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
	)

	failed := r.FailedBatches()
	if len(failed) == 0 {
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "BATCH\tFILES\tKIND\tATTEMPTS\tERROR")
	for _, res := range failed {
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%v\n", res.Seq, res.Files, res.Kind, res.Attempts, res.Err)
	}
	_ = w.Flush()
}

// reportError maps a non-completed run to a process-level error so the
// exit status is non-zero.
func reportError(r *core.RunReport) error {
	if r.Status == core.StatusCompleted {
		return nil
	}
	return fmt.Errorf("run %s finished with status %s: %d of %d batches failed",
		shortID(r.RunID), r.Status, r.BatchesFailed(), r.BatchesTotal())
}
