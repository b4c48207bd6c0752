package stats

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Reporter updates the counters and markdown report after a run.
type Reporter struct {
	repoPath string
	dataRoot string
	logger   *slog.Logger
}

// NewReporter creates a Reporter for the repository at repoPath.
func NewReporter(repoPath, dataRoot string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{repoPath: repoPath, dataRoot: dataRoot, logger: logger}
}

// Update folds the paths synced by the latest run into the counters and
// rewrites both the counts document and the markdown report. Empty
// counters trigger a one-time full scan of the data root first.
func (r *Reporter) Update(syncedPaths []string) error {
	countsPath := filepath.Join(r.repoPath, CountsFileName)
	months := LoadCounts(countsPath)

	if len(months) == 0 {
		scanned, err := ScanAll(r.repoPath, r.dataRoot)
		if err != nil {
			return err
		}
		if len(scanned) > 0 {
			r.logger.Info("initialized stats counters from full scan", "months", len(scanned))
		}
		months = scanned
	}

	added, addedBytes := ApplyIncremental(r.repoPath, r.dataRoot, months, syncedPaths)
	r.logger.Info("updated stats counters", "new_files", added, "new_bytes", addedBytes)

	now := utcNowISO()
	meta := Meta{
		UpdatedAt:       now,
		LastRunFinished: now,
		LastRunNewFiles: added,
		Source:          r.dataRoot + " + run report",
	}
	if err := SaveCounts(countsPath, months, meta); err != nil {
		return err
	}

	report := RenderMarkdown(months, added, now)
	reportPath := filepath.Join(r.repoPath, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Rebuild discards the counters and rebuilds them from a full scan of the
// data root. Used after a force-resync, when incremental accounting would
// double-count already-synced files.
func (r *Reporter) Rebuild() error {
	months, err := ScanAll(r.repoPath, r.dataRoot)
	if err != nil {
		return err
	}
	r.logger.Info("rebuilt stats counters from full scan", "months", len(months))

	now := utcNowISO()
	meta := Meta{
		UpdatedAt:       now,
		LastRunFinished: now,
		Source:          r.dataRoot + " full scan",
	}
	if err := SaveCounts(filepath.Join(r.repoPath, CountsFileName), months, meta); err != nil {
		return err
	}

	report := RenderMarkdown(months, 0, now)
	if err := os.WriteFile(filepath.Join(r.repoPath, ReportFileName), []byte(report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown renders the monthly breakdown report.
func RenderMarkdown(months map[string]MonthStat, lastRunNew int, lastRunFinished string) string {
	var totalFiles int
	var totalBytes int64
	for _, st := range months {
		totalFiles += st.Files
		totalBytes += st.Bytes
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	var b strings.Builder
	fmt.Fprintf(&b, "Updated: %s\n\n", utcNowISO())
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total JSON files: **%s**\n", humanize.Comma(int64(totalFiles)))
	fmt.Fprintf(&b, "- Total size: **%s**\n", humanize.IBytes(uint64(totalBytes)))
	fmt.Fprintf(&b, "- Last run new files: **%s**\n", humanize.Comma(int64(lastRunNew)))
	fmt.Fprintf(&b, "- Last run finished: **%s**\n\n", lastRunFinished)
	b.WriteString("## Monthly breakdown\n\n")
	b.WriteString("| Year-Month | Files | Size |\n")
	b.WriteString("|---:|---:|---:|\n")
	for _, k := range keys {
		st := months[k]
		fmt.Fprintf(&b, "| %s | %s | %s |\n", k, humanize.Comma(int64(st.Files)), humanize.IBytes(uint64(st.Bytes)))
	}
	b.WriteString("\n## Notes\n")
	b.WriteString("- Counts are maintained incrementally in `" + CountsFileName + "` from each run's synced file list.\n")
	b.WriteString("- If counts are empty or missing, a one-time full scan of the data root initializes the totals.\n")
	return b.String()
}
