// Package stats maintains incremental per-month counters for the crawler
// output and renders a human-readable repository report. The primary
// source of truth is the data root (<root>/YYYY/MM/*.json); counters are
// updated incrementally from each run's synced file list and initialized
// by a one-time full scan when missing.
package stats

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// CountsFileName persists the incremental counters at the repo root.
	CountsFileName = "DATASYNC_COUNTS.json"
	// ReportFileName is the rendered markdown report at the repo root.
	ReportFileName = "DATASYNC_STATS.md"
)

// MonthStat counts files and bytes for one YYYY-MM partition.
type MonthStat struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Meta describes the last counters update.
type Meta struct {
	UpdatedAt       string `json:"updated_at"`
	LastRunFinished string `json:"last_run_finished"`
	LastRunNewFiles int    `json:"last_run_new_files"`
	Source          string `json:"source"`
}

// Counts is the on-disk counters document.
type Counts struct {
	Meta   Meta                 `json:"meta"`
	Months map[string]MonthStat `json:"months"`
}

// MonthKey derives the "YYYY-MM" partition key from a repo-relative path
// like "by_created/2026/01/post.json". It returns false for paths outside
// the data root or not shaped as <root>/YYYY/MM/....
func MonthKey(dataRoot, path string) (string, bool) {
	rel, ok := strings.CutPrefix(path, strings.Trim(dataRoot, "/")+"/")
	if !ok {
		return "", false
	}
	parts := strings.Split(rel, "/")
	if len(parts) < 3 {
		return "", false
	}
	year, month := parts[0], parts[1]
	if !isDigits(year, 4) || !isDigits(month, 2) {
		return "", false
	}
	return year + "-" + month, true
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// LoadCounts reads the counters document. A missing or unreadable file
// yields empty counters so a full scan can rebuild them.
func LoadCounts(path string) map[string]MonthStat {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]MonthStat{}
	}
	var doc Counts
	if err := json.Unmarshal(data, &doc); err != nil || doc.Months == nil {
		return map[string]MonthStat{}
	}
	return doc.Months
}

// SaveCounts writes the counters document.
func SaveCounts(path string, months map[string]MonthStat, meta Meta) error {
	doc := Counts{Meta: meta, Months: months}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write counts: %w", err)
	}
	return nil
}

// ScanAll walks the data root and rebuilds the counters from scratch. A
// missing data root yields empty counters, not an error.
func ScanAll(repoPath, dataRoot string) (map[string]MonthStat, error) {
	months := map[string]MonthStat{}
	root := filepath.Join(repoPath, filepath.FromSlash(dataRoot))
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return months, nil
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		key, ok := MonthKey(dataRoot, filepath.ToSlash(rel))
		if !ok {
			return nil
		}
		st := months[key]
		st.Files++
		if info, err := d.Info(); err == nil {
			st.Bytes += info.Size()
		}
		months[key] = st
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan data root: %w", err)
	}
	return months, nil
}

// ApplyIncremental adds the given repo-relative paths to the counters and
// returns how many files and bytes were accounted. Paths that no longer
// exist on disk or fall outside the data root layout are skipped.
func ApplyIncremental(repoPath, dataRoot string, months map[string]MonthStat, paths []string) (int, int64) {
	var addedFiles int
	var addedBytes int64
	for _, p := range paths {
		key, ok := MonthKey(dataRoot, p)
		if !ok {
			continue
		}
		info, err := os.Stat(filepath.Join(repoPath, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		st := months[key]
		st.Files++
		st.Bytes += info.Size()
		months[key] = st
		addedFiles++
		addedBytes += info.Size()
	}
	return addedFiles, addedBytes
}

func utcNowISO() string {
	return time.Now().UTC().Truncate(time.Second).Format("2006-01-02T15:04:05Z")
}
