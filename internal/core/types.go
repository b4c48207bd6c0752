// Package core defines the domain types shared by the resolver, batcher,
// sync client and runner. These are plain data structures with no I/O so
// every other package can depend on them without pulling in transport or
// storage concerns.
package core

import "time"

// FileRef identifies a single file selected for synchronization: a path
// relative to the repository root plus the content identifier (git blob
// hash) observed at resolution time. A FileRef is immutable for the
// duration of a run.
type FileRef struct {
	Path      string `json:"path"`
	ContentID string `json:"content_id"`
}

// ChangeSet is the ordered list of files selected for one run, sorted by
// path ascending with no duplicate paths.
type ChangeSet []FileRef

// Paths returns the paths of the change set in order.
func (cs ChangeSet) Paths() []string {
	paths := make([]string, len(cs))
	for i, ref := range cs {
		paths[i] = ref.Path
	}
	return paths
}

// Batch is a bounded sub-sequence of a ChangeSet. Seq is the 1-based,
// monotonically increasing sequence number carried on the wire so the
// receiver can order and deduplicate deliveries.
type Batch struct {
	Seq   int
	Files []FileRef
}

// FileStatus is an optional per-file outcome reported by the receiver.
type FileStatus struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// SyncResult records the outcome of sending one batch.
type SyncResult struct {
	Seq      int
	Files    int
	Kind     ErrorKind
	Err      error
	PerFile  []FileStatus
	Attempts int
}

// Failed reports whether the batch delivery ultimately failed.
func (r SyncResult) Failed() bool { return r.Err != nil }

// RunStatus is the terminal state of a sync run.
type RunStatus string

const (
	// StatusCompleted means every batch was delivered successfully. An
	// empty change set completes vacuously.
	StatusCompleted RunStatus = "completed"
	// StatusPartiallyFailed means at least one batch failed but at least
	// one batch succeeded.
	StatusPartiallyFailed RunStatus = "partially_failed"
	// StatusFailed means no batch succeeded, either because resolution
	// errored, fail-fast halted the run on the first failure, or every
	// batch was rejected.
	StatusFailed RunStatus = "failed"
)

// RunReport aggregates the per-batch outcomes of a single run. It is
// created at run end, rendered to logs and the CLI, and not persisted
// beyond the run record in the state store.
type RunReport struct {
	RunID      string
	Mode       string
	BaseRef    string
	TargetRef  string
	Status     RunStatus
	Results    []SyncResult
	// SyncedFiles lists the paths of successfully delivered batches in
	// dispatch order, for the stats counters.
	SyncedFiles []string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// BatchesTotal returns the number of batches attempted or recorded.
func (r *RunReport) BatchesTotal() int { return len(r.Results) }

// BatchesFailed returns the number of batches that failed.
func (r *RunReport) BatchesFailed() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// FilesAttempted returns the total number of files across all dispatched batches.
func (r *RunReport) FilesAttempted() int {
	n := 0
	for _, res := range r.Results {
		n += res.Files
	}
	return n
}

// FilesSucceeded returns the number of files in successfully delivered batches.
func (r *RunReport) FilesSucceeded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n += res.Files
		}
	}
	return n
}

// FilesFailed returns the number of files in failed batches.
func (r *RunReport) FilesFailed() int {
	return r.FilesAttempted() - r.FilesSucceeded()
}

// FailedBatches returns the results of failed batches, for retry or inspection.
func (r *RunReport) FailedBatches() []SyncResult {
	var failed []SyncResult
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

