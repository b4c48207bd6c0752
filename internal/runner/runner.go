// Package runner orchestrates a single sync run: resolve the change set,
// split it into batches and deliver them sequentially, then aggregate the
// per-batch outcomes into a run report.
package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/datasync/internal/batcher"
	"github.com/sevigo/datasync/internal/core"
)

// Resolver produces the change set for a run.
type Resolver interface {
	Resolve(ctx context.Context, spec core.ResolveSpec) (core.ChangeSet, error)
}

// BatchSender delivers one batch and reports its outcome.
type BatchSender interface {
	SendBatch(ctx context.Context, runID string, batch core.Batch) core.SyncResult
}

// Options control batching and the failure policy of a run.
type Options struct {
	MaxBatchSize int
	// FailFast halts the run on the first failed batch instead of
	// continuing with the remaining batches.
	FailFast bool
}

// Runner executes sync runs. Batches are dispatched strictly sequentially;
// cancellation is checked before each dispatch, so an in-flight request is
// never interrupted mid-call and cancellation takes effect at the next
// batch boundary.
type Runner struct {
	resolver Resolver
	sender   BatchSender
	opts     Options
	logger   *slog.Logger
}

// New creates a Runner. A non-positive MaxBatchSize falls back to the
// batcher default.
func New(resolver Resolver, sender BatchSender, opts Options, logger *slog.Logger) *Runner {
	if opts.MaxBatchSize == 0 {
		opts.MaxBatchSize = batcher.DefaultMaxBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		resolver: resolver,
		sender:   sender,
		opts:     opts,
		logger:   logger,
	}
}

// Run executes one sync run for the given spec. A non-nil error is
// returned only for fatal conditions (resolution or validation failures,
// cancellation); per-batch failures are recorded in the report and
// reflected in its status.
func (r *Runner) Run(ctx context.Context, spec core.ResolveSpec) (*core.RunReport, error) {
	report := &core.RunReport{
		RunID:     uuid.NewString(),
		Mode:      spec.Mode(),
		StartedAt: time.Now().UTC(),
	}
	if inc, ok := spec.(core.Incremental); ok {
		report.BaseRef = inc.BaseRef
		report.TargetRef = inc.TargetRef
	}

	log := r.logger.With("run_id", report.RunID, "mode", report.Mode)
	log.Info("starting sync run")

	cs, err := r.resolver.Resolve(ctx, spec)
	if err != nil {
		return r.finish(report, core.StatusFailed, log), err
	}

	batches, err := batcher.Split(cs, r.opts.MaxBatchSize)
	if err != nil {
		return r.finish(report, core.StatusFailed, log), err
	}

	if len(batches) == 0 {
		log.Info("change set is empty, nothing to sync")
		return r.finish(report, core.StatusCompleted, log), nil
	}

	log.Info("dispatching batches",
		"files", len(cs),
		"batches", len(batches),
		"max_batch_size", r.opts.MaxBatchSize,
	)

	var cancelled bool
	for _, batch := range batches {
		// Cooperative checkpoint before each dispatch.
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		result := r.sender.SendBatch(ctx, report.RunID, batch)
		report.Results = append(report.Results, result)

		if result.Failed() {
			log.Error("batch failed",
				"seq", batch.Seq,
				"files", result.Files,
				"kind", result.Kind,
				"attempts", result.Attempts,
				"error", result.Err,
			)
			if r.opts.FailFast {
				log.Warn("fail-fast is set, halting run", "remaining_batches", len(batches)-batch.Seq)
				break
			}
			continue
		}

		log.Info("batch delivered", "seq", batch.Seq, "files", result.Files)
		for _, f := range batch.Files {
			report.SyncedFiles = append(report.SyncedFiles, f.Path)
		}
	}

	status := runStatus(report, len(batches))
	r.finish(report, status, log)
	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// runStatus derives the terminal state from the recorded results:
// Completed when every batch succeeded, PartiallyFailed when at least one
// batch succeeded alongside failures or unattempted batches, Failed when
// nothing succeeded.
func runStatus(report *core.RunReport, totalBatches int) core.RunStatus {
	attempted := len(report.Results)
	failed := report.BatchesFailed()
	succeeded := attempted - failed

	switch {
	case failed == 0 && attempted == totalBatches:
		return core.StatusCompleted
	case succeeded > 0:
		return core.StatusPartiallyFailed
	default:
		return core.StatusFailed
	}
}

func (r *Runner) finish(report *core.RunReport, status core.RunStatus, log *slog.Logger) *core.RunReport {
	report.Status = status
	report.FinishedAt = time.Now().UTC()
	log.Info("sync run finished",
		"status", report.Status,
		"batches_total", report.BatchesTotal(),
		"batches_failed", report.BatchesFailed(),
		"files_attempted", report.FilesAttempted(),
		"files_failed", report.FilesFailed(),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	return report
}
