// Package app initializes and orchestrates the main components of the
// datasync tool. It wires together configuration, the state store, the
// resolver, the sync client and the run orchestration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/sevigo/datasync/internal/config"
	"github.com/sevigo/datasync/internal/core"
	"github.com/sevigo/datasync/internal/db"
	"github.com/sevigo/datasync/internal/gitutil"
	"github.com/sevigo/datasync/internal/resolver"
	"github.com/sevigo/datasync/internal/runner"
	"github.com/sevigo/datasync/internal/stats"
	"github.com/sevigo/datasync/internal/storage"
	"github.com/sevigo/datasync/internal/syncclient"
)

// App holds the main application components.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Store
	git      *gitutil.Client
	runner   *runner.Runner
	reporter *stats.Reporter
	repoKey  string
}

// NewApp sets up the application with all its dependencies and returns a
// cleanup function that closes the state database.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, func(), error) {
	// Per-repo overrides are optional; a missing file keeps the env config.
	if rc, err := config.LoadRepoConfig(cfg.RepoPath); err == nil {
		rc.Apply(cfg)
		logger.Info("applied repo config overrides from .datasync.yml")
	} else if !errors.Is(err, config.ErrRepoConfigNotFound) {
		return nil, nil, err
	}

	dbConn, closeDB, err := db.NewDatabase(cfg.StateDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}

	repoKey, err := filepath.Abs(cfg.RepoPath)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("resolve repo path: %w", err)
	}

	gitClient := gitutil.NewClient(logger)
	res := resolver.New(gitClient, cfg.RepoPath, cfg.DataRoot, cfg.FilePattern, logger)
	sender := syncclient.New(syncclient.Config{
		Endpoint:       cfg.Endpoint,
		Token:          cfg.Token,
		TokenHeader:    cfg.TokenHeader,
		Timeout:        cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
	}, &syncclient.WorktreeSource{Root: cfg.RepoPath}, logger)

	a := &App{
		cfg:    cfg,
		logger: logger,
		store:  storage.NewStore(dbConn.DB),
		git:    gitClient,
		runner: runner.New(res, sender, runner.Options{
			MaxBatchSize: cfg.MaxBatchSize,
			FailFast:     cfg.FailFast,
		}, logger),
		reporter: stats.NewReporter(cfg.RepoPath, cfg.DataRoot, logger),
		repoKey:  repoKey,
	}
	return a, closeDB, nil
}

// Sync runs an incremental sync from baseRef to targetRef. An empty
// targetRef means HEAD; an empty baseRef is loaded from the state store,
// and when no previous run is recorded the sync falls back to a full
// resync so the first run delivers the whole data root.
func (a *App) Sync(ctx context.Context, baseRef, targetRef string) (*core.RunReport, error) {
	if targetRef == "" {
		targetRef = "HEAD"
	}
	if baseRef == "" {
		ref, err := a.store.LastSyncedRef(ctx, a.repoKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			a.logger.Warn("no last synced ref recorded, falling back to full resync")
			return a.Resync(ctx, "")
		case err != nil:
			return nil, fmt.Errorf("load last synced ref: %w", err)
		}
		baseRef = ref
	}

	targetSHA, err := a.resolveSHA(targetRef)
	if err != nil {
		return nil, err
	}

	report, runErr := a.runner.Run(ctx, core.Incremental{BaseRef: baseRef, TargetRef: targetRef})
	a.finishRun(ctx, report, targetSHA)
	return report, runErr
}

// Resync runs a force-resync of the data root, optionally limited to one
// YYYY/MM partition.
func (a *App) Resync(ctx context.Context, scope string) (*core.RunReport, error) {
	targetSHA, err := a.resolveSHA("HEAD")
	if err != nil {
		return nil, err
	}

	report, runErr := a.runner.Run(ctx, core.ForceResync{Scope: scope})
	report.TargetRef = targetSHA
	a.finishRun(ctx, report, targetSHA)
	return report, runErr
}

// UpdateStats rebuilds the stats counters and report from the data root.
func (a *App) UpdateStats() error {
	return a.reporter.Rebuild()
}

// LastSyncedRef returns the persisted last synced reference, or "" when
// no run has completed yet.
func (a *App) LastSyncedRef(ctx context.Context) (string, error) {
	ref, err := a.store.LastSyncedRef(ctx, a.repoKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return ref, err
}

// RecentRuns returns the most recent persisted runs for this repository.
func (a *App) RecentRuns(ctx context.Context, limit int) ([]*storage.Run, error) {
	return a.store.RecentRuns(ctx, a.repoKey, limit)
}

// finishRun persists the run record and, when the run completed, advances
// the last synced reference and updates the stats counters. Persistence
// failures are logged rather than escalated: the sync itself already
// happened and the report carries the authoritative outcome.
func (a *App) finishRun(ctx context.Context, report *core.RunReport, targetSHA string) {
	// The record must be written even when the run was cancelled.
	ctx = context.WithoutCancel(ctx)
	run := &storage.Run{
		ID:            report.RunID,
		Repo:          a.repoKey,
		Mode:          report.Mode,
		BaseRef:       report.BaseRef,
		TargetRef:     report.TargetRef,
		Status:        string(report.Status),
		FilesTotal:    report.FilesAttempted(),
		FilesSynced:   report.FilesSucceeded(),
		FilesFailed:   report.FilesFailed(),
		BatchesTotal:  report.BatchesTotal(),
		BatchesFailed: report.BatchesFailed(),
		StartedAt:     report.StartedAt,
		FinishedAt:    report.FinishedAt,
	}
	if err := a.store.RecordRun(ctx, run); err != nil {
		a.logger.Error("failed to record run", "run_id", report.RunID, "error", err)
	}

	if report.Status != core.StatusCompleted {
		return
	}

	if err := a.store.SetLastSyncedRef(ctx, a.repoKey, targetSHA); err != nil {
		a.logger.Error("failed to advance last synced ref", "ref", targetSHA, "error", err)
	}

	switch report.Mode {
	case core.ModeResync:
		if err := a.reporter.Rebuild(); err != nil {
			a.logger.Error("failed to rebuild stats", "error", err)
		}
	default:
		if err := a.reporter.Update(report.SyncedFiles); err != nil {
			a.logger.Error("failed to update stats", "error", err)
		}
	}
}

func (a *App) resolveSHA(ref string) (string, error) {
	repo, err := a.git.Open(a.cfg.RepoPath)
	if err != nil {
		return "", err
	}
	return a.git.ResolveRef(repo, ref)
}
