// Package storage persists the externally-owned sync state: the last
// successfully synced reference per repository and a history of runs. The
// resolver never reads this state directly; the caller loads the base ref
// from here and passes it in explicitly.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Run is one persisted sync run.
type Run struct {
	ID            string    `db:"id"`
	Repo          string    `db:"repo"`
	Mode          string    `db:"mode"`
	BaseRef       string    `db:"base_ref"`
	TargetRef     string    `db:"target_ref"`
	Status        string    `db:"status"`
	FilesTotal    int       `db:"files_total"`
	FilesSynced   int       `db:"files_synced"`
	FilesFailed   int       `db:"files_failed"`
	BatchesTotal  int       `db:"batches_total"`
	BatchesFailed int       `db:"batches_failed"`
	StartedAt     time.Time `db:"started_at"`
	FinishedAt    time.Time `db:"finished_at"`
}

// Store defines the interface for all state database operations.
type Store interface {
	// LastSyncedRef returns the last successfully synced reference for
	// the repository, or ErrNotFound when no run has completed yet.
	LastSyncedRef(ctx context.Context, repo string) (string, error)
	SetLastSyncedRef(ctx context.Context, repo, ref string) error
	RecordRun(ctx context.Context, run *Run) error
	RecentRuns(ctx context.Context, repo string, limit int) ([]*Run, error)
}

type sqliteStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store backed by the state database.
func NewStore(db *sqlx.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) LastSyncedRef(ctx context.Context, repo string) (string, error) {
	var ref string
	err := s.db.GetContext(ctx, &ref,
		`SELECT last_synced_ref FROM sync_state WHERE repo = ?`, repo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return ref, nil
}

func (s *sqliteStore) SetLastSyncedRef(ctx context.Context, repo, ref string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_state (repo, last_synced_ref, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (repo) DO UPDATE SET
			last_synced_ref = excluded.last_synced_ref,
			updated_at      = excluded.updated_at`,
		repo, ref, time.Now().UTC())
	return err
}

func (s *sqliteStore) RecordRun(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, repo, mode, base_ref, target_ref, status,
			files_total, files_synced, files_failed,
			batches_total, batches_failed, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Repo, run.Mode, run.BaseRef, run.TargetRef, run.Status,
		run.FilesTotal, run.FilesSynced, run.FilesFailed,
		run.BatchesTotal, run.BatchesFailed, run.StartedAt, run.FinishedAt)
	return err
}

func (s *sqliteStore) RecentRuns(ctx context.Context, repo string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []*Run
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, repo, mode, base_ref, target_ref, status,
		       files_total, files_synced, files_failed,
		       batches_total, batches_failed, started_at, finished_at
		FROM runs
		WHERE repo = ?
		ORDER BY started_at DESC
		LIMIT ?`, repo, limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}
