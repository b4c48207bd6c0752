package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/datasync/internal/db"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	database, cleanup, err := db.NewDatabase(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(database.DB)
}

func TestLastSyncedRef(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	_, err := s.LastSyncedRef(ctx, "/repo/a")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetLastSyncedRef(ctx, "/repo/a", "aaa111"))
	ref, err := s.LastSyncedRef(ctx, "/repo/a")
	require.NoError(t, err)
	assert.Equal(t, "aaa111", ref)

	// Upsert replaces the previous ref.
	require.NoError(t, s.SetLastSyncedRef(ctx, "/repo/a", "bbb222"))
	ref, err = s.LastSyncedRef(ctx, "/repo/a")
	require.NoError(t, err)
	assert.Equal(t, "bbb222", ref)

	// Repos are independent.
	_, err = s.LastSyncedRef(ctx, "/repo/b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordAndRecentRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		run := &Run{
			ID:           string(rune('a' + i)),
			Repo:         "/repo/a",
			Mode:         "incremental",
			BaseRef:      "base",
			TargetRef:    "target",
			Status:       "completed",
			FilesTotal:   10 + i,
			FilesSynced:  10 + i,
			BatchesTotal: 1,
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			FinishedAt:   base.Add(time.Duration(i)*time.Hour + time.Minute),
		}
		require.NoError(t, s.RecordRun(ctx, run))
	}
	require.NoError(t, s.RecordRun(ctx, &Run{
		ID: "other", Repo: "/repo/b", Mode: "resync", Status: "failed",
		StartedAt: base, FinishedAt: base,
	}))

	runs, err := s.RecentRuns(ctx, "/repo/a", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID, "most recent first")
	assert.Equal(t, "b", runs[1].ID)
	assert.Equal(t, 12, runs[0].FilesTotal)

	all, err := s.RecentRuns(ctx, "/repo/a", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit falls back to the default")
}

func TestRecentRuns_Empty(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.RecentRuns(t.Context(), "/repo/none", 5)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
