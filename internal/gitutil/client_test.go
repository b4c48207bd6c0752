package gitutil

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/datasync/internal/core"
)

func testClient() *Client {
	return NewClient(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func commitFile(t *testing.T, path string, wt *git.Worktree, name, content string) string {
	t.Helper()
	full := filepath.Join(path, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	_, err := wt.Add(name)
	require.NoError(t, err)
	sha, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return sha.String()
}

func TestDiff_ClassifiesActions(t *testing.T) {
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := commitFile(t, path, wt, "data/keep.json", `{"v":1}`)
	commitFile(t, path, wt, "data/new.json", `{"v":1}`)
	target := commitFile(t, path, wt, "data/keep.json", `{"v":2}`)

	c := testClient()
	added, modified, deleted, err := c.Diff(repo, base, target)
	require.NoError(t, err)

	require.Len(t, added, 1)
	assert.Equal(t, "data/new.json", added[0].Path)
	assert.NotEmpty(t, added[0].BlobHash)

	require.Len(t, modified, 1)
	assert.Equal(t, "data/keep.json", modified[0].Path)

	assert.Empty(t, deleted)
}

func TestDiff_Deletions(t *testing.T) {
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	base := commitFile(t, path, wt, "data/gone.json", `{"v":1}`)
	_, err = wt.Remove("data/gone.json")
	require.NoError(t, err)
	targetSHA, err := wt.Commit("remove", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	c := testClient()
	added, modified, deleted, err := c.Diff(repo, base, targetSHA.String())
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Empty(t, modified)
	require.Len(t, deleted, 1)
	assert.Equal(t, "data/gone.json", deleted[0].Path)
}

func TestResolveRefAndListTree(t *testing.T) {
	path := t.TempDir()
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	sha := commitFile(t, path, wt, "data/a.json", `{"v":1}`)

	c := testClient()
	head, err := c.ResolveRef(repo, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, sha, head)

	files, err := c.ListTree(repo, head)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "data/a.json", files[0].Path)

	_, err = c.ResolveRef(repo, "no-such-branch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrResolution))
}

func TestOpen_MissingRepo(t *testing.T) {
	_, err := testClient().Open(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrResolution))
}
