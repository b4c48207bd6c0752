// Package gitutil provides read-only access to the local Git repository
// that holds the crawler output: ref resolution, tree diffs and tree
// listings. The repository is expected to be checked out by the CI runner
// before a sync run starts; this package never clones or writes.
package gitutil

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/sevigo/datasync/internal/core"
)

// Change is a single path affected between two trees, with the blob hash
// observed on the target side (or the base side for deletions).
type Change struct {
	Path     string
	BlobHash string
}

// Client handles interacting with a local Git repository.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// Open opens a Git repository at a given path.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open repository at %s: %w", core.ErrResolution, path, err)
	}
	return repo, nil
}

// ResolveRef resolves a revision (branch name, tag, SHA, "HEAD") to a
// full commit hash.
func (c *Client) ResolveRef(repo *git.Repository, ref string) (string, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("%w: resolve revision %q: %w", core.ErrResolution, ref, err)
	}
	return hash.String(), nil
}

// Diff calculates the paths that differ between two commits, split by action.
func (c *Client) Diff(repo *git.Repository, baseSHA, targetSHA string) (added, modified, deleted []Change, err error) {
	baseTree, err := c.commitTree(repo, baseSHA)
	if err != nil {
		return nil, nil, nil, err
	}
	targetTree, err := c.commitTree(repo, targetSHA)
	if err != nil {
		return nil, nil, nil, err
	}

	changes, err := object.DiffTree(baseTree, targetTree)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: diff trees %s..%s: %w", core.ErrResolution, baseSHA, targetSHA, err)
	}

	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			c.Logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}

		switch action {
		case merkletrie.Insert:
			added = append(added, Change{Path: change.To.Name, BlobHash: change.To.TreeEntry.Hash.String()})
		case merkletrie.Modify:
			modified = append(modified, Change{Path: change.To.Name, BlobHash: change.To.TreeEntry.Hash.String()})
		case merkletrie.Delete:
			deleted = append(deleted, Change{Path: change.From.Name, BlobHash: change.From.TreeEntry.Hash.String()})
		}
	}
	return added, modified, deleted, nil
}

// ListTree walks the full tree of a commit and returns every file with its
// blob hash. Filtering by root and pattern is the resolver's concern.
func (c *Client) ListTree(repo *git.Repository, sha string) ([]Change, error) {
	tree, err := c.commitTree(repo, sha)
	if err != nil {
		return nil, err
	}

	var files []Change
	err = tree.Files().ForEach(func(f *object.File) error {
		files = append(files, Change{Path: f.Name, BlobHash: f.Hash.String()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list tree %s: %w", core.ErrResolution, sha, err)
	}
	return files, nil
}

func (c *Client) commitTree(repo *git.Repository, sha string) (*object.Tree, error) {
	commit, err := repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("%w: commit object %s: %w", core.ErrResolution, sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("%w: tree of commit %s: %w", core.ErrResolution, sha, err)
	}
	return tree, nil
}
