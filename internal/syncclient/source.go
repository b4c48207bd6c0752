package syncclient

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sevigo/datasync/internal/core"
)

// ContentSource supplies file content for upload. Content retrieval is
// separated from delivery so tests and alternative storage backends can
// substitute their own source.
type ContentSource interface {
	Content(ref core.FileRef) (string, error)
}

// WorktreeSource reads file content from the checked-out repository
// worktree, which the CI runner has placed at the target commit.
type WorktreeSource struct {
	Root string
}

func (s *WorktreeSource) Content(ref core.FileRef) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(ref.Path)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref.Path, err)
	}
	return string(data), nil
}
