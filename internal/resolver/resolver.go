// Package resolver determines the set of files to synchronize for one run,
// either by diffing two commits (incremental mode) or by listing the data
// root at the current head (force-resync mode).
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sevigo/datasync/internal/core"
	"github.com/sevigo/datasync/internal/gitutil"
)

// DefaultFilePattern matches the crawler's JSON output anywhere under the
// data root.
const DefaultFilePattern = "**/*.json"

// scopeRegexp validates the optional YYYY/MM resync scope.
var scopeRegexp = regexp.MustCompile(`^\d{4}/\d{2}$`)

// Resolver produces deterministic, path-ordered change sets from a local
// repository. The same inputs always yield the same change set, so batch
// contents are reproducible across retries.
type Resolver struct {
	git      *gitutil.Client
	repoPath string
	dataRoot string
	pattern  string
	logger   *slog.Logger
}

// New creates a Resolver for the repository at repoPath. dataRoot is the
// directory holding the synchronized files (e.g. "by_created") and pattern
// is a doublestar glob applied relative to it.
func New(git *gitutil.Client, repoPath, dataRoot, pattern string, logger *slog.Logger) *Resolver {
	if pattern == "" {
		pattern = DefaultFilePattern
	}
	return &Resolver{
		git:      git,
		repoPath: repoPath,
		dataRoot: strings.Trim(dataRoot, "/"),
		pattern:  pattern,
		logger:   logger,
	}
}

// Resolve produces the change set for the given spec. An empty change set
// is a valid outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, spec core.ResolveSpec) (core.ChangeSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch s := spec.(type) {
	case core.Incremental:
		return r.resolveIncremental(s)
	case core.ForceResync:
		return r.resolveForceResync(s)
	default:
		return nil, fmt.Errorf("%w: unknown resolve mode %q", core.ErrValidation, spec.Mode())
	}
}

func (r *Resolver) resolveIncremental(spec core.Incremental) (core.ChangeSet, error) {
	if spec.BaseRef == "" || spec.TargetRef == "" {
		return nil, fmt.Errorf("%w: incremental resolve requires base and target refs", core.ErrValidation)
	}

	repo, err := r.git.Open(r.repoPath)
	if err != nil {
		return nil, err
	}
	baseSHA, err := r.git.ResolveRef(repo, spec.BaseRef)
	if err != nil {
		return nil, err
	}
	targetSHA, err := r.git.ResolveRef(repo, spec.TargetRef)
	if err != nil {
		return nil, err
	}

	added, modified, deleted, err := r.git.Diff(repo, baseSHA, targetSHA)
	if err != nil {
		return nil, err
	}
	// Deletions are not propagated to the receiver.
	if len(deleted) > 0 {
		r.logger.Debug("ignoring deleted files", "count", len(deleted))
	}

	cs := r.filter(append(added, modified...), "")
	r.logger.Info("resolved incremental change set",
		"base", baseSHA, "target", targetSHA, "files", len(cs))
	return cs, nil
}

func (r *Resolver) resolveForceResync(spec core.ForceResync) (core.ChangeSet, error) {
	if spec.Scope != "" && !scopeRegexp.MatchString(spec.Scope) {
		return nil, fmt.Errorf("%w: resync scope must be YYYY/MM, got %q", core.ErrValidation, spec.Scope)
	}

	repo, err := r.git.Open(r.repoPath)
	if err != nil {
		return nil, err
	}
	headSHA, err := r.git.ResolveRef(repo, "HEAD")
	if err != nil {
		return nil, err
	}

	files, err := r.git.ListTree(repo, headSHA)
	if err != nil {
		return nil, err
	}

	cs := r.filter(files, spec.Scope)
	r.logger.Info("resolved force-resync change set",
		"head", headSHA, "scope", spec.Scope, "files", len(cs))
	return cs, nil
}

// filter keeps changes under the data root (and scope, when given) whose
// root-relative path matches the configured pattern, then sorts by path
// and drops duplicates.
func (r *Resolver) filter(changes []gitutil.Change, scope string) core.ChangeSet {
	var cs core.ChangeSet
	for _, ch := range changes {
		rel, ok := r.rootRelative(ch.Path)
		if !ok {
			continue
		}
		if scope != "" && !strings.HasPrefix(rel, scope+"/") {
			continue
		}
		if matched, err := doublestar.Match(r.pattern, rel); err != nil || !matched {
			continue
		}
		cs = append(cs, core.FileRef{Path: ch.Path, ContentID: ch.BlobHash})
	}

	sort.Slice(cs, func(i, j int) bool { return cs[i].Path < cs[j].Path })

	deduped := cs[:0]
	for i, ref := range cs {
		if i > 0 && ref.Path == cs[i-1].Path {
			continue
		}
		deduped = append(deduped, ref)
	}
	return deduped
}

func (r *Resolver) rootRelative(path string) (string, bool) {
	if r.dataRoot == "" || r.dataRoot == "." {
		return path, true
	}
	rel, ok := strings.CutPrefix(path, r.dataRoot+"/")
	if !ok {
		return "", false
	}
	return rel, true
}
