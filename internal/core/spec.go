package core

// Run modes, as reported and persisted.
const (
	ModeIncremental = "incremental"
	ModeResync      = "resync"
)

// ResolveSpec selects the resolution strategy for a run. Exactly one
// strategy is used per run: a diff between two refs, or a full listing of
// the data root. The sealed interface keeps the variant set closed so the
// resolver can switch exhaustively.
type ResolveSpec interface {
	Mode() string
	isResolveSpec()
}

// Incremental resolves the files whose content differs between BaseRef
// (the last successfully synced commit, persisted externally) and
// TargetRef (the current head). Deletions are excluded.
type Incremental struct {
	BaseRef   string
	TargetRef string
}

func (Incremental) Mode() string   { return ModeIncremental }
func (Incremental) isResolveSpec() {}

// ForceResync bypasses diffing and lists all matching files under the data
// root. Scope optionally restricts the listing to one YYYY/MM partition;
// a scope that matches nothing resolves to an empty ChangeSet.
type ForceResync struct {
	Scope string
}

func (ForceResync) Mode() string   { return ModeResync }
func (ForceResync) isResolveSpec() {}
