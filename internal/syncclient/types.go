package syncclient

import "github.com/sevigo/datasync/internal/core"

// BatchEntry is one file in a batch request body.
type BatchEntry struct {
	Path      string `json:"path"`
	ContentID string `json:"content_id"`
	Content   string `json:"content"`
}

// BatchRequest is the body POSTed to the sync endpoint for one batch. Seq
// increases monotonically within a run so the receiver can order and
// deduplicate deliveries; resending an identical batch is a no-op on the
// receiver side.
type BatchRequest struct {
	RunID string       `json:"run_id"`
	Seq   int          `json:"seq"`
	Files []BatchEntry `json:"files"`
}

// BatchResponse is the sync endpoint's reply. The per-file breakdown is
// optional; when present it is surfaced on the SyncResult.
type BatchResponse struct {
	Status string            `json:"status,omitempty"`
	Error  string            `json:"error,omitempty"`
	Files  []core.FileStatus `json:"files,omitempty"`
}
