// Package batcher partitions a change set into bounded-size batches.
package batcher

import (
	"fmt"

	"github.com/sevigo/datasync/internal/core"
)

// DefaultMaxBatchSize is used when no batch size is configured.
const DefaultMaxBatchSize = 200

// Split slices the change set into ordered batches of at most maxBatchSize
// files each. Slicing is strictly sequential: concatenating the returned
// batches in order reproduces the input exactly, and the last batch may be
// smaller than maxBatchSize. An empty change set yields zero batches.
func Split(cs core.ChangeSet, maxBatchSize int) ([]core.Batch, error) {
	if maxBatchSize <= 0 {
		return nil, fmt.Errorf("%w: max batch size must be positive, got %d", core.ErrValidation, maxBatchSize)
	}

	var batches []core.Batch
	for start := 0; start < len(cs); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(cs) {
			end = len(cs)
		}
		batches = append(batches, core.Batch{
			Seq:   len(batches) + 1,
			Files: cs[start:end],
		})
	}
	return batches, nil
}
