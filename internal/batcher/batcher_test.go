package batcher

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/datasync/internal/core"
)

func changeSet(n int) core.ChangeSet {
	cs := make(core.ChangeSet, n)
	for i := range cs {
		cs[i] = core.FileRef{
			Path:      fmt.Sprintf("by_created/2026/01/post-%04d.json", i),
			ContentID: fmt.Sprintf("blob-%04d", i),
		}
	}
	return cs
}

func TestSplit_SizesAndOrder(t *testing.T) {
	cs := changeSet(450)

	batches, err := Split(cs, 200)
	require.NoError(t, err)
	require.Len(t, batches, 3)

	assert.Len(t, batches[0].Files, 200)
	assert.Len(t, batches[1].Files, 200)
	assert.Len(t, batches[2].Files, 50)

	assert.Equal(t, 1, batches[0].Seq)
	assert.Equal(t, 2, batches[1].Seq)
	assert.Equal(t, 3, batches[2].Seq)
}

func TestSplit_ConcatenationReproducesInput(t *testing.T) {
	for _, size := range []int{1, 3, 7, 200, 1000} {
		for _, n := range []int{0, 1, 6, 7, 8, 199, 200, 201, 450} {
			cs := changeSet(n)
			batches, err := Split(cs, size)
			require.NoError(t, err)

			var got core.ChangeSet
			for _, b := range batches {
				got = append(got, b.Files...)
			}
			require.Equal(t, len(cs), len(got), "size=%d n=%d", size, n)
			for i := range cs {
				require.Equal(t, cs[i], got[i], "size=%d n=%d idx=%d", size, n, i)
			}
		}
	}
}

func TestSplit_EmptyChangeSet(t *testing.T) {
	batches, err := Split(nil, 200)
	require.NoError(t, err)
	assert.Empty(t, batches)
}

func TestSplit_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1, -200} {
		_, err := Split(changeSet(10), size)
		require.Error(t, err, "size=%d", size)
		assert.True(t, errors.Is(err, core.ErrValidation))
	}
}

func TestSplit_SequenceIsMonotonic(t *testing.T) {
	batches, err := Split(changeSet(1000), 7)
	require.NoError(t, err)
	for i, b := range batches {
		assert.Equal(t, i+1, b.Seq)
	}
}
