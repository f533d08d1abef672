package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/models"
)

func testChunks(n int) []models.Chunk {
	chunks := make([]models.Chunk, n)
	for i := range chunks {
		chunks[i] = models.Chunk{Text: "chunk " + string(rune('a'+i)), PageNumber: 1, ChunkID: i}
	}
	return chunks
}

func TestFlat_BuildEmpty(t *testing.T) {
	err := NewFlat().Build(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBuild)
}

func TestFlat_BuildLengthMismatch(t *testing.T) {
	err := NewFlat().Build(context.Background(), testChunks(2), [][]float32{{1, 0}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyBuild)
}

func TestFlat_SearchBeforeBuild(t *testing.T) {
	_, err := NewFlat().Search(context.Background(), []float32{1, 0}, 3)
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestFlat_SearchRanking(t *testing.T) {
	ctx := context.Background()
	f := NewFlat()
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.6, 0.8},
	}
	require.NoError(t, f.Build(ctx, testChunks(3), vectors))

	results, err := f.Search(ctx, []float32{0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 1, results[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Score, float32(-1))
		assert.LessOrEqual(t, res.Score, float32(1))
	}
}

func TestFlat_SearchDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	f := NewFlat()
	require.NoError(t, f.Build(ctx, testChunks(2), [][]float32{{1, 0}, {0, 1}}))

	_, err := f.Search(ctx, []float32{1, 0, 0}, 2)
	assert.ErrorContains(t, err, "dimension")

	_, err = f.Search(ctx, []float32{1}, 2)
	assert.ErrorContains(t, err, "dimension")
}

func TestFlat_TopKClampedToCount(t *testing.T) {
	ctx := context.Background()
	f := NewFlat()
	require.NoError(t, f.Build(ctx, testChunks(2), [][]float32{{1, 0}, {0, 1}}))

	results, err := f.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestFlat_TiesBreakToLowerChunkID(t *testing.T) {
	ctx := context.Background()
	f := NewFlat()
	vectors := [][]float32{{0.6, 0.8}, {0.6, 0.8}, {1, 0}}
	require.NoError(t, f.Build(ctx, testChunks(3), vectors))

	results, err := f.Search(ctx, []float32{0.6, 0.8}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Chunk.ChunkID)
	assert.Equal(t, 1, results[1].Chunk.ChunkID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestFlat_BuildReplacesPriorState(t *testing.T) {
	ctx := context.Background()
	f := NewFlat()
	require.NoError(t, f.Build(ctx, testChunks(3), [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}))
	require.NoError(t, f.Build(ctx, testChunks(1), [][]float32{{0, 1}}))

	results, err := f.Search(ctx, []float32{0, 1}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFlat_PersistRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f := NewFlat()
	vectors := [][]float32{{1, 0}, {0, 1}, {0.6, 0.8}}
	require.NoError(t, f.Build(ctx, testChunks(3), vectors))
	require.NoError(t, f.Persist(dir))

	restored := NewFlat()
	require.NoError(t, restored.Restore(dir))

	query := []float32{0.8, 0.6}
	want, err := f.Search(ctx, query, 3)
	require.NoError(t, err)
	got, err := restored.Search(ctx, query, 3)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Chunk, got[i].Chunk)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-6)
	}
}

func TestFlat_RestoreMissingArtifacts(t *testing.T) {
	assert.ErrorIs(t, NewFlat().Restore(t.TempDir()), ErrNotFound)
}

func TestFlat_RestoreMissingChunkArtifact(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f := NewFlat()
	require.NoError(t, f.Build(ctx, testChunks(1), [][]float32{{1, 0}}))
	require.NoError(t, f.Persist(dir))

	// drop one of the two artifacts
	require.NoError(t, os.Remove(filepath.Join(dir, chunksFileName)))
	assert.ErrorIs(t, NewFlat().Restore(dir), ErrNotFound)
}

func TestFlat_PersistBeforeBuild(t *testing.T) {
	assert.ErrorIs(t, NewFlat().Persist(t.TempDir()), ErrNotBuilt)
}
