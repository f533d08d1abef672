package retriever

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/index"
	"docqa/internal/models"
)

// stubEmbedder maps known texts to fixed vectors, deliberately
// unnormalized to prove the query path normalizes.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		out := make([]float32, len(v))
		copy(out, v)
		return out, nil
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func buildStore(t *testing.T) *index.Flat {
	t.Helper()
	store := index.NewFlat()
	chunks := []models.Chunk{
		{Text: "revenue grew to $5M", PageNumber: 1, ChunkID: 0},
		{Text: "headcount stayed flat", PageNumber: 2, ChunkID: 1},
	}
	vectors := [][]float32{
		{0.6, 0.8},
		{1, 0},
	}
	require.NoError(t, store.Build(context.Background(), chunks, vectors))
	return store
}

func TestRetrieve_RanksByCosineSimilarity(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		// same direction as chunk 0 but unnormalized
		"revenue question": {3, 4},
	}}
	r := New(embedder, buildStore(t))

	results, err := r.Retrieve(context.Background(), "revenue question", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetrieve_EmbedderFailure(t *testing.T) {
	r := New(&stubEmbedder{err: errors.New("embedder down")}, buildStore(t))
	_, err := r.Retrieve(context.Background(), "anything", 2)
	assert.Error(t, err)
}

func TestRetrieve_StoreNotBuilt(t *testing.T) {
	r := New(&stubEmbedder{}, index.NewFlat())
	_, err := r.Retrieve(context.Background(), "anything", 2)
	assert.ErrorIs(t, err, index.ErrNotBuilt)
}

func TestSnippetText(t *testing.T) {
	assert.Equal(t, "short", snippetText("short", 200))

	long := strings.Repeat("é", 250)
	got := snippetText(long, 200)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}
