package index

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"docqa/internal/models"
)

const flatVectorsFileName = "vectors.gob"

// Flat is an exact inner-product index: a brute-force scan over
// L2-normalized vectors stored in chunk order. Position i in the vector
// slice always corresponds to chunks[i].
type Flat struct {
	dim     int
	vectors [][]float32
	chunks  []models.Chunk
}

func NewFlat() *Flat { return &Flat{} }

func (f *Flat) Build(_ context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return ErrEmptyBuild
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	f.dim = dim
	f.chunks = chunks
	f.vectors = vectors
	return nil
}

func (f *Flat) Search(_ context.Context, vector []float32, topK int) ([]Result, error) {
	if len(f.vectors) == 0 {
		return nil, ErrNotBuilt
	}
	if len(vector) != f.dim {
		return nil, fmt.Errorf("query vector has dimension %d, index has %d", len(vector), f.dim)
	}
	if topK > len(f.vectors) {
		topK = len(f.vectors)
	}
	if topK <= 0 {
		return nil, nil
	}

	idxs := make([]int, len(f.vectors))
	scores := make([]float32, len(f.vectors))
	for i := range f.vectors {
		idxs[i] = i
		scores[i] = dot(f.vectors[i], vector)
	}
	// Stable keeps insertion order on exact ties, which is chunk id order.
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	results := make([]Result, 0, topK)
	for _, i := range idxs[:topK] {
		results = append(results, Result{Chunk: f.chunks[i], Score: scores[i]})
	}
	return results, nil
}

type flatArtifact struct {
	Dim     int
	Vectors [][]float32
}

func (f *Flat) Persist(dir string) error {
	if len(f.vectors) == 0 {
		return ErrNotBuilt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}
	file, err := os.Create(filepath.Join(dir, flatVectorsFileName))
	if err != nil {
		return fmt.Errorf("failed to create vector artifact: %w", err)
	}
	defer file.Close()
	if err := gob.NewEncoder(file).Encode(flatArtifact{Dim: f.dim, Vectors: f.vectors}); err != nil {
		return fmt.Errorf("failed to encode vectors: %w", err)
	}
	return saveChunks(dir, f.chunks)
}

func (f *Flat) Restore(dir string) error {
	path := filepath.Join(dir, flatVectorsFileName)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	defer file.Close()

	var artifact flatArtifact
	if err := gob.NewDecoder(file).Decode(&artifact); err != nil {
		return fmt.Errorf("failed to decode vectors: %w", err)
	}
	chunks, err := loadChunks(dir)
	if err != nil {
		return err
	}
	if len(chunks) != len(artifact.Vectors) {
		return fmt.Errorf("persisted index inconsistent: %d chunks vs %d vectors", len(chunks), len(artifact.Vectors))
	}
	f.dim = artifact.Dim
	f.vectors = artifact.Vectors
	f.chunks = chunks
	return nil
}
