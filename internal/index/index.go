package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docqa/internal/models"
)

var (
	// ErrEmptyBuild is returned when building an index from zero chunks.
	ErrEmptyBuild = errors.New("cannot build index from empty chunk list")
	// ErrNotBuilt is returned when searching before Build or Restore.
	ErrNotBuilt = errors.New("index not built")
	// ErrNotFound is returned when a persisted artifact is missing on Restore.
	ErrNotFound = errors.New("persisted index not found")
)

// Result pairs a chunk with its cosine similarity to the query.
type Result struct {
	Chunk models.Chunk
	Score float32
}

// Store holds chunk embeddings and answers nearest-neighbor queries.
// Build replaces all prior state; it is never additive. Persist and
// Restore move the whole index (vectors plus chunk records) as one unit
// addressed by a directory.
type Store interface {
	Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]Result, error)
	Persist(dir string) error
	Restore(dir string) error
}

const chunksFileName = "chunks.json"

// saveChunks writes the ordered chunk sequence next to the vector artifact.
func saveChunks(dir string, chunks []models.Chunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("failed to encode chunks: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, chunksFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write chunks: %w", err)
	}
	return nil
}

func loadChunks(dir string) ([]models.Chunk, error) {
	path := filepath.Join(dir, chunksFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	var chunks []models.Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunks: %w", err)
	}
	return chunks, nil
}
