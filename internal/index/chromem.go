package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"docqa/internal/models"
)

const (
	chromemFileName   = "vectors.chromem"
	chromemCollection = "docqa"
	chromemCompress   = false
)

// Chromem is a chromem-go backed index. The collection lives in memory and
// is exported to / imported from a single engine-specific artifact, with
// the chunk sequence kept alongside as its own record file.
type Chromem struct {
	db         *chromem.DB
	collection *chromem.Collection
	chunks     []models.Chunk
	byID       map[int]models.Chunk
}

func NewChromem() *Chromem { return &Chromem{} }

func (c *Chromem) Build(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return ErrEmptyBuild
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:      strconv.Itoa(chunk.ChunkID),
			Content: chunk.Text,
			Metadata: map[string]string{
				"page_number": strconv.Itoa(chunk.PageNumber),
				"chunk_id":    strconv.Itoa(chunk.ChunkID),
			},
			Embedding: vectors[i],
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	c.db = db
	c.collection = collection
	c.setChunks(chunks)
	return nil
}

func (c *Chromem) Search(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	if c.collection == nil {
		return nil, ErrNotBuilt
	}
	if count := c.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil, nil
	}

	found, err := c.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]Result, 0, len(found))
	for _, res := range found {
		id, err := strconv.Atoi(res.ID)
		if err != nil {
			return nil, fmt.Errorf("unexpected document id %q: %w", res.ID, err)
		}
		chunk, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("document id %d has no chunk record", id)
		}
		results = append(results, Result{Chunk: chunk, Score: res.Similarity})
	}
	return results, nil
}

func (c *Chromem) Persist(dir string) error {
	if c.collection == nil {
		return ErrNotBuilt
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index dir: %w", err)
	}
	path := filepath.Join(dir, chromemFileName)
	if err := c.db.ExportToFile(path, chromemCompress, "", chromemCollection); err != nil {
		return fmt.Errorf("failed to export collection: %w", err)
	}
	return saveChunks(dir, c.chunks)
}

func (c *Chromem) Restore(dir string) error {
	path := filepath.Join(dir, chromemFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	chunks, err := loadChunks(dir)
	if err != nil {
		return err
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("failed to import collection: %w", err)
	}
	collection := db.GetCollection(chromemCollection, nil)
	if collection == nil {
		return fmt.Errorf("%w: collection %q missing from artifact", ErrNotFound, chromemCollection)
	}

	c.db = db
	c.collection = collection
	c.setChunks(chunks)
	return nil
}

func (c *Chromem) setChunks(chunks []models.Chunk) {
	c.chunks = chunks
	c.byID = make(map[int]models.Chunk, len(chunks))
	for _, chunk := range chunks {
		c.byID[chunk.ChunkID] = chunk
	}
}
