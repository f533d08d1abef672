package chunker

import (
	"fmt"
	"strings"

	"docqa/internal/models"
)

// Chunker splits page text into fixed-size overlapping windows. Each
// accepted window becomes a chunk with the next sequential id; ids are
// dense across the whole document because blank windows never consume one.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// New validates the window parameters up front. An overlap at or above the
// chunk size makes the forward step non-positive, so it is rejected here
// instead of looping forever during ingestion.
func New(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", chunkOverlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Chunk slides a window of chunkSize runes over text, advancing by
// chunkSize - chunkOverlap, assigning ids starting at startID.
// Windows are measured in runes so a multibyte character never straddles
// a boundary. Windows that trim to nothing are dropped without consuming
// an id.
func (c *Chunker) Chunk(text string, pageNumber, startID int) []models.Chunk {
	var chunks []models.Chunk
	chunkID := startID
	step := c.chunkSize - c.chunkOverlap
	runes := []rune(text)

	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			Text:       window,
			PageNumber: pageNumber,
			ChunkID:    chunkID,
		})
		chunkID++
	}
	return chunks
}

// ChunkPages runs the windowing per page in page order, carrying one
// globally increasing chunk id counter across pages. Chunks never span
// page boundaries.
func (c *Chunker) ChunkPages(pages []models.Page) []models.Chunk {
	var all []models.Chunk
	chunkID := 0
	for _, page := range pages {
		pageChunks := c.Chunk(page.Text, page.PageNumber, chunkID)
		all = append(all, pageChunks...)
		chunkID += len(pageChunks)
	}
	return all
}
