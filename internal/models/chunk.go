package models

import "fmt"

// Page holds the extracted plain text of a single document page.
// Page numbers are 1-based; pages with only whitespace are dropped by the parser.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// Chunk is a citable unit of document text with its source page and a
// document-wide sequential id. Chunks are created once during ingestion
// and never mutated afterwards.
type Chunk struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	ChunkID    int    `json:"chunk_id"`
}

// Citation returns the token by which generated text may reference this chunk.
func (c Chunk) Citation() string {
	return fmt.Sprintf("[p%d:c%d]", c.PageNumber, c.ChunkID)
}
