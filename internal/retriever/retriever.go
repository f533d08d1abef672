package retriever

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"docqa/internal/embedding"
	"docqa/internal/index"
)

// Searcher is the read side of a vector index. index.Store implementations
// and the Postgres store both satisfy it.
type Searcher interface {
	Search(ctx context.Context, vector []float32, topK int) ([]index.Result, error)
}

// Retriever embeds a query through the same embedder path used at build
// time and runs a top-k similarity search against the store.
type Retriever struct {
	embedder embeddings.Embedder
	store    Searcher
}

func New(embedder embeddings.Embedder, store Searcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]index.Result, error) {
	vector, err := embedding.EmbedQuery(ctx, r.embedder, query)
	if err != nil {
		return nil, err
	}
	return r.store.Search(ctx, vector, topK)
}

// LogResults dumps the ranked results for retrieval debugging.
func LogResults(query string, results []index.Result) {
	log.Debug().Str("query", query).Int("results", len(results)).Msg("retrieval")
	for i, res := range results {
		snippet := snippetText(res.Chunk.Text, 200)
		log.Debug().
			Int("rank", i+1).
			Float32("score", res.Score).
			Str("citation", res.Chunk.Citation()).
			Str("snippet", snippet).
			Msg("retrieved chunk")
	}
}

// snippetText truncates to limit runes, never splitting a multibyte
// character.
func snippetText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
