package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"docqa/internal/agent"
	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/db"
	"docqa/internal/embedding"
	"docqa/internal/helper"
	"docqa/internal/index"
	"docqa/internal/llm"
	"docqa/internal/models"
	"docqa/internal/parser"
	"docqa/internal/retriever"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the document file")
	query := flag.String("query", "", "One-shot query; omit for interactive chat")
	configPath := flag.String("config", configFilePath, "Path to the config file")
	topK := flag.Int("top-k", 0, "Number of chunks to retrieve")
	chunkSize := flag.Int("chunk-size", 0, "Chunk size in characters")
	chunkOverlap := flag.Int("chunk-overlap", -1, "Overlap between chunks in characters")
	storeName := flag.String("store", "", "Vector store backend: flat, chromem or pg")
	useCache := flag.Bool("use-cache", false, "Load a previously persisted index instead of re-ingesting")
	dryRun := flag.Bool("dry-run", false, "Extract and print pages, then exit without indexing")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Please provide a document file using the -file flag")
	}

	if *dryRun {
		pages, err := parser.ExtractPages(*filePath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing document")
		}
		log.Info().Int("pages", len(pages)).Msg("Extracted pages")
		helper.PrettyPrint(pages)
		return
	}

	cfg := loadConfig(*configPath)
	applyFlags(cfg, *topK, *chunkSize, *chunkOverlap, *storeName)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	searcher := prepareStore(ctx, cfg, embedder, *filePath, *useCache)

	var gen llm.Generator
	if cfg.HasGenerator() {
		client, err := llm.NewClient(&cfg.GenLLM)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize generator, falling back to retrieval-only mode")
		} else {
			gen = client
		}
	}

	ag := agent.New(retriever.New(embedder, searcher), gen, cfg.RAG.TopK, true)
	log.Info().
		Str("document", filepath.Base(*filePath)).
		Str("mode", ag.Mode().String()).
		Str("session", ag.History().SessionID()).
		Int("top_k", cfg.RAG.TopK).
		Msg("Agent ready")

	if *query != "" {
		answer, err := ag.AnswerQuery(ctx, *query)
		if err != nil {
			log.Fatal().Err(err).Msg("Error answering query")
		}
		fmt.Printf("%s\n", answer)
		return
	}

	chatLoop(ctx, ag)
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("path", path).Msg("Config file not found, using defaults")
			return config.Default()
		}
		log.Fatal().Err(err).Msg("Error loading config")
	}
	return cfg
}

func applyFlags(cfg *config.Config, topK, chunkSize, chunkOverlap int, store string) {
	if topK > 0 {
		cfg.RAG.TopK = topK
	}
	if chunkSize > 0 {
		cfg.RAG.ChunkSize = chunkSize
	}
	if chunkOverlap >= 0 {
		cfg.RAG.ChunkOverlap = chunkOverlap
	}
	if store != "" {
		cfg.RAG.Store = store
	}
}

// prepareStore ingests the document into the configured store, or loads
// the persisted index when -use-cache is set and both artifacts exist.
func prepareStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder, filePath string, useCache bool) retriever.Searcher {
	if cfg.RAG.Store == "pg" {
		return preparePGStore(ctx, cfg, embedder, filePath, useCache)
	}

	var store index.Store
	switch cfg.RAG.Store {
	case "chromem":
		store = index.NewChromem()
	case "flat":
		store = index.NewFlat()
	default:
		log.Fatal().Str("store", cfg.RAG.Store).Msg("Unknown store backend")
	}

	indexDir := filepath.Join(cfg.RAG.IndexDir, documentStem(filePath))
	if useCache {
		err := store.Restore(indexDir)
		if err == nil {
			log.Info().Str("dir", indexDir).Msg("Loaded cached index")
			return store
		}
		if !errors.Is(err, index.ErrNotFound) {
			log.Fatal().Err(err).Msg("Error loading cached index")
		}
		log.Info().Str("dir", indexDir).Msg("No cached index, ingesting document")
	}

	chunks, vectors := ingest(ctx, cfg, embedder, filePath)
	if err := store.Build(ctx, chunks, vectors); err != nil {
		log.Fatal().Err(err).Msg("Error building index")
	}
	if err := helper.CreateFolder(cfg.RAG.IndexDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating index folder")
	}
	if err := store.Persist(indexDir); err != nil {
		log.Fatal().Err(err).Msg("Error persisting index")
	}
	log.Info().Str("dir", indexDir).Int("chunks", len(chunks)).Msg("Index built and persisted")
	return store
}

func preparePGStore(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder, filePath string, useCache bool) retriever.Searcher {
	if !cfg.HasDatabase() {
		log.Fatal().Msg("Store backend pg requires a database dsn")
	}
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	bunDB := db.NewDB(sqldb, cfg.Database.Debug)

	if !useCache {
		if err := db.DropChunks(ctx, bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error clearing chunks table")
		}
		if err := db.InitDB(ctx, bunDB); err != nil {
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		chunks, vectors := ingest(ctx, cfg, embedder, filePath)
		if err := db.StoreChunks(ctx, bunDB, chunks, vectors); err != nil {
			log.Fatal().Err(err).Msg("Error storing chunks")
		}
		log.Info().Int("chunks", len(chunks)).Msg("Chunks stored in database")
	}
	return db.NewPGStore(bunDB)
}

// ingest runs extraction, chunking and embedding for one document.
func ingest(ctx context.Context, cfg *config.Config, embedder embeddings.Embedder, filePath string) ([]models.Chunk, [][]float32) {
	pages, err := parser.ExtractPages(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}
	if len(pages) == 0 {
		log.Fatal().Str("file", filePath).Msg("No text extracted from document")
	}
	log.Info().Int("pages", len(pages)).Msg("Extracted pages")

	ck, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating chunker")
	}
	chunks := ck.ChunkPages(pages)
	if len(chunks) == 0 {
		log.Fatal().Str("file", filePath).Msg("No chunks produced from document")
	}
	log.Info().Int("chunks", len(chunks)).Msg("Chunked document")

	vectors, err := embedding.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}
	return chunks, vectors
}

func documentStem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func chatLoop(ctx context.Context, ag *agent.Agent) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("DOCUMENT Q&A AGENT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("Ask questions about the document. Type 'quit' or 'exit' to end, 'reset' to clear history.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("\nGoodbye!")
			return
		case "reset":
			ag.History().Reset()
			fmt.Println("Conversation history cleared.")
			continue
		}

		answer, err := ag.AnswerQuery(ctx, input)
		if err != nil {
			log.Error().Err(err).Msg("Error answering query")
			continue
		}
		fmt.Printf("\nAssistant: %s\n", answer)
	}
}
