package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	GenLLM   LLMConfig      `yaml:"gen_llm"`
	Database DatabaseConfig `yaml:"database"`
	RAG      RAGConfig      `yaml:"rag"`
}

// LLMConfig configures one model endpoint. Provider is "openai" for any
// OpenAI-compatible API or "ollama" for a local Ollama server.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type RAGConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	IndexDir     string `yaml:"index_dir"`
	Store        string `yaml:"store"` // flat, chromem or pg
}

const (
	defaultChunkSize    = 2000
	defaultChunkOverlap = 400
	defaultTopK         = 5
	defaultIndexDir     = "./data/index"
	defaultStore        = "flat"
)

// Default returns a usable config with no generator and no database,
// relying on environment variables for model endpoints.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

// LoadConfig reads the YAML config file, overlays environment variables
// for secrets and validates chunking parameters.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.TopK == 0 {
		c.RAG.TopK = defaultTopK
	}
	if c.RAG.IndexDir == "" {
		c.RAG.IndexDir = defaultIndexDir
	}
	if c.RAG.Store == "" {
		c.RAG.Store = defaultStore
	}
}

func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.EmbedLLM.Key == "" {
			c.EmbedLLM.Key = key
		}
		if c.GenLLM.Key == "" {
			c.GenLLM.Key = key
		}
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" && c.Database.DSN == "" {
		c.Database.DSN = dsn
	}
}

// Validate rejects chunking parameters that would make the window loop
// degenerate: a non-positive size, or an overlap at or above the size
// (the forward step would be <= 0 and chunking would never terminate).
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("invalid rag config: chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 {
		return fmt.Errorf("invalid rag config: chunk_overlap must not be negative, got %d", c.RAG.ChunkOverlap)
	}
	if c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("invalid rag config: chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("invalid rag config: top_k must be positive, got %d", c.RAG.TopK)
	}
	return nil
}

// HasGenerator reports whether a generation model is configured at all.
// Without one the agent runs in retrieval-only fallback mode.
func (c *Config) HasGenerator() bool {
	return c.GenLLM.Model != ""
}

func (c *Config) HasDatabase() bool {
	return c.Database.DSN != ""
}
