// Package config holds the pipeline configuration with documented defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for every tunable. The similarity metric is cosine and is not
// configurable: mixing metrics between build and query corrupts ranking.
const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultChatModel       = "gpt-4o"
	DefaultMaxChunkLines   = 100
	DefaultOverlapLines    = 20
	DefaultTopK            = 8
	DefaultPromptBudget    = 24000 // characters of chunk context per prompt
	DefaultMaxAnswerTokens = 1024
	DefaultTemperature     = 0.3
	DefaultMaxFileSize     = 512 * 1024 // bytes
	DefaultQdrantHost      = "localhost"
	DefaultQdrantPort      = 6334
)

// Index backend selection.
const (
	BackendMemory = "memory"
	BackendQdrant = "qdrant"
)

// Config collects every tunable of the question-answering pipeline.
// Zero values are filled in by Default(); Validate() rejects inconsistent
// combinations before any repository is loaded.
type Config struct {
	// EmbeddingModel is the OpenAI embedding model. Changing it invalidates
	// any existing index; vectors from different models are not comparable.
	EmbeddingModel string
	// ChatModel is the OpenAI chat model used for answer synthesis.
	ChatModel string
	// MaxChunkLines is the maximum number of lines per chunk.
	MaxChunkLines int
	// OverlapLines is the number of lines adjacent chunks share.
	OverlapLines int
	// TopK is the number of chunks retrieved per question.
	TopK int
	// PromptBudget caps the total characters of chunk context in a prompt.
	PromptBudget int
	// MaxAnswerTokens caps the completion length.
	MaxAnswerTokens int
	// Temperature for answer synthesis.
	Temperature float64
	// MaxFileSize in bytes; larger files are skipped during load.
	MaxFileSize int64
	// IndexBackend selects the vector index: "memory" or "qdrant".
	IndexBackend string
	// QdrantHost and QdrantPort locate the Qdrant server when the qdrant
	// backend is selected.
	QdrantHost string
	QdrantPort int
}

// Default returns a Config populated with the documented defaults.
func Default() Config {
	return Config{
		EmbeddingModel:  DefaultEmbeddingModel,
		ChatModel:       DefaultChatModel,
		MaxChunkLines:   DefaultMaxChunkLines,
		OverlapLines:    DefaultOverlapLines,
		TopK:            DefaultTopK,
		PromptBudget:    DefaultPromptBudget,
		MaxAnswerTokens: DefaultMaxAnswerTokens,
		Temperature:     DefaultTemperature,
		MaxFileSize:     DefaultMaxFileSize,
		IndexBackend:    BackendMemory,
		QdrantHost:      DefaultQdrantHost,
		QdrantPort:      DefaultQdrantPort,
	}
}

// FromEnv returns the default config overridden by CODEQUERY_* environment
// variables. Call godotenv.Load() first if a .env file should be honored.
func FromEnv() Config {
	cfg := Default()
	cfg.EmbeddingModel = getEnv("CODEQUERY_EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.ChatModel = getEnv("CODEQUERY_CHAT_MODEL", cfg.ChatModel)
	cfg.MaxChunkLines = getEnvInt("CODEQUERY_CHUNK_LINES", cfg.MaxChunkLines)
	cfg.OverlapLines = getEnvInt("CODEQUERY_CHUNK_OVERLAP", cfg.OverlapLines)
	cfg.TopK = getEnvInt("CODEQUERY_TOP_K", cfg.TopK)
	cfg.PromptBudget = getEnvInt("CODEQUERY_PROMPT_BUDGET", cfg.PromptBudget)
	cfg.MaxAnswerTokens = getEnvInt("CODEQUERY_MAX_ANSWER_TOKENS", cfg.MaxAnswerTokens)
	cfg.MaxFileSize = int64(getEnvInt("CODEQUERY_MAX_FILE_SIZE", int(cfg.MaxFileSize)))
	cfg.IndexBackend = getEnv("CODEQUERY_INDEX", cfg.IndexBackend)
	cfg.QdrantHost = getEnv("QDRANT_HOST", cfg.QdrantHost)
	cfg.QdrantPort = getEnvInt("QDRANT_PORT", cfg.QdrantPort)
	return cfg
}

// Validate checks the configuration for inconsistent values.
func (c Config) Validate() error {
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding model must not be empty")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat model must not be empty")
	}
	if c.MaxChunkLines <= 0 {
		return fmt.Errorf("max chunk lines must be positive, got %d", c.MaxChunkLines)
	}
	if c.OverlapLines < 0 {
		return fmt.Errorf("overlap lines must not be negative, got %d", c.OverlapLines)
	}
	if c.OverlapLines >= c.MaxChunkLines {
		return fmt.Errorf("overlap (%d) must be smaller than max chunk lines (%d)",
			c.OverlapLines, c.MaxChunkLines)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", c.TopK)
	}
	if c.PromptBudget <= 0 {
		return fmt.Errorf("prompt budget must be positive, got %d", c.PromptBudget)
	}
	if c.MaxAnswerTokens <= 0 {
		return fmt.Errorf("max answer tokens must be positive, got %d", c.MaxAnswerTokens)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize)
	}
	if c.IndexBackend != BackendMemory && c.IndexBackend != BackendQdrant {
		return fmt.Errorf("unknown index backend %q", c.IndexBackend)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}
