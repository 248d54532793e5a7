package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty embedding model", func(c *Config) { c.EmbeddingModel = "" }},
		{"empty chat model", func(c *Config) { c.ChatModel = "" }},
		{"zero chunk lines", func(c *Config) { c.MaxChunkLines = 0 }},
		{"negative overlap", func(c *Config) { c.OverlapLines = -1 }},
		{"overlap equals chunk lines", func(c *Config) { c.OverlapLines = c.MaxChunkLines }},
		{"overlap exceeds chunk lines", func(c *Config) { c.OverlapLines = c.MaxChunkLines + 5 }},
		{"zero top-k", func(c *Config) { c.TopK = 0 }},
		{"zero prompt budget", func(c *Config) { c.PromptBudget = 0 }},
		{"zero answer tokens", func(c *Config) { c.MaxAnswerTokens = 0 }},
		{"zero file size", func(c *Config) { c.MaxFileSize = 0 }},
		{"unknown backend", func(c *Config) { c.IndexBackend = "pinecone" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CODEQUERY_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("CODEQUERY_CHUNK_LINES", "60")
	t.Setenv("CODEQUERY_CHUNK_OVERLAP", "10")
	t.Setenv("CODEQUERY_TOP_K", "3")
	t.Setenv("CODEQUERY_INDEX", "qdrant")
	t.Setenv("QDRANT_PORT", "7001")

	cfg := FromEnv()
	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingModel)
	assert.Equal(t, 60, cfg.MaxChunkLines)
	assert.Equal(t, 10, cfg.OverlapLines)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, BackendQdrant, cfg.IndexBackend)
	assert.Equal(t, 7001, cfg.QdrantPort)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	assert.Equal(t, DefaultPromptBudget, cfg.PromptBudget)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvIgnoresMalformedInts(t *testing.T) {
	t.Setenv("CODEQUERY_TOP_K", "lots")
	cfg := FromEnv()
	assert.Equal(t, DefaultTopK, cfg.TopK)

	// Trailing garbage after digits is malformed too, not "8".
	t.Setenv("CODEQUERY_TOP_K", "8x")
	cfg = FromEnv()
	assert.Equal(t, DefaultTopK, cfg.TopK)
}
