// Package retrieve turns a question into the top-K most similar chunks with
// their provenance.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bull/codequery/internal/chunk"
	"github.com/bull/codequery/internal/index"
)

var (
	// ErrIndexNotReady is returned when retrieval is attempted before a
	// successful index build. Callers must be able to distinguish "nothing
	// relevant found" from "no repository loaded".
	ErrIndexNotReady = errors.New("vector index not ready")

	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// Embedder vectorizes a query in the same vector space used at index time.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ScoredChunk is one retrieval result.
type ScoredChunk struct {
	Chunk chunk.Chunk
	Score float32
}

// Retriever resolves questions to chunks: embed the question, query the
// index, map the returned identifiers back to full chunk records.
type Retriever struct {
	embedder Embedder
	idx      index.Index
	chunks   map[string]chunk.Chunk
}

// New creates a retriever over a built index and the chunk table it was
// built from.
func New(embedder Embedder, idx index.Index, chunks []chunk.Chunk) *Retriever {
	table := make(map[string]chunk.Chunk, len(chunks))
	for _, c := range chunks {
		table[c.ID] = c
	}
	return &Retriever{embedder: embedder, idx: idx, chunks: table}
}

// Retrieve returns up to k chunks ordered by descending similarity.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]ScoredChunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if r.idx == nil || r.idx.Len() == 0 {
		return nil, ErrIndexNotReady
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := r.idx.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		c, ok := r.chunks[hit.ID]
		if !ok {
			// The index never returns identifiers it was not built with.
			return nil, fmt.Errorf("index returned unknown chunk id %s", hit.ID)
		}
		results = append(results, ScoredChunk{Chunk: c, Score: hit.Score})
	}
	return results, nil
}
