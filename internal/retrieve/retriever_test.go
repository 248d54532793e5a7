package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/codequery/internal/chunk"
	"github.com/bull/codequery/internal/index"
)

// stubEmbedder returns a fixed vector for every query.
type stubEmbedder struct {
	vector []float32
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return s.vector, nil
}

func testChunks() []chunk.Chunk {
	return []chunk.Chunk{
		{ID: "c1", Path: "a.go", StartLine: 1, EndLine: 10, Text: "package a"},
		{ID: "c2", Path: "b.go", StartLine: 1, EndLine: 10, Text: "package b"},
	}
}

func TestRetrieve_EmptyQuestion(t *testing.T) {
	idx, err := index.BuildMemory([]index.Entry{{ID: "c1", Vector: []float32{1, 0}}})
	require.NoError(t, err)
	r := New(&stubEmbedder{vector: []float32{1, 0}}, idx, testChunks())

	_, err = r.Retrieve(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = r.Retrieve(context.Background(), "   \n\t", 5)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestRetrieve_IndexNotReady(t *testing.T) {
	r := New(&stubEmbedder{vector: []float32{1, 0}}, nil, nil)

	_, err := r.Retrieve(context.Background(), "where is main?", 5)
	assert.ErrorIs(t, err, ErrIndexNotReady)
}

func TestRetrieve_ResolvesChunksInOrder(t *testing.T) {
	idx, err := index.BuildMemory([]index.Entry{
		{ID: "c1", Vector: []float32{1, 0}},
		{ID: "c2", Vector: []float32{0, 1}},
	})
	require.NoError(t, err)
	r := New(&stubEmbedder{vector: []float32{0, 1}}, idx, testChunks())

	results, err := r.Retrieve(context.Background(), "what is in b?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// c2 matches the query vector exactly, so it ranks first, with its full
	// provenance resolved.
	assert.Equal(t, "c2", results[0].Chunk.ID)
	assert.Equal(t, "b.go", results[0].Chunk.Path)
	assert.Equal(t, "package b", results[0].Chunk.Text)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestRetrieve_InvalidK(t *testing.T) {
	idx, err := index.BuildMemory([]index.Entry{{ID: "c1", Vector: []float32{1, 0}}})
	require.NoError(t, err)
	r := New(&stubEmbedder{vector: []float32{1, 0}}, idx, testChunks())

	_, err = r.Retrieve(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, index.ErrInvalidK)
}
