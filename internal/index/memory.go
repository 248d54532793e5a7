package index

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Memory is a flat in-memory index: every query scans all entries and ranks
// them by cosine similarity. Exact, stable, and fast enough for the tens of
// thousands of chunks a single repository produces.
type Memory struct {
	entries   []Entry
	dimension int
}

// BuildMemory constructs the index from all entries at once. Zero entries
// fail with ErrEmptyIndex; entries with differing dimensions fail with
// ErrDimensionMismatch.
func BuildMemory(entries []Entry) (*Memory, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}

	dim := len(entries[0].Vector)
	for i, e := range entries {
		if len(e.Vector) != dim {
			return nil, fmt.Errorf("%w: entry %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(e.Vector), dim)
		}
	}

	stored := make([]Entry, len(entries))
	copy(stored, entries)

	return &Memory{entries: stored, dimension: dim}, nil
}

// Len returns the number of indexed entries.
func (m *Memory) Len() int {
	return len(m.entries)
}

// Query returns the min(k, Len()) entries most similar to vector, highest
// similarity first. Ties are broken by insertion order.
func (m *Memory) Query(_ context.Context, vector []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), m.dimension)
	}

	hits := make([]Hit, len(m.entries))
	for i, e := range m.entries {
		hits[i] = Hit{ID: e.ID, Score: cosineSimilarity(vector, e.Vector)}
	}

	// SliceStable keeps insertion order among equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// cosineSimilarity returns a value in [-1, 1]; 1 means identical direction.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
