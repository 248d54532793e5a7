package index

import "errors"

var (
	// ErrEmptyIndex is returned when a build is attempted with zero entries.
	// Callers must handle "repository produced no indexable content"
	// explicitly rather than receiving a silently empty index.
	ErrEmptyIndex = errors.New("cannot build index with zero entries")

	// ErrInvalidK is returned for queries with k <= 0.
	ErrInvalidK = errors.New("k must be positive")

	// ErrDimensionMismatch is returned when a vector's dimension does not
	// match the index's dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrQdrantUnreachable is returned when the Qdrant backend cannot be
	// reached at build time.
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
)
