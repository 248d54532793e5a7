// Package index provides nearest-neighbor search over chunk vectors. The
// default backend is an in-memory flat index; a Qdrant-backed implementation
// is available behind the same interface. Both are built once per loaded
// repository and queried read-only afterwards, so concurrent queries need no
// locking.
package index

import "context"

// Entry pairs a chunk identifier with its vector. The index owns entries;
// chunk metadata stays with the caller, referenced by ID.
type Entry struct {
	ID     string
	Vector []float32
}

// Hit is one query result: an indexed ID with its cosine similarity to the
// query vector.
type Hit struct {
	ID    string
	Score float32
}

// Index answers top-k similarity queries over a fixed set of entries.
// Results are ordered by non-increasing similarity; ties keep insertion
// order. Query returns ErrInvalidK for k <= 0 and ErrDimensionMismatch for a
// query vector of the wrong size.
type Index interface {
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)
	Len() int
}

// Release frees any server-side state the index holds, such as a Qdrant
// collection. In-memory indexes hold none and are left to the garbage
// collector. Callers release an index only after nothing queries it anymore.
func Release(ctx context.Context, idx Index) error {
	if d, ok := idx.(interface{ Drop(context.Context) error }); ok {
		return d.Drop(ctx)
	}
	return nil
}
