package index

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// collectionPrefix namespaces the per-build collections. Every build creates
// its own collection, so an index being built never touches the collection a
// live session is querying; the engine drops the predecessor's collection
// only after the session swap.
const collectionPrefix = "codequery_chunks"

// upsertBatchSize is the number of points per Qdrant upsert request.
const upsertBatchSize = 100

// Qdrant is a vector index backed by a Qdrant server. It satisfies the same
// contract as Memory but offloads similarity search to the server. Each
// instance owns one collection for its lifetime; Drop releases it.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimension  int
	count      int
}

// NewQdrantClient connects to Qdrant and verifies health with exponential
// backoff, failing fast if the server is unreachable.
func NewQdrantClient(host string, port int) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		result, err := client.HealthCheck(context.Background())
		if err != nil {
			return err
		}
		if result == nil || result.Title == "" {
			return fmt.Errorf("health check returned invalid response")
		}
		return nil
	}

	if err := backoff.Retry(operation, b); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return client, nil
}

// BuildQdrant creates a fresh collection and bulk-loads all entries into it.
// Existing collections are never read or modified, so a build that fails
// mid-upsert leaves any previously built index fully intact; the failed
// build's own collection is deleted best-effort before returning.
func BuildQdrant(ctx context.Context, client *qdrant.Client, entries []Entry) (*Qdrant, error) {
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

	collection := collectionPrefix + "_" + uuid.NewString()
	err := client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	q := &Qdrant{client: client, collection: collection, dimension: dim, count: len(entries)}

	for i := 0; i < len(entries); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(entries))
		batch := entries[i:end]

		points := make([]*qdrant.PointStruct, len(batch))
		for j, e := range batch {
			points[j] = &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(e.ID),
				Vectors: qdrant.NewVectors(e.Vector...),
			}
		}
		if err := q.upsertWithRetry(ctx, points); err != nil {
			_ = client.DeleteCollection(ctx, collection)
			return nil, fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
	}

	return q, nil
}

// upsertWithRetry performs one upsert with exponential backoff.
func (q *Qdrant) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.collection,
			Points:         points,
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

// Len returns the number of indexed entries.
func (q *Qdrant) Len() int {
	return q.count
}

// Query returns the min(k, Len()) nearest entries by cosine similarity.
func (q *Qdrant) Query(ctx context.Context, vector []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(vector) != q.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), q.dimension)
	}

	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
	})
	if err != nil {
		return nil, fmt.Errorf("query qdrant: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{ID: r.Id.GetUuid(), Score: r.Score})
	}
	return hits, nil
}

// Drop deletes this index's collection. Called by the engine after a newer
// session replaces this one.
func (q *Qdrant) Drop(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return fmt.Errorf("delete collection %s: %w", q.collection, err)
	}
	return nil
}
