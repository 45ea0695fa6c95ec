package driven

import (
	"context"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
)

// VectorStore provides nearest-neighbour search and chunk hydration.
// Vector indexing is owned by the out-of-scope ingestion subsystem.
type VectorStore interface {
	// Search finds the topN nearest neighbours to the query vector
	// within one collection.
	Search(ctx context.Context, collectionID string, query []float32, topN int) ([]VectorHit, error)

	// GetByIDs hydrates full chunks for the given IDs. Unknown IDs are
	// silently omitted from the result.
	GetByIDs(ctx context.Context, collectionID string, ids []string) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the raw similarity score. Callers normalize per list.
	Score float64
}

// CollectionCatalog lists the searchable collections. Collections are
// external, read-only entities owned by the indexing subsystem.
type CollectionCatalog interface {
	// List returns all known collections.
	List(ctx context.Context) ([]domain.Collection, error)
}
