package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interfaces.
var (
	_ driven.VectorStore       = (*VectorStore)(nil)
	_ driven.CollectionCatalog = (*VectorStore)(nil)
)

// storedChunk pairs a chunk with its embedding.
type storedChunk struct {
	chunk     domain.Chunk
	embedding []float32
}

// VectorStore is an in-memory exact-cosine vector store. It also keeps
// the chunks themselves, serving hydration and the collection catalog.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]storedChunk
	indexedAt   map[string]time.Time
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string]map[string]storedChunk),
		indexedAt:   make(map[string]time.Time),
	}
}

// Add stores a chunk with its embedding. A nil embedding is allowed;
// the chunk is then only reachable through hydration, not search.
func (s *VectorStore) Add(chunk domain.Chunk, embedding []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[chunk.CollectionID]
	if !ok {
		coll = make(map[string]storedChunk)
		s.collections[chunk.CollectionID] = coll
	}
	coll[chunk.ID] = storedChunk{chunk: chunk, embedding: embedding}
	s.indexedAt[chunk.CollectionID] = time.Now()
}

// Search returns the topN chunks nearest to the query vector by cosine
// similarity.
func (s *VectorStore) Search(_ context.Context, collectionID string, query []float32, topN int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return nil, nil
	}

	var hits []driven.VectorHit
	for id, stored := range coll {
		if len(stored.embedding) == 0 {
			continue
		}
		sim := domain.CosineSimilarity(query, stored.embedding)
		if sim > 0 {
			hits = append(hits, driven.VectorHit{ChunkID: id, Score: sim})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topN {
		hits = hits[:topN]
	}
	return hits, nil
}

// GetByIDs hydrates chunks by ID. Unknown IDs are omitted.
func (s *VectorStore) GetByIDs(_ context.Context, collectionID string, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collectionID]
	if !ok {
		return nil, nil
	}
	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if stored, found := coll[id]; found {
			chunks = append(chunks, stored.chunk)
		}
	}
	return chunks, nil
}

// List returns the known collections, sorted by ID for determinism.
func (s *VectorStore) List(_ context.Context) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collections := make([]domain.Collection, 0, len(s.collections))
	for id, coll := range s.collections {
		collections = append(collections, domain.Collection{
			ID:            id,
			ChunkCount:    len(coll),
			LastIndexedAt: s.indexedAt[id],
		})
	}
	sort.Slice(collections, func(i, j int) bool {
		return collections[i].ID < collections[j].ID
	})
	return collections, nil
}

// Close releases resources. A no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}
