package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure SemanticStore implements the interface.
var _ driven.SemanticStore = (*SemanticStore)(nil)

// DefaultSemanticCapacity bounds the store when no capacity is given.
const DefaultSemanticCapacity = 2048

// SemanticStore is a linear-scan implementation of driven.SemanticStore.
// Capacity is bounded with drop-oldest eviction; TTL expiry happens
// lazily during lookup. The linear scan is fine at thousands of
// entries; swap in an indexed structure behind the port beyond that.
type SemanticStore struct {
	mu       sync.Mutex
	entries  []driven.SemanticEntry
	capacity int
}

// NewSemanticStore creates an empty semantic store. A non-positive
// capacity falls back to DefaultSemanticCapacity.
func NewSemanticStore(capacity int) *SemanticStore {
	if capacity <= 0 {
		capacity = DefaultSemanticCapacity
	}
	return &SemanticStore{capacity: capacity}
}

// Put stores an entry, evicting the oldest when full.
func (s *SemanticStore) Put(_ context.Context, entry driven.SemanticEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
	return nil
}

// Nearest returns the live entry with the highest cosine similarity to
// the query vector. Expired entries are pruned during the scan.
func (s *SemanticStore) Nearest(_ context.Context, query []float32) (driven.SemanticEntry, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	live := s.entries[:0]
	var (
		best     driven.SemanticEntry
		bestSim  float64
		foundAny bool
	)
	for _, entry := range s.entries {
		if entry.Expired(now) {
			continue
		}
		live = append(live, entry)
		sim := domain.CosineSimilarity(query, entry.Embedding)
		if !foundAny || sim > bestSim {
			best = entry
			bestSim = sim
			foundAny = true
		}
	}
	s.entries = live

	if !foundAny {
		return driven.SemanticEntry{}, 0, domain.ErrCacheMiss
	}
	return best, bestSim, nil
}

// Clear removes all entries.
func (s *SemanticStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

// Len returns the number of stored entries, expired included.
func (s *SemanticStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
