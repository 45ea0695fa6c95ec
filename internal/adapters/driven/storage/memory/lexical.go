package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

// Ensure LexicalIndex implements the interface.
var _ driven.LexicalIndex = (*LexicalIndex)(nil)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// indexedChunk holds per-chunk term statistics.
type indexedChunk struct {
	termFreq map[string]int
	length   int
}

// collectionIndex holds the term statistics for one collection.
type collectionIndex struct {
	chunks      map[string]*indexedChunk
	docFreq     map[string]int
	totalLength int
}

// LexicalIndex is an in-memory BM25 keyword index.
type LexicalIndex struct {
	mu          sync.RWMutex
	collections map[string]*collectionIndex
}

// NewLexicalIndex creates an empty in-memory lexical index.
func NewLexicalIndex() *LexicalIndex {
	return &LexicalIndex{collections: make(map[string]*collectionIndex)}
}

// Add indexes a chunk's text. Re-adding a chunk replaces its previous
// statistics.
func (idx *LexicalIndex) Add(chunk domain.Chunk) {
	terms := tokenize(chunk.Text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	coll, ok := idx.collections[chunk.CollectionID]
	if !ok {
		coll = &collectionIndex{
			chunks:  make(map[string]*indexedChunk),
			docFreq: make(map[string]int),
		}
		idx.collections[chunk.CollectionID] = coll
	}

	if old, exists := coll.chunks[chunk.ID]; exists {
		for term := range old.termFreq {
			coll.docFreq[term]--
			if coll.docFreq[term] <= 0 {
				delete(coll.docFreq, term)
			}
		}
		coll.totalLength -= old.length
	}

	entry := &indexedChunk{termFreq: make(map[string]int), length: len(terms)}
	for _, term := range terms {
		entry.termFreq[term]++
	}
	for term := range entry.termFreq {
		coll.docFreq[term]++
	}
	coll.chunks[chunk.ID] = entry
	coll.totalLength += entry.length
}

// Search scores the query against one collection with BM25.
func (idx *LexicalIndex) Search(_ context.Context, collectionID, query string, topN int) ([]driven.LexicalHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	coll, ok := idx.collections[collectionID]
	if !ok || len(coll.chunks) == 0 {
		return nil, nil
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	n := float64(len(coll.chunks))
	avgLen := float64(coll.totalLength) / n

	var hits []driven.LexicalHit
	for chunkID, chunk := range coll.chunks {
		var score float64
		for _, term := range queryTerms {
			tf := float64(chunk.termFreq[term])
			if tf == 0 {
				continue
			}
			df := float64(coll.docFreq[term])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := tf * (bm25K1 + 1) / (tf + bm25K1*(1-bm25B+bm25B*float64(chunk.length)/avgLen))
			score += idf * norm
		}
		if score > 0 {
			hits = append(hits, driven.LexicalHit{ChunkID: chunkID, Score: score})
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

// Close releases resources. A no-op for the in-memory index.
func (idx *LexicalIndex) Close() error {
	return nil
}

// tokenize lowercases and splits text on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
