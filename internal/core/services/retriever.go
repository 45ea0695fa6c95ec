package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Default fusion parameters.
const (
	// DefaultLexicalTopN is the per-variant keyword pass depth.
	DefaultLexicalTopN = 20

	// DefaultDenseTopN is the per-variant nearest-neighbour pass depth.
	DefaultDenseTopN = 20

	// DefaultLexicalWeight weights normalized keyword scores in fusion.
	DefaultLexicalWeight = 0.3

	// DefaultDenseWeight weights normalized dense scores in fusion.
	DefaultDenseWeight = 0.7
)

// QueryVariant is one query variant prepared for retrieval. A nil
// Embedding disables the dense pass for this variant.
type QueryVariant struct {
	// Index is the position in the generated variant list. Index 0 is
	// the original query.
	Index int

	// Text is the variant query text.
	Text string

	// Embedding is the variant's query vector, when available.
	Embedding []float32
}

// RetrieverOptions configures the hybrid retriever. Zero values fall
// back to the package defaults.
type RetrieverOptions struct {
	LexicalTopN   int
	DenseTopN     int
	LexicalWeight float64
	DenseWeight   float64
}

func (o RetrieverOptions) withDefaults() RetrieverOptions {
	if o.LexicalTopN <= 0 {
		o.LexicalTopN = DefaultLexicalTopN
	}
	if o.DenseTopN <= 0 {
		o.DenseTopN = DefaultDenseTopN
	}
	if o.LexicalWeight <= 0 && o.DenseWeight <= 0 {
		o.LexicalWeight = DefaultLexicalWeight
		o.DenseWeight = DefaultDenseWeight
	}
	return o
}

// HybridRetriever runs the per-collection lexical and dense passes and
// fuses them into a single deduplicated candidate list.
type HybridRetriever struct {
	lexical driven.LexicalIndex
	vectors driven.VectorStore
	opts    RetrieverOptions
}

// NewHybridRetriever creates a hybrid retriever. The lexical index is
// optional; the vector store is required for chunk hydration.
func NewHybridRetriever(lexical driven.LexicalIndex, vectors driven.VectorStore, opts RetrieverOptions) *HybridRetriever {
	return &HybridRetriever{
		lexical: lexical,
		vectors: vectors,
		opts:    opts.withDefaults(),
	}
}

// scoredID is an intermediate (chunk ID, raw score) pair shared by both
// passes before normalization.
type scoredID struct {
	id    string
	score float64
}

// Retrieve runs every variant against one collection and merges the
// results by chunk ID.
//
// Per variant, candidates fuse as lexicalWeight*normalized(lexical) +
// denseWeight*normalized(dense); a candidate absent from one pass scores
// 0 on that dimension rather than being excluded. Across variants the
// max fused score is retained together with the union of contributing
// variant indices, so any single variant can rescue a chunk the literal
// original query would miss. Ordering is fully deterministic: fused
// score descending, then earliest contributing variant, then chunk ID.
//
// An error is returned only when every pass of every variant failed;
// the router then skips the collection.
func (r *HybridRetriever) Retrieve(ctx context.Context, collectionID string, variants []QueryVariant, topK int) ([]domain.Candidate, error) {
	if topK <= 0 {
		topK = DefaultLexicalTopN
	}

	merged := make(map[string]*domain.Candidate)
	attempted, failed := 0, 0
	var lastErr error

	for _, variant := range variants {
		var lexical, dense []scoredID

		if r.lexical != nil {
			attempted++
			hits, err := r.lexical.Search(ctx, collectionID, variant.Text, r.opts.LexicalTopN)
			if err != nil {
				failed++
				lastErr = err
				logger.Warn("Lexical pass failed: collection=%s variant=%d: %v", collectionID, variant.Index, err)
			} else {
				for _, h := range hits {
					lexical = append(lexical, scoredID{h.ChunkID, h.Score})
				}
			}
		}

		if r.vectors != nil && len(variant.Embedding) > 0 {
			attempted++
			hits, err := r.vectors.Search(ctx, collectionID, variant.Embedding, r.opts.DenseTopN)
			if err != nil {
				failed++
				lastErr = err
				logger.Warn("Dense pass failed: collection=%s variant=%d: %v", collectionID, variant.Index, err)
			} else {
				for _, h := range hits {
					dense = append(dense, scoredID{h.ChunkID, h.Score})
				}
			}
		}

		r.fuseVariant(merged, variant.Index, collectionID, lexical, dense)
	}

	if attempted == 0 {
		return nil, fmt.Errorf("collection %s: no retrieval backends configured", collectionID)
	}
	if failed == attempted {
		return nil, fmt.Errorf("collection %s: all retrieval passes failed: %w", collectionID, lastErr)
	}

	candidates := make([]domain.Candidate, 0, len(merged))
	for _, c := range merged {
		candidates = append(candidates, *c)
	}
	sortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	if err := r.hydrate(ctx, collectionID, candidates); err != nil {
		return nil, fmt.Errorf("collection %s: hydrate candidates: %w", collectionID, err)
	}

	logger.Debug("Retrieved %d candidates from collection %s", len(candidates), collectionID)
	return candidates, nil
}

// fuseVariant normalizes one variant's pass results, computes fused
// scores, and merges them into the accumulated candidate map.
func (r *HybridRetriever) fuseVariant(merged map[string]*domain.Candidate, variantIndex int, collectionID string, lexical, dense []scoredID) {
	lexNorm := normalizeScores(lexical)
	denseNorm := normalizeScores(dense)

	ids := make(map[string]struct{}, len(lexNorm)+len(denseNorm))
	for id := range lexNorm {
		ids[id] = struct{}{}
	}
	for id := range denseNorm {
		ids[id] = struct{}{}
	}

	for id := range ids {
		lex := lexNorm[id]
		dns := denseNorm[id]
		fused := r.opts.LexicalWeight*lex + r.opts.DenseWeight*dns

		existing, ok := merged[id]
		if !ok {
			merged[id] = &domain.Candidate{
				ChunkID:      id,
				CollectionID: collectionID,
				LexicalScore: lex,
				DenseScore:   dns,
				FusedScore:   fused,
				Variants:     []int{variantIndex},
			}
			continue
		}

		existing.Variants = appendVariant(existing.Variants, variantIndex)
		if fused > existing.FusedScore {
			existing.FusedScore = fused
			existing.LexicalScore = lex
			existing.DenseScore = dns
		}
	}
}

// hydrate fills candidate chunks from the vector store.
func (r *HybridRetriever) hydrate(ctx context.Context, collectionID string, candidates []domain.Candidate) error {
	if len(candidates) == 0 || r.vectors == nil {
		return nil
	}
	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ChunkID
	}
	chunks, err := r.vectors.GetByIDs(ctx, collectionID, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}
	for i := range candidates {
		candidates[i].Chunk = byID[candidates[i].ChunkID]
	}
	return nil
}

// normalizeScores min-max normalizes raw scores into [0, 1]. A list
// with a single score level normalizes to 1.
func normalizeScores(hits []scoredID) map[string]float64 {
	if len(hits) == 0 {
		return nil
	}
	minScore, maxScore := hits[0].score, hits[0].score
	for _, h := range hits[1:] {
		if h.score < minScore {
			minScore = h.score
		}
		if h.score > maxScore {
			maxScore = h.score
		}
	}
	norm := make(map[string]float64, len(hits))
	for _, h := range hits {
		if maxScore == minScore {
			norm[h.id] = 1
		} else {
			norm[h.id] = (h.score - minScore) / (maxScore - minScore)
		}
	}
	return norm
}

// appendVariant inserts an index into a sorted variant slice without
// duplicates.
func appendVariant(variants []int, index int) []int {
	for _, v := range variants {
		if v == index {
			return variants
		}
	}
	variants = append(variants, index)
	sort.Ints(variants)
	return variants
}

// sortCandidates orders candidates by fused score descending, breaking
// ties by earliest contributing variant, then chunk ID.
func sortCandidates(candidates []domain.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := &candidates[i], &candidates[j]
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		if a.FirstVariant() != b.FirstVariant() {
			return a.FirstVariant() < b.FirstVariant()
		}
		return a.ChunkID < b.ChunkID
	})
}
