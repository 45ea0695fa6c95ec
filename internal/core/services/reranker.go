package services

import (
	"context"
	"sort"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// DefaultRerankBatchSize is the number of candidate texts scored per
// cross-encoder call.
const DefaultRerankBatchSize = 16

// Reranker rescores candidates against the original query with a
// cross-encoder. Variants only widen retrieval; final relevance is
// always judged against what the user actually asked.
type Reranker struct {
	encoder   driven.CrossEncoder
	batchSize int
}

// NewReranker creates a reranker. The encoder is optional; when nil,
// Rerank returns candidates in fused-score order.
func NewReranker(encoder driven.CrossEncoder, batchSize int) *Reranker {
	if batchSize <= 0 {
		batchSize = DefaultRerankBatchSize
	}
	return &Reranker{encoder: encoder, batchSize: batchSize}
}

// Rerank scores the original query against each candidate's text and
// re-sorts by cross-encoder score. Any encoder failure falls back to
// fused-score ordering; reranking is never a hard error.
func (r *Reranker) Rerank(ctx context.Context, originalQuery string, candidates []domain.Candidate) []domain.Candidate {
	result := make([]domain.Candidate, len(candidates))
	copy(result, candidates)

	if r.encoder == nil || len(result) == 0 {
		sortCandidates(result)
		return result
	}

	scores, err := r.scoreAll(ctx, originalQuery, result)
	if err != nil {
		logger.Warn("Cross-encoder failed, falling back to fused order: %v", err)
		sortCandidates(result)
		return result
	}

	for i := range result {
		result[i].RerankScore = scores[i]
		result[i].Reranked = true
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := &result[i], &result[j]
		if a.RerankScore != b.RerankScore {
			return a.RerankScore > b.RerankScore
		}
		if a.FusedScore != b.FusedScore {
			return a.FusedScore > b.FusedScore
		}
		return a.ChunkID < b.ChunkID
	})

	logger.Debug("Reranked %d candidates with %s", len(result), r.encoder.ModelName())
	return result
}

// scoreAll runs the cross-encoder over candidates in batches.
func (r *Reranker) scoreAll(ctx context.Context, query string, candidates []domain.Candidate) ([]float64, error) {
	scores := make([]float64, 0, len(candidates))
	for start := 0; start < len(candidates); start += r.batchSize {
		end := start + r.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		texts := make([]string, 0, end-start)
		for _, c := range candidates[start:end] {
			texts = append(texts, c.Chunk.Text)
		}
		batch, err := r.encoder.ScorePairs(ctx, query, texts)
		if err != nil {
			return nil, err
		}
		scores = append(scores, batch...)
	}
	return scores, nil
}
