package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Pipeline defaults.
const (
	// DefaultTopK is the candidate cap for ordinary queries.
	DefaultTopK = 20

	// DefaultSynthesisTopK is the wider cap for synthesis queries.
	DefaultSynthesisTopK = 30
)

// Ensure QueryService implements the driving ports.
var (
	_ driving.QueryService = (*QueryService)(nil)
	_ driving.CacheAdmin   = (*QueryService)(nil)
)

// PipelineOptions configures the answer pipeline. Zero values fall back
// to package defaults.
type PipelineOptions struct {
	TopK             int
	SynthesisTopK    int
	CharBudget       int
	MinUniqueSources int
}

func (o PipelineOptions) withDefaults() PipelineOptions {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SynthesisTopK <= 0 {
		o.SynthesisTopK = DefaultSynthesisTopK
	}
	return o
}

// QueryService runs the full retrieval pipeline: cache lookup,
// classification, variant generation, fan-out hybrid retrieval,
// reranking, context assembly, and the cache write-back.
type QueryService struct {
	embedder driven.EmbeddingService
	router   *CollectionRouter
	reranker *Reranker
	cache    *QueryCache
	opts     PipelineOptions
}

// NewQueryService creates the pipeline service. The embedder is
// optional; without it retrieval is lexical-only and the semantic cache
// tier never matches.
func NewQueryService(
	embedder driven.EmbeddingService,
	router *CollectionRouter,
	reranker *Reranker,
	cache *QueryCache,
	opts PipelineOptions,
) *QueryService {
	return &QueryService{
		embedder: embedder,
		router:   router,
		reranker: reranker,
		cache:    cache,
		opts:     opts.withDefaults(),
	}
}

// AnswerQuery answers one query with assembled, deduplicated evidence.
//
// Control flow: validate, exact cache, semantic cache, resolve target
// collections, classify, generate variants, fan-out retrieve, rerank
// against the original query, assemble, cache write. Partial failures
// surface as warnings; domain.ErrRetrievalFailed is returned only when
// every retrieval path across every targeted collection failed or
// produced nothing.
func (s *QueryService) AnswerQuery(ctx context.Context, query string, opts driving.QueryOptions) (*domain.Answer, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, domain.ErrInvalidQuery
	}

	requestID := uuid.NewString()[:8]
	logger.Section("Query Pipeline")
	logger.Info("[%s] Query: %q scope=%v", requestID, trimmed, opts.Collections)

	normalized := domain.NormalizeQuery(trimmed)
	cacheKey := domain.ExactCacheKey(normalized, opts.Collections)

	// Exact tier first: a hit short-circuits before any collaborator call.
	if answer, ok := s.cache.GetExact(ctx, cacheKey); ok {
		answer.CacheHit = domain.CacheHitExact
		logger.Info("[%s] Exact cache hit", requestID)
		return answer, nil
	}

	// The semantic tier needs the query embedding; an embedding failure
	// just skips the tier and dense retrieval degrades separately below.
	var queryVec []float32
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, normalized)
		if err != nil {
			logger.Warn("[%s] Query embedding failed, semantic tier skipped: %v", requestID, err)
		} else {
			queryVec = vec
		}
	}
	if answer, similarity, ok := s.cache.GetSemantic(ctx, queryVec); ok {
		answer.CacheHit = domain.CacheHitSemantic
		answer.CacheSimilarity = similarity
		logger.Info("[%s] Semantic cache hit: similarity=%.3f", requestID, similarity)
		return answer, nil
	}

	collections, err := s.router.Route(ctx, opts.Collections)
	if err != nil {
		return nil, fmt.Errorf("resolve collections (%v): %w", err, domain.ErrRetrievalFailed)
	}

	classification := Classify(trimmed)
	isSynthesis := classification.IsSynthesis
	if opts.SynthesisOverride != nil {
		isSynthesis = *opts.SynthesisOverride
	}
	logger.Debug("[%s] Synthesis=%t signals=%v", requestID, isSynthesis, classification.Signals)

	record := domain.QueryRecord{
		Raw:               query,
		Normalized:        normalized,
		IsSynthesis:       isSynthesis,
		Variants:          GenerateVariants(trimmed, isSynthesis),
		TargetCollections: collections,
	}
	logger.Debug("[%s] Variants: %v", requestID, record.Variants)

	variants := s.prepareVariants(ctx, requestID, record.Variants)

	topK := s.opts.TopK
	if isSynthesis {
		topK = s.opts.SynthesisTopK
	}

	candidates, warnings, err := s.router.FanOut(ctx, collections, variants, topK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates across %d collection(s): %w", len(collections), domain.ErrRetrievalFailed)
	}

	ranked := s.reranker.Rerank(ctx, trimmed, candidates)

	answer := AssembleContext(ranked, AssembleOptions{
		CharBudget:       s.opts.CharBudget,
		MinUniqueSources: s.opts.MinUniqueSources,
		IsSynthesis:      isSynthesis,
		Query:            trimmed,
	})
	answer.Warnings = append(warnings, answer.Warnings...)

	// Write-back requires a complete run: an answer missing a skipped
	// collection must not outlive the outage it reflects.
	if len(warnings) == 0 {
		s.cache.PutExact(ctx, cacheKey, &answer)
		s.cache.PutSemantic(ctx, queryVec, trimmed, &answer)
	} else {
		logger.Debug("[%s] Partial result (%d collection(s) skipped), cache write skipped", requestID, len(warnings))
	}

	logger.Info("[%s] Answered: %d sources, %d chars, %d warning(s)",
		requestID, len(answer.Sources), len(answer.ContextText), len(answer.Warnings))
	return &answer, nil
}

// ClearCaches empties both cache tiers.
func (s *QueryService) ClearCaches(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// prepareVariants pairs variant texts with their embeddings. A batch
// embedding failure degrades every variant to lexical-only retrieval.
func (s *QueryService) prepareVariants(ctx context.Context, requestID string, texts []string) []QueryVariant {
	variants := make([]QueryVariant, len(texts))
	for i, text := range texts {
		variants[i] = QueryVariant{Index: i, Text: text}
	}
	if s.embedder == nil {
		return variants
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Warn("[%s] Variant embedding failed, lexical-only retrieval: %v", requestID, err)
		return variants
	}
	for i := range variants {
		if i < len(embeddings) {
			variants[i].Embedding = embeddings[i]
		}
	}
	return variants
}
