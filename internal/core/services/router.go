package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/logger"
)

// Router defaults.
const (
	// DefaultPoolSize bounds concurrent per-collection retrievals.
	DefaultPoolSize = 5

	// DefaultCollectionTimeout converts a slow collection into a
	// skipped one.
	DefaultCollectionTimeout = 4 * time.Second
)

// RouterOptions configures the collection router. Zero values fall back
// to package defaults.
type RouterOptions struct {
	PoolSize          int
	CollectionTimeout time.Duration
}

func (o RouterOptions) withDefaults() RouterOptions {
	if o.PoolSize <= 0 {
		o.PoolSize = DefaultPoolSize
	}
	if o.CollectionTimeout <= 0 {
		o.CollectionTimeout = DefaultCollectionTimeout
	}
	return o
}

// CollectionRouter resolves the target collection set for a query and
// fans retrieval out across it with a bounded worker pool.
type CollectionRouter struct {
	retriever *HybridRetriever
	catalog   driven.CollectionCatalog
	opts      RouterOptions
}

// NewCollectionRouter creates a collection router.
func NewCollectionRouter(retriever *HybridRetriever, catalog driven.CollectionCatalog, opts RouterOptions) *CollectionRouter {
	return &CollectionRouter{
		retriever: retriever,
		catalog:   catalog,
		opts:      opts.withDefaults(),
	}
}

// Route resolves the target collections for a request. An explicit
// scope passes through untouched; an empty scope expands to every
// collection the catalog knows.
func (r *CollectionRouter) Route(ctx context.Context, scope []string) ([]string, error) {
	if len(scope) > 0 {
		return scope, nil
	}
	if r.catalog == nil {
		return nil, domain.ErrNoCollections
	}
	collections, err := r.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	ids := make([]string, 0, len(collections))
	for _, c := range collections {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return nil, domain.ErrNoCollections
	}
	return ids, nil
}

// FanOut executes the query variants against every target collection
// concurrently and concatenates the tagged results.
//
// Workers run under a bounded pool with a per-collection timeout; a
// collection that errors or times out is skipped with a warning while
// the remaining collections still contribute. Fusion and ordering run
// synchronously after the fan-in join: no candidate proceeds until all
// collection fetches completed or were marked failed. The error is
// domain.ErrRetrievalFailed only when every collection failed.
func (r *CollectionRouter) FanOut(ctx context.Context, collectionIDs []string, variants []QueryVariant, topK int) ([]domain.Candidate, []string, error) {
	var (
		group     errgroup.Group
		mu        sync.Mutex
		all       []domain.Candidate
		warnings  []string
		succeeded int
	)
	group.SetLimit(r.opts.PoolSize)

	logger.Debug("Fanning out %d variant(s) across %d collection(s), pool=%d", len(variants), len(collectionIDs), r.opts.PoolSize)

	for _, collectionID := range collectionIDs {
		collectionID := collectionID
		group.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, r.opts.CollectionTimeout)
			defer cancel()

			candidates, err := r.retriever.Retrieve(cctx, collectionID, variants, topK)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warning := fmt.Sprintf("collection %s skipped: %v", collectionID, err)
				warnings = append(warnings, warning)
				logger.Warn("%s", warning)
				return nil
			}
			all = append(all, candidates...)
			succeeded++
			return nil
		})
	}

	// Join barrier: workers never return errors, Wait only synchronizes.
	_ = group.Wait()

	if succeeded == 0 {
		return nil, warnings, fmt.Errorf("all %d collection(s) failed: %w", len(collectionIDs), domain.ErrRetrievalFailed)
	}

	sortCandidates(all)
	return all, warnings, nil
}
