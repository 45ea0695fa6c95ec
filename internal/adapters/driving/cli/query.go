package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/embedding/openai"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/rerank/jina"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern-cli/internal/config"
	"github.com/lectern-labs/lectern-cli/internal/core/domain"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driving"
	"github.com/lectern-labs/lectern-cli/internal/core/services"
)

var (
	queryChunksFile  string
	queryCollections []string
	querySynthesis   string
	queryJSON        bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question with evidence from indexed chunks",
	Long: `Runs the retrieval pipeline over a chunk index loaded from a JSON
dump (as exported by the indexing service) and prints the assembled
evidence context with its source manifest.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryChunksFile, "chunks", "", "path to a JSON chunk index dump (required)")
	queryCmd.Flags().StringSliceVarP(&queryCollections, "collections", "c", nil, "restrict search to these collections (default: all)")
	queryCmd.Flags().StringVar(&querySynthesis, "synthesis", "auto", "synthesis handling: auto, on, or off")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	_ = queryCmd.MarkFlagRequired("chunks")
	rootCmd.AddCommand(queryCmd)
}

// chunkRecord is one entry of a chunk index dump: a chunk plus its
// precomputed embedding.
type chunkRecord struct {
	domain.Chunk
	Embedding []float32 `json:"embedding,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, cleanup, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := driving.QueryOptions{Collections: queryCollections}
	switch querySynthesis {
	case "auto":
	case "on":
		forced := true
		opts.SynthesisOverride = &forced
	case "off":
		forced := false
		opts.SynthesisOverride = &forced
	default:
		return fmt.Errorf("invalid --synthesis value %q (want auto, on, or off)", querySynthesis)
	}

	answer, err := service.AnswerQuery(ctx, args[0], opts)
	if errors.Is(err, domain.ErrInvalidQuery) {
		return errors.New("query must not be empty")
	}
	if errors.Is(err, domain.ErrRetrievalFailed) {
		return errors.New("no relevant information found")
	}
	if err != nil {
		return fmt.Errorf("answer query: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return printAnswer(cmd, answer)
}

// loadConfig resolves the config path and loads it.
func loadConfig() (config.Config, error) {
	path := flagConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve config path: %w", err)
		}
	}
	return config.Load(path)
}

// buildPipeline wires adapters and services from configuration.
func buildPipeline(ctx context.Context, cfg config.Config) (*services.QueryService, func(), error) {
	lexical := memory.NewLexicalIndex()
	vectors := memory.NewVectorStore()
	if err := loadChunkIndex(queryChunksFile, lexical, vectors); err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var embedder driven.EmbeddingService
	if cfg.Embedding.Enabled {
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.Embedding.APIKey,
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("embedding service: %w", err)
		}
		closers = append(closers, func() { _ = svc.Close() })
		embedder = svc
	}

	var encoder driven.CrossEncoder
	if cfg.Rerank.Enabled {
		ce, err := jina.NewCrossEncoder(jina.Config{
			APIKey:  cfg.Rerank.APIKey,
			BaseURL: cfg.Rerank.BaseURL,
			Model:   cfg.Rerank.Model,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("cross-encoder: %w", err)
		}
		closers = append(closers, func() { _ = ce.Close() })
		encoder = ce
	}

	cacheStore, err := buildCacheStore(ctx, cfg.Cache)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cacheStore != nil {
		closers = append(closers, func() { _ = cacheStore.Close() })
	}

	retriever := services.NewHybridRetriever(lexical, vectors, services.RetrieverOptions{
		LexicalTopN:   cfg.Retrieval.LexicalTopN,
		DenseTopN:     cfg.Retrieval.DenseTopN,
		LexicalWeight: cfg.Retrieval.LexicalWeight,
		DenseWeight:   cfg.Retrieval.DenseWeight,
	})
	router := services.NewCollectionRouter(retriever, vectors, services.RouterOptions{
		PoolSize:          cfg.Router.PoolSize,
		CollectionTimeout: cfg.Router.CollectionTimeout(),
	})
	reranker := services.NewReranker(encoder, cfg.Rerank.BatchSize)
	cache := services.NewQueryCache(cacheStore, memory.NewSemanticStore(cfg.Cache.SemanticCapacity), services.CacheOptions{
		ExactTTL:            cfg.Cache.ExactTTL(),
		SemanticTTL:         cfg.Cache.SemanticTTL(),
		SimilarityThreshold: cfg.Cache.SimilarityThreshold,
	})

	service := services.NewQueryService(embedder, router, reranker, cache, services.PipelineOptions{
		TopK:             cfg.Retrieval.TopK,
		SynthesisTopK:    cfg.Retrieval.SynthesisTopK,
		CharBudget:       cfg.Assembly.CharBudget,
		MinUniqueSources: cfg.Assembly.MinUniqueSources,
	})
	return service, cleanup, nil
}

// loadChunkIndex seeds the in-memory indexes from a JSON dump.
func loadChunkIndex(path string, lexical *memory.LexicalIndex, vectors *memory.VectorStore) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read chunk index %s: %w", path, err)
	}
	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse chunk index %s: %w", path, err)
	}
	for _, rec := range records {
		lexical.Add(rec.Chunk)
		vectors.Add(rec.Chunk, rec.Embedding)
	}
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) error {
	if answer.CacheHit != domain.CacheHitNone {
		cmd.Printf("Cache: %s", answer.CacheHit)
		if answer.CacheHit == domain.CacheHitSemantic {
			cmd.Printf(" (similarity %.3f)", answer.CacheSimilarity)
		}
		cmd.Println()
	}
	for _, warning := range answer.Warnings {
		cmd.Printf("Warning: %s\n", warning)
	}

	cmd.Println(answer.ContextText)
	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (collection %s, %d chunk(s))\n", i+1, src.SourceFileID, src.CollectionID, len(src.ChunkIDs))
		for _, h := range src.Highlights {
			cmd.Printf("      %s\n", h)
		}
	}
	return nil
}
