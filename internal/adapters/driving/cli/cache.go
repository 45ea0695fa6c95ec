package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	cacheredis "github.com/lectern-labs/lectern-cli/internal/adapters/driven/cache/redis"
	cachesqlite "github.com/lectern-labs/lectern-cli/internal/adapters/driven/cache/sqlite"
	"github.com/lectern-labs/lectern-cli/internal/adapters/driven/storage/memory"
	"github.com/lectern-labs/lectern-cli/internal/config"
	"github.com/lectern-labs/lectern-cli/internal/core/ports/driven"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the query cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached query answers",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Cache.Backend == "" || cfg.Cache.Backend == "memory" {
		cmd.Println("Cache backend is in-memory; nothing persisted to clear.")
		return nil
	}

	store, err := buildCacheStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}

// buildCacheStore returns the configured exact-tier backend.
func buildCacheStore(ctx context.Context, cfg config.CacheConfig) (driven.CacheStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return memory.NewCacheStore(), nil
	case "sqlite":
		store, err := cachesqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("sqlite cache: %w", err)
		}
		return store, nil
	case "redis":
		store, err := cacheredis.NewStore(ctx, cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want memory, sqlite, or redis)", cfg.Backend)
	}
}
