package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/blockflow"
	"github.com/aretw0/blockflow/internal/adapters/file"
	"github.com/aretw0/blockflow/internal/config"
	"github.com/aretw0/blockflow/pkg/adapters/memory"
	"github.com/aretw0/blockflow/pkg/adapters/redis"
	"github.com/aretw0/blockflow/pkg/adapters/sqlite"
	"github.com/aretw0/blockflow/pkg/graph"
	"github.com/aretw0/blockflow/pkg/ports"
)

// DefaultSQLitePath is used when the sqlite store has no path configured.
var DefaultSQLitePath = filepath.Join(".blockflow", "workflows.db")

// CloseFunc releases whatever the factory opened.
type CloseFunc func() error

// CreateEngine initializes an Engine with the store, locker and traversal
// settings described by cfg. Extra options are applied last.
func CreateEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...blockflow.Option) (*blockflow.Engine, CloseFunc, error) {
	store, locker, closeFn, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("store opened", "kind", cfg.Store.Kind)

	opts := []blockflow.Option{
		blockflow.WithStore(store),
		blockflow.WithLogger(logger),
		blockflow.WithMetadata(cfg.Workflow.Name, cfg.Workflow.Version),
	}
	if traversal := TraversalOptions(cfg); len(traversal) > 0 {
		opts = append(opts, blockflow.WithTraversal(traversal...))
	}
	if locker != nil {
		opts = append(opts, blockflow.WithLocker(locker, 0))
	}
	opts = append(opts, extra...)

	return blockflow.New(opts...), closeFn, nil
}

// TraversalOptions returns the path enumeration options selected by cfg.
func TraversalOptions(cfg config.Config) []graph.Option {
	if !cfg.Workflow.Exhaustive {
		return nil
	}
	return []graph.Option{graph.WithExhaustive(cfg.Workflow.MaxDepth)}
}

func noop() error { return nil }

func openStore(ctx context.Context, cfg config.StoreConfig) (ports.WorkflowStore, ports.DistributedLocker, CloseFunc, error) {
	switch cfg.Kind {
	case "", config.StoreMemory:
		return memory.NewStore(), nil, noop, nil

	case config.StoreFile:
		return file.New(cfg.Path, file.WithFormat(file.Format(cfg.Format))), nil, noop, nil

	case config.StoreSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultSQLitePath
		}
		if path != ":memory:" {
			if err := ensureDir(filepath.Dir(path)); err != nil {
				return nil, nil, nil, err
			}
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store.Close, nil

	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		prefix := redis.DefaultPrefix
		if cfg.Redis.Prefix != "" {
			prefix = cfg.Redis.Prefix
			opts = append(opts, redis.WithPrefix(prefix))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		return store, redis.NewLocker(store.Client(), prefix), store.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
