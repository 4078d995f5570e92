// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/flavorfi/internal/platform/config"
	"github.com/taibuivan/flavorfi/internal/platform/migration"
	"github.com/taibuivan/flavorfi/internal/platform/postgres"
	redisclient "github.com/taibuivan/flavorfi/internal/platform/redis"
	"github.com/taibuivan/flavorfi/internal/platform/sqlite"
)

// Open selects and connects the backend named by cfg.StoreDriver.
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	logger.Debug("store_opening", slog.String("driver", cfg.StoreDriver))

	switch cfg.StoreDriver {
	case config.DriverMemory:
		return NewMemoryStore(), nil

	case config.DriverFile:
		return NewFileStore(cfg.StorePath)

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.StorePath)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil

	case config.DriverRedis:
		client, err := redisclient.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return shared(NewRedisStore(client), cfg), nil

	case config.DriverPostgres:
		if err := migration.RunUp(cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return shared(NewPostgresStore(pool), cfg), nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StoreDriver)
	}
}

// shared scopes a backend that other installations may also use to this
// installation's namespace. Closing the result closes the backend.
func shared(store Store, cfg *config.Config) Store {
	if cfg.StoreNamespace == "" {
		return store
	}
	return &namespaced{parent: store, prefix: cfg.StoreNamespace + ":", owns: true}
}
