// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres connects the Postgres-backed persistent store.
//
// It only manages connections (pgxpool); the key/value adapter lives in
// [storage] and the schema in [migration].
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
)

// A client process runs one store operation at a time.
const (
	maxConns         = 2
	maxConnIdleTime  = 5 * time.Minute
	connectTimeout   = 5 * time.Second
	statementTimeout = 5 * time.Second
)

// NewPool opens a small pool for dsn and verifies it with a ping.
// The caller owns the returned pool.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	// Store statements touch a handful of rows; anything slower is a stuck server.
	params := cfg.ConnConfig.RuntimeParams
	params["application_name"] = constants.AppName
	params["statement_timeout"] = fmt.Sprintf("%d", statementTimeout.Milliseconds())

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: server unreachable: %w", err)
	}

	logger.Debug("postgres_store_connected", slog.String("host", cfg.ConnConfig.Host))
	return pool, nil
}
