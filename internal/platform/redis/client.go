// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the Redis-backed persistent store.

A shared Redis instance lets several front ends of the same user (a terminal
and a kiosk, say) observe one session and one cart. Each front end issues at
most one command batch at a time, so the pool stays small.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/flavorfi/internal/platform/constants"
)

const (
	poolSize     = 2
	ioTimeout    = 2 * time.Second
	dialTimeout  = 3 * time.Second
	probeTimeout = 2 * time.Second
)

// NewClient parses redisURL, tunes the options for a single-user client and
// probes the server. The caller owns the returned client.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	opts.ClientName = constants.AppName
	opts.PoolSize = poolSize
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout

	client := redis.NewClient(opts)
	if err := probe(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Debug("redis_store_connected", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return client, nil
}

func probe(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: server unreachable: %w", err)
	}
	return nil
}
