// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/flavorfi/internal/platform/dberr"
)

// RedisStore implements [Store] using Redis strings.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed store. The store owns the client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Get retrieves the value stored under key.

Returns:
  - string: Stored value
  - error: ErrNotFound or connectivity errors
*/
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", dberr.Wrap(err, "redis_store_get")
	}
	return value, nil
}

/*
Apply writes the batch inside MULTI/EXEC so readers never see half of it.
Keys carry no TTL; session expiry is enforced by the session manager.
*/
func (s *RedisStore) Apply(ctx context.Context, mutations ...Mutation) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range mutations {
			if m.Delete {
				pipe.Del(ctx, m.Key)
				continue
			}
			pipe.Set(ctx, m.Key, m.Value, 0)
		}
		return nil
	})
	if err != nil {
		return dberr.Wrap(err, "redis_store_apply")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
