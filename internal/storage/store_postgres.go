// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/flavorfi/internal/platform/dberr"
)

// PostgresStore implements [Store] on the kv_entries table.
// The table is created by the migration package before the store is used.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed store. The store owns the pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", dberr.Wrap(err, "postgres_store_get")
	}
	return value, nil
}

func (s *PostgresStore) Apply(ctx context.Context, mutations ...Mutation) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		for _, m := range mutations {
			var err error
			if m.Delete {
				_, err = tx.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, m.Key)
			} else {
				_, err = tx.Exec(ctx, `
					INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, now())
					ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
				`, m.Key, m.Value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dberr.Wrap(err, "postgres_store_apply")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
