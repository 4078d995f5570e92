// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taibuivan/flavorfi/internal/platform/dberr"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
`

// SQLiteStore implements [Store] on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database and creates the table if needed.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, dberr.Wrap(err, "sqlite_store_schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", dberr.Wrap(err, "sqlite_store_get")
	}
	return value, nil
}

func (s *SQLiteStore) Apply(ctx context.Context, mutations ...Mutation) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dberr.Wrap(err, "sqlite_store_begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, m := range mutations {
		if m.Delete {
			_, err = tx.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, m.Key)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
			`, m.Key, m.Value, now)
		}
		if err != nil {
			return dberr.Wrap(err, "sqlite_store_apply")
		}
	}

	if err = tx.Commit(); err != nil {
		return dberr.Wrap(err, "sqlite_store_commit")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
