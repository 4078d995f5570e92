// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration creates the key/value table the shared Postgres store
// reads and writes.
//
// The SQL lives inside the binary, so a terminal client only needs a DSN.
// Several FlavorFi installs may point at one database; they all converge on
// the same schema version and never step on another tool's migration table.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// VersionTable tracks the applied schema version of the kv_entries table.
const VersionTable = "flavorfi_schema_migrations"

//go:embed sql/*.sql
var migrationFiles embed.FS

// RunUp brings the kv_entries schema to the latest version. Running it on an
// up-to-date database is a no-op.
func RunUp(dsn string, logger *slog.Logger) error {
	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return fmt.Errorf("migration: embedded sql: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, convertToPgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: connect: %w", err)
	}
	m.Log = migrateLogger{logger: logger}
	defer closeMigrator(m, logger)

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		before = 0
	case err != nil:
		return fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return fmt.Errorf("migration: %s is dirty at version %d", VersionTable, before)
	}

	if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("store_schema_current", slog.Uint64("version", uint64(before)))
		return nil
	} else if err != nil {
		return fmt.Errorf("migration: up: %w", err)
	}

	after, _, _ := m.Version()
	logger.Info("store_schema_migrated",
		slog.Uint64("from", uint64(before)),
		slog.Uint64("to", uint64(after)),
	)
	return nil
}

func closeMigrator(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		logger.Warn("store_schema_close_failed", slog.Any("error", err))
	}
}

// convertToPgx5DSN rewrites a postgres URL for the pgx5 migrate driver and
// pins the version table unless the caller already chose one.
func convertToPgx5DSN(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			dsn = "pgx5://" + rest
			break
		}
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	query := u.Query()
	if query.Get("x-migrations-table") == "" {
		query.Set("x-migrations-table", VersionTable)
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// migrateLogger sends golang-migrate chatter to slog at debug level.
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l migrateLogger) Verbose() bool { return false }
