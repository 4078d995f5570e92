// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage implements the Persistent Store: a durable key/value store that
survives process restarts and holds serialized session and cart snapshots.

# Architecture

The store is a durability mechanism, not a source of truth. The session and
cart managers own their state in memory and write a full snapshot through
[Store.Apply] on every mutation. Each manager works inside its own
[Namespace], so key spaces never overlap and no cross-manager locking is needed.

Backends:

  - [MemoryStore]: process-local, used by tests and ephemeral front ends.
  - [FileStore]: a single JSON document replaced atomically on every write.
  - [SQLiteStore]: the default local backend (modernc, no cgo).
  - [RedisStore]: shared by several front ends of the same user.
  - [PostgresStore]: shared, with the schema created by golang-migrate.
*/
package storage

import (
	"context"

	"github.com/taibuivan/flavorfi/internal/platform/apperr"
)

// ErrNotFound is returned by [Store.Get] when the key holds no value.
var ErrNotFound = apperr.NotFound("Key")

// Store is the contract every backend implements.
type Store interface {

	/*
		Get returns the value stored under key.

		Parameters:
		  - ctx: context.Context
		  - key: string

		Returns:
		  - string: Stored value
		  - error: ErrNotFound when absent, backend failures otherwise
	*/
	Get(ctx context.Context, key string) (string, error)

	/*
		Apply writes a batch of puts and deletes. Either every mutation
		becomes visible or none does.

		Parameters:
		  - ctx: context.Context
		  - mutations: ...Mutation

		Returns:
		  - error: Backend failures
	*/
	Apply(ctx context.Context, mutations ...Mutation) error

	// Close releases the backend's resources.
	Close() error
}

// Mutation is a single put or delete inside an [Store.Apply] batch.
type Mutation struct {
	Key    string
	Value  string
	Delete bool
}

// Put builds a mutation that stores value under key.
func Put(key, value string) Mutation {
	return Mutation{Key: key, Value: value}
}

// Remove builds a mutation that deletes key. Removing an absent key is not an error.
func Remove(key string) Mutation {
	return Mutation{Key: key, Delete: true}
}
