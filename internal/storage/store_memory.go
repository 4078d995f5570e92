// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in a map. It survives nothing but is handy in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *MemoryStore) Apply(_ context.Context, mutations ...Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	applyTo(s.entries, mutations)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// applyTo executes a batch against a plain map.
func applyTo(entries map[string]string, mutations []Mutation) {
	for _, m := range mutations {
		if m.Delete {
			delete(entries, m.Key)
			continue
		}
		entries[m.Key] = m.Value
	}
}
