// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every entry in one JSON document.
//
// Reads go to disk each time, so another process writing the same file is
// observed on the next read. Writes land in a temporary file that replaces the
// document with a rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore prepares a file-backed store at path. The file is created lazily.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("file_store_mkdir_failed: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", err
	}

	value, ok := entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *FileStore) Apply(_ context.Context, mutations ...Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}

	applyTo(entries, mutations)
	return s.write(entries)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("file_store_read_failed: %w", err)
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("file_store_decode_failed: %w", err)
	}
	return entries, nil
}

func (s *FileStore) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("file_store_encode_failed: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".flavorfi-*.tmp")
	if err != nil {
		return fmt.Errorf("file_store_write_failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file_store_write_failed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file_store_sync_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file_store_write_failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("file_store_rename_failed: %w", err)
	}
	return nil
}
