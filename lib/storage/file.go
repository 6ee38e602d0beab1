// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore persists a blob to a single file on disk. Save writes to
// a temporary file in the same directory and renames it into place,
// so a reader (or a crash mid-write) never observes a partially
// written blob.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore that persists to path, creating
// path's parent directory if it does not exist.
func NewFileStore(path string) (*FileStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: creating directory %s: %w", dir, err)
	}
	return &FileStore{path: path}, nil
}

// Save atomically persists blob to disk.
func (s *FileStore) Save(ctx context.Context, blob []byte) error {
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(blob); err != nil {
		tmpFile.Close()
		return fmt.Errorf("storage: writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("storage: closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("storage: renaming to %s: %w", s.path, err)
	}

	success = true
	return nil
}

// Load reads the persisted blob from disk.
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage: loading %s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("storage: loading %s: %w", s.path, err)
	}
	return data, nil
}
