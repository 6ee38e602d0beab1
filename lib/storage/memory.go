// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore holds a blob in memory. Safe for concurrent use; used
// in tests where a filesystem is unnecessary ceremony.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte
	set  bool
}

// Save replaces the stored blob with a copy of blob.
func (s *MemoryStore) Save(ctx context.Context, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = append([]byte(nil), blob...)
	s.set = true
	return nil
}

// Load returns a copy of the stored blob.
func (s *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, fmt.Errorf("storage: loading in-memory blob: %w", ErrNotFound)
	}
	return append([]byte(nil), s.blob...), nil
}
