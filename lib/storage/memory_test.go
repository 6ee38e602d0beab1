// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	var store MemoryStore
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before any Save = %v, want ErrNotFound", err)
	}

	if err := store.Save(ctx, []byte("blob")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "blob" {
		t.Fatalf("Load = %q, want %q", got, "blob")
	}
}

func TestMemoryStoreLoadDoesNotAliasSaved(t *testing.T) {
	var store MemoryStore
	ctx := context.Background()

	original := []byte("blob")
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save: %v", err)
	}
	original[0] = 'X'

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "blob" {
		t.Fatalf("Load = %q, want %q (mutating the caller's slice after Save should not affect the store)", got, "blob")
	}
}
