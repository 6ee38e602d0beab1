// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "team.blob")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("Load = %q, want %q", got, "first")
	}

	if err := store.Save(ctx, []byte("second")); err != nil {
		t.Fatalf("Save (overwrite): %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("Load after overwrite = %q, want %q", got, "second")
	}

	// no stray temp files should survive a successful save.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory has %d entries after save, want 1 (just the nested dir)", len(entries))
	}
}

func TestFileStoreLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(filepath.Join(dir, "team.blob"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, err = store.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load error = %v, want ErrNotFound", err)
	}
}
