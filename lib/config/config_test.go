// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Connection.Timeout != "30s" {
		t.Errorf("expected connection.timeout=30s, got %s", cfg.Connection.Timeout)
	}
	if cfg.KDF.MemoryKiB != 64*1024 {
		t.Errorf("expected kdf.memory_kib=65536, got %d", cfg.KDF.MemoryKiB)
	}
}

func TestLoad_RequiresConcordConfig(t *testing.T) {
	origConfig := os.Getenv("CONCORD_CONFIG")
	defer os.Setenv("CONCORD_CONFIG", origConfig)
	os.Unsetenv("CONCORD_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when CONCORD_CONFIG not set, got nil")
	}
	expectedMsg := "CONCORD_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithConcordConfig(t *testing.T) {
	origConfig := os.Getenv("CONCORD_CONFIG")
	defer os.Setenv("CONCORD_CONFIG", origConfig)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "concord.yaml")
	configContent := `
environment: staging
paths:
  root: /test/root
connection:
  listen_address: 0.0.0.0:9000
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	os.Setenv("CONCORD_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}
	if cfg.Connection.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen_address=0.0.0.0:9000, got %s", cfg.Connection.ListenAddress)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "concord.yaml")
	configContent := `
environment: production

paths:
  root: /default/root

connection:
  timeout: 30s

production:
  paths:
    root: /prod/root
  connection:
    timeout: 5s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}
	if cfg.Connection.Timeout != "5s" {
		t.Errorf("expected connection.timeout=5s, got %s", cfg.Connection.Timeout)
	}
}

func TestProductionDefaultOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "concord.yaml")
	// No explicit "production:" section — applyEnvironmentOverrides
	// should still tighten the handshake timeout.
	configContent := `
environment: production
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Connection.Timeout != "10s" {
		t.Errorf("expected production default connection.timeout=10s, got %s", cfg.Connection.Timeout)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	origRoot := os.Getenv("CONCORD_ROOT")
	defer os.Setenv("CONCORD_ROOT", origRoot)
	os.Setenv("CONCORD_ROOT", "/env/root")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "concord.yaml")
	configContent := `
environment: development
paths:
  root: /file/root
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Paths.Root != "/file/root" {
		t.Errorf("expected root=/file/root from file, got %s (env vars should not override)", cfg.Paths.Root)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{input: "${HOME}/concord", vars: map[string]string{"HOME": "/home/user"}, expected: "/home/user/concord"},
		{input: "${MISSING:-default}", vars: map[string]string{}, expected: "default"},
		{input: "${PRESENT:-default}", vars: map[string]string{"PRESENT": "value"}, expected: "value"},
		{input: "no variables here", vars: map[string]string{}, expected: "no variables here"},
	}
	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}, wantErr: false},
		{name: "invalid environment", modify: func(c *Config) { c.Environment = "invalid" }, wantErr: true},
		{name: "empty root path", modify: func(c *Config) { c.Paths.Root = "" }, wantErr: true},
		{name: "empty listen address", modify: func(c *Config) { c.Connection.ListenAddress = "" }, wantErr: true},
		{name: "invalid timeout", modify: func(c *Config) { c.Connection.Timeout = "not-a-duration" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.Paths.Root = filepath.Join(tmpDir, "concord")
	cfg.Paths.State = filepath.Join(cfg.Paths.Root, "state")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}
	for _, path := range []string{cfg.Paths.Root, cfg.Paths.State} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}

func TestStretchParamsDefaultsZeroFields(t *testing.T) {
	var kdf KDFConfig
	params := kdf.StretchParams()
	if params.Time == 0 || params.MemoryKiB == 0 || params.Threads == 0 || params.KeyLength == 0 {
		t.Errorf("StretchParams() left a zero field from the unset KDFConfig: %+v", params)
	}
}
