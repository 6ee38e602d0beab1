// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for concord.
//
// Configuration is loaded from a single file specified by:
//   - CONCORD_CONFIG environment variable ([Load]), or
//   - an explicit path passed to [LoadFile]
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections
// (development, staging, production) that override base values when
// the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/concord/lib/crypto"
)

// Environment identifies the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the master configuration for a concord host.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Paths configures where a team instance's state lives on disk.
	Paths PathsConfig `yaml:"paths"`

	// Connection configures the spec §4.F pairwise connection
	// protocol.
	Connection ConnectionConfig `yaml:"connection"`

	// KDF configures the Argon2id cost parameters used to stretch
	// invitation secrets and keyset seeds (spec §4.B `stretch`).
	KDF KDFConfig `yaml:"kdf"`

	// EnvironmentOverrides contains per-environment overrides,
	// applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per
// environment.
type ConfigOverrides struct {
	Paths      *PathsConfig      `yaml:"paths,omitempty"`
	Connection *ConnectionConfig `yaml:"connection,omitempty"`
	KDF        *KDFConfig        `yaml:"kdf,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Root is the base directory for concord's on-disk data; the
	// default State directory lives beneath it.
	Root string `yaml:"root"`

	// State is where per-team save files (the
	// [lib/storage.FileStore]-backed graph/keyring blob a
	// [lib/core.Team.Save] writes) are written, one per team a host
	// participates in.
	State string `yaml:"state"`
}

// ConnectionConfig configures [lib/connection.Connection].
type ConnectionConfig struct {
	// Timeout is the handshake deadline (spec §4.F's 30s default):
	// how long a connection waits for forward progress before
	// failing. Parsed with [time.ParseDuration].
	Timeout string `yaml:"timeout"`

	// ListenAddress is the address a host's [lib/transport.Listener]
	// binds to accept incoming peer connections.
	ListenAddress string `yaml:"listen_address"`
}

// TimeoutDuration parses c.Timeout, returning fallback if it is unset
// or unparsable.
func (c ConnectionConfig) TimeoutDuration(fallback time.Duration) time.Duration {
	if c.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fallback
	}
	return d
}

// KDFConfig configures Argon2id stretching cost. The zero value
// means "use [lib/crypto.DefaultStretchParams]" — Time of 0 is never
// a valid Argon2id parameter on its own, so it doubles as "unset".
type KDFConfig struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
}

// StretchParams converts c to [lib/crypto.StretchParams], defaulting
// unset (zero) fields from [lib/crypto.DefaultStretchParams] rather
// than leaving them at an Argon2id-invalid zero.
func (c KDFConfig) StretchParams() crypto.StretchParams {
	defaults := crypto.DefaultStretchParams()
	params := crypto.StretchParams{
		Time:      c.Time,
		MemoryKiB: c.MemoryKiB,
		Threads:   c.Threads,
		KeyLength: defaults.KeyLength,
	}
	if params.Time == 0 {
		params.Time = defaults.Time
	}
	if params.MemoryKiB == 0 {
		params.MemoryKiB = defaults.MemoryKiB
	}
	if params.Threads == 0 {
		params.Threads = defaults.Threads
	}
	return params
}

// Default returns the default configuration. These defaults exist
// primarily to ensure every field has a sensible zero-value, not as a
// fallback for a missing config file — [Load] still requires one.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "concord")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:  defaultRoot,
			State: filepath.Join(defaultRoot, "state"),
		},
		Connection: ConnectionConfig{
			Timeout:       "30s",
			ListenAddress: "127.0.0.1:7420",
		},
		KDF: KDFConfig{
			Time:      1,
			MemoryKiB: 64 * 1024,
			Threads:   4,
		},
	}
}

// Load loads configuration from the CONCORD_CONFIG environment
// variable.
//
// This is the only way to load configuration without an explicit
// path. There are no fallbacks or defaults — if CONCORD_CONFIG is not
// set, this fails, so configuration stays deterministic and auditable.
func Load() (*Config, error) {
	configPath := os.Getenv("CONCORD_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CONCORD_CONFIG environment variable not set; " +
			"set it to the path of your concord.yaml config file")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables do not
// override config values. The only expansion performed is ${HOME} and
// similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		if overrides == nil {
			// Production default: a connection that never hears
			// from its peer should fail fast rather than linger.
			overrides = &ConfigOverrides{
				Connection: &ConnectionConfig{Timeout: "10s"},
			}
		}
	}
	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.State != "" {
			c.Paths.State = overrides.Paths.State
		}
	}
	if overrides.Connection != nil {
		if overrides.Connection.Timeout != "" {
			c.Connection.Timeout = overrides.Connection.Timeout
		}
		if overrides.Connection.ListenAddress != "" {
			c.Connection.ListenAddress = overrides.Connection.ListenAddress
		}
	}
	if overrides.KDF != nil {
		if overrides.KDF.Time != 0 {
			c.KDF.Time = overrides.KDF.Time
		}
		if overrides.KDF.MemoryKiB != 0 {
			c.KDF.MemoryKiB = overrides.KDF.MemoryKiB
		}
		if overrides.KDF.Threads != 0 {
			c.KDF.Threads = overrides.KDF.Threads
		}
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func (c *Config) expandVariables() {
	vars := map[string]string{
		"CONCORD_ROOT": c.Paths.Root,
		"HOME":         os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["CONCORD_ROOT"] = c.Paths.Root
	c.Paths.State = expandVars(c.Paths.State, vars)
}

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}
	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}
	if c.Connection.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("connection.listen_address is required"))
	}
	if _, err := time.ParseDuration(c.Connection.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("connection.timeout: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.Paths.Root, c.Paths.State} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
