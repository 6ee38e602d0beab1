// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/identity"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/secret"
)

// wireDevice is a local device identity's persisted form, mirroring
// lib/keyset's wireKeyset/keySide wire shape but for the single
// ScopeDevice keyset a CLI invocation runs as. identity.NewDevice
// always mints fresh CSPRNG keys with nothing saved to disk, so the
// CLI needs its own small persistence layer to keep a stable device
// identity across invocations.
type wireDevice struct {
	UserName      string   `cbor:"user_name"`
	DeviceName    string   `cbor:"device_name"`
	SigningPublic [32]byte `cbor:"signing_public"`
	SigningSecret [32]byte `cbor:"signing_secret"`
	EncryptPublic [32]byte `cbor:"encrypt_public"`
	EncryptSecret [32]byte `cbor:"encrypt_secret"`
}

// devicePath names one (userName, deviceName) identity's file within
// stateDir. A single state directory can hold several local device
// identities at once — e.g. a one-machine demo running both sides of
// an invitation handshake as "alice/laptop" and "bob/phone" — so the
// id, not a fixed name, identifies the file.
func devicePath(stateDir, userName, deviceName string) string {
	return filepath.Join(stateDir, "device-"+identity.DeviceID(userName, deviceName)+".cbor")
}

// loadOrCreateDevice loads the local device identity persisted under
// stateDir, generating and saving a fresh one on first run. The
// caller must Close the returned device when done with it.
func loadOrCreateDevice(stateDir, userName, deviceName string) (*identity.Device, error) {
	data, err := os.ReadFile(devicePath(stateDir, userName, deviceName))
	if err == nil {
		return deserializeDevice(data)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("commands: reading device identity: %w", err)
	}

	device, err := identity.NewDevice(userName, deviceName)
	if err != nil {
		return nil, fmt.Errorf("commands: generating device identity: %w", err)
	}
	if err := saveDevice(stateDir, device); err != nil {
		device.Close()
		return nil, err
	}
	return device, nil
}

// saveDevice atomically persists device's identity to stateDir,
// following the same write-to-temp-then-rename discipline as
// [lib/storage.FileStore.Save] so a reader never observes a partial
// write.
func saveDevice(stateDir string, device *identity.Device) error {
	data, err := serializeDevice(device)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return fmt.Errorf("commands: creating state directory: %w", err)
	}

	path := devicePath(stateDir, device.UserName, device.DeviceName)
	tmp, err := os.CreateTemp(stateDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("commands: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("commands: writing device identity: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("commands: restricting device identity permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("commands: closing device identity: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("commands: renaming device identity into place: %w", err)
	}
	success = true
	return nil
}

func serializeDevice(device *identity.Device) ([]byte, error) {
	wire := wireDevice{
		UserName:      device.UserName,
		DeviceName:    device.DeviceName,
		SigningPublic: [32]byte(device.Keys.SigningPublic),
		EncryptPublic: [32]byte(device.Keys.EncryptPublic),
	}
	copy(wire.SigningSecret[:], device.Keys.SigningSecret.Bytes())
	copy(wire.EncryptSecret[:], device.Keys.EncryptSecret.Bytes())

	data, err := codec.Marshal(wire)
	secret.Zero(wire.SigningSecret[:])
	secret.Zero(wire.EncryptSecret[:])
	if err != nil {
		return nil, fmt.Errorf("commands: serializing device identity: %w", err)
	}
	return data, nil
}

func deserializeDevice(data []byte) (*identity.Device, error) {
	var wire wireDevice
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("commands: deserializing device identity: %w", err)
	}
	defer secret.Zero(wire.SigningSecret[:])
	defer secret.Zero(wire.EncryptSecret[:])

	signingSecret, err := secret.NewFromBytes(append([]byte(nil), wire.SigningSecret[:]...))
	if err != nil {
		return nil, fmt.Errorf("commands: protecting signing key: %w", err)
	}
	encryptSecret, err := secret.NewFromBytes(append([]byte(nil), wire.EncryptSecret[:]...))
	if err != nil {
		signingSecret.Close()
		return nil, fmt.Errorf("commands: protecting encryption key: %w", err)
	}

	id := identity.DeviceID(wire.UserName, wire.DeviceName)
	return &identity.Device{
		UserName:   wire.UserName,
		DeviceName: wire.DeviceName,
		ID:         id,
		Keys: &keyset.Keyset{
			ID:            keyset.ID{Scope: keyset.ScopeDevice, Name: id, Generation: 0},
			SigningPublic: crypto.SigningPublicKey(wire.SigningPublic),
			SigningSecret: signingSecret,
			EncryptPublic: crypto.EncryptPublicKey(wire.EncryptPublic),
			EncryptSecret: encryptSecret,
		},
	}, nil
}
