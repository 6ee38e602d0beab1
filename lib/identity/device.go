// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/keyset"
)

// DeviceID derives a device's stable id from its owning user name and
// a human-chosen device name: spec §4.G's
// `getDeviceId({userId, deviceName}) = base-encode(hash("device_id",
// userId || "::" || deviceName))`. Both sides of a connection compute
// this independently; it is never negotiated or transmitted as a
// separate step.
func DeviceID(userName, deviceName string) string {
	data := []byte(userName + "::" + deviceName)
	return codec.HashUnder(codec.DomainDeviceID, data).String()
}

// Keys is a principal's public signing and encryption keys, the
// public-only shape a device's keyset reduces to once shared with a
// peer (mirrors [team.Keys] without importing the team package here —
// identity sits below team in the dependency graph).
type Keys struct {
	Signing [32]byte
	Encrypt [32]byte
}

// Device is one local, key-holding device belonging to userName. Its
// id and keyset address a [keyset.ScopeDevice] keyset, so a device's
// secret material rotates and revokes through exactly the same
// lockbox machinery as every other scope.
type Device struct {
	UserName   string
	DeviceName string
	ID         string

	Keys *keyset.Keyset
}

// NewDevice validates userName and deviceName, derives the device's
// id, and generates a fresh device keyset from the system CSPRNG. The
// caller must Close the returned device when its secret material is
// no longer needed.
func NewDevice(userName, deviceName string) (*Device, error) {
	if err := ValidateUserName(userName); err != nil {
		return nil, err
	}
	if err := ValidateDeviceName(deviceName); err != nil {
		return nil, err
	}

	id := DeviceID(userName, deviceName)
	keys, err := keyset.Create(keyset.ScopeDevice, id, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("identity: generating keyset for device %s: %w", id, err)
	}

	return &Device{UserName: userName, DeviceName: deviceName, ID: id, Keys: keys}, nil
}

// Close releases the device's secret key material. Idempotent.
func (d *Device) Close() error {
	return d.Keys.Close()
}

// Public returns the public-only keys a device advertises to peers
// and posts (via lockboxes and link metadata) to the signature graph.
func (d *Device) Public() Keys {
	return Keys{Signing: [32]byte(d.Keys.SigningPublic), Encrypt: [32]byte(d.Keys.EncryptPublic)}
}
