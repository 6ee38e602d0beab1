// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "testing"

func TestDeviceIDIsDeterministic(t *testing.T) {
	a := DeviceID("alice", "laptop")
	b := DeviceID("alice", "laptop")
	if a != b {
		t.Fatalf("DeviceID is not deterministic: %q != %q", a, b)
	}
}

func TestDeviceIDDistinguishesInputs(t *testing.T) {
	base := DeviceID("alice", "laptop")

	if id := DeviceID("alice", "phone"); id == base {
		t.Fatal("different device names should derive different ids")
	}
	if id := DeviceID("bob", "laptop"); id == base {
		t.Fatal("different user names should derive different ids")
	}
	// the "::" separator means concatenating differently should not
	// collide: "al" + "ice::laptop" vs "alice" + "::laptop".
	if id := DeviceID("al", "ice::laptop"); id == base {
		t.Fatal("DeviceID should not collide across the user/device boundary")
	}
}

func TestNewDeviceRejectsInvalidNames(t *testing.T) {
	if _, err := NewDevice("", "laptop"); err == nil {
		t.Fatal("NewDevice should reject an empty user name")
	}
	if _, err := NewDevice("alice", ""); err == nil {
		t.Fatal("NewDevice should reject an empty device name")
	}
}

func TestNewDeviceGeneratesUsableKeys(t *testing.T) {
	device, err := NewDevice("alice", "laptop")
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	defer device.Close()

	if device.ID != DeviceID("alice", "laptop") {
		t.Fatalf("device.ID = %q, want %q", device.ID, DeviceID("alice", "laptop"))
	}
	if device.Keys.SigningSecret == nil || device.Keys.EncryptSecret == nil {
		t.Fatal("a freshly generated device should hold its own secret key material")
	}

	public := device.Public()
	if public.Signing != [32]byte(device.Keys.SigningPublic) {
		t.Fatal("Public().Signing should mirror the device keyset's signing public key")
	}
	if public.Encrypt != [32]byte(device.Keys.EncryptPublic) {
		t.Fatal("Public().Encrypt should mirror the device keyset's encryption public key")
	}
}
