// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"testing"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/secret"
)

// testDevice is one simulated principal's device: the signing seed
// used to author links plus its public keys.
type testDevice struct {
	userName string
	deviceID string
	seed     *secret.Buffer
	keys     Keys
}

func newTestDevice(t *testing.T, userName, deviceID string) *testDevice {
	t.Helper()
	signPublic, signSeed, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	encryptPublic, _, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		t.Fatalf("GenerateEncryptKeypair: %v", err)
	}
	return &testDevice{
		userName: userName,
		deviceID: deviceID,
		seed:     signSeed,
		keys:     Keys{Signing: signPublic, Encrypt: encryptPublic},
	}
}

// append encodes action, appends it as a link authored by d, and
// returns the link.
func (d *testDevice) append(t *testing.T, g *graph.Graph, timestamp int64, action *Action) *graph.Link {
	t.Helper()
	payload, err := action.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	link, err := g.Append(graph.AppendParams{
		Payload:   payload,
		UserName:  d.userName,
		DeviceID:  d.deviceID,
		Timestamp: timestamp,
	}, d.seed)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return link
}

// lockboxTo seals a fresh keyset under (scope, name, generation 0) to
// recipient, returning the lockbox — enough for validators that only
// check presence, never contents.
func lockboxTo(t *testing.T, scope keyset.Scope, name string, recipient Keys) *keyset.Lockbox {
	t.Helper()
	ks, err := keyset.Create(scope, name, 0, nil)
	if err != nil {
		t.Fatalf("keyset.Create: %v", err)
	}
	defer ks.Close()
	lockbox, err := keyset.CreateLockbox(ks, keyset.Reference{ID: ks.ID, EncryptPublic: recipient.Encrypt})
	if err != nil {
		t.Fatalf("CreateLockbox: %v", err)
	}
	return lockbox
}

// newFoundedTeam builds a graph with a single ROOT link founding
// teamName with admin as its sole, admin-role member, and returns the
// graph plus the founding device.
func newFoundedTeam(t *testing.T, teamName string) (*graph.Graph, *testDevice) {
	t.Helper()
	admin := newTestDevice(t, "admin", "admin-laptop")

	action := &Action{
		Kind:       ActionRoot,
		TeamName:   teamName,
		RootMember: &Member{
			UserName: admin.userName, Keys: admin.keys, Roles: map[string]bool{AdminRole: true},
			Devices: map[string]DevicePublic{admin.deviceID: {DeviceID: admin.deviceID, Keys: admin.keys}},
		},
		Lockboxes: []*keyset.Lockbox{
			lockboxTo(t, keyset.ScopeTeam, teamName, admin.keys),
			lockboxTo(t, keyset.ScopeRole, AdminRole, admin.keys),
		},
	}
	payload, err := action.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	g, err := graph.Create(graph.CreateParams{
		Payload:       payload,
		UserName:      admin.userName,
		DeviceID:      admin.deviceID,
		ContextPublic: admin.keys.Signing[:],
		Timestamp:     1,
	}, admin.seed)
	if err != nil {
		t.Fatalf("graph.Create: %v", err)
	}
	return g, admin
}

func sequenceAll(t *testing.T, g *graph.Graph) []*graph.Link {
	t.Helper()
	sequence, err := g.GetSequence(graph.TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	return sequence
}
