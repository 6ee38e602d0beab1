// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "testing"

func TestContextVariantsImplementContext(t *testing.T) {
	device, err := NewDevice("alice", "laptop")
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	defer device.Close()

	var contexts = []Context{
		MemberContext{User: "alice", Device: device, Team: "acme"},
		ServerContext{Server: "relay.acme.example"},
		InviteeContext{User: "bob", Device: device, InvitationSeed: "a-seed"},
	}

	for _, c := range contexts {
		switch c.(type) {
		case MemberContext, ServerContext, InviteeContext:
		default:
			t.Fatalf("unexpected context variant: %#v", c)
		}
	}
}
