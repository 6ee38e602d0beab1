// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// validateAddDevice requires the author to be admin, the target
// member to exist, the deviceId to be unused by that member, and the
// team and each of the member's role keys sealed to the new device.
func validateAddDevice(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	member, ok := state.MemberByName(action.UserName)
	if !ok {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if action.Device == nil || action.Device.DeviceID == "" {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_DEVICE missing a device")
	}
	if _, exists := member.Devices[action.Device.DeviceID]; exists {
		return teamerr.New(teamerr.ProtocolViolation, "device %q already enrolled for %s", action.Device.DeviceID, action.UserName)
	}
	roles := make([]string, 0, len(member.Roles))
	for role := range member.Roles {
		roles = append(roles, role)
	}
	if !hasTeamAndRoleLockboxes(action.Lockboxes, roles, action.Device.Keys.Encrypt) {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_DEVICE must seal team and role keys to the new device")
	}
	return nil
}

func reduceAddDevice(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	member := next.Members[action.UserName]
	if member.Devices == nil {
		member.Devices = make(map[string]DevicePublic)
	}
	member.Devices[action.Device.DeviceID] = *action.Device
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}

// validateRemoveDevice requires the author to be admin and the target
// member and device to exist. The action's lockboxes are appended as
// given; whether they rotate every scope the device could reach is not
// checked.
func validateRemoveDevice(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	member, ok := state.MemberByName(action.UserName)
	if !ok {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if _, exists := member.Devices[action.DeviceID]; !exists {
		return teamerr.New(teamerr.NotFound, "device %q is not enrolled for %s", action.DeviceID, action.UserName)
	}
	return nil
}

func reduceRemoveDevice(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	delete(next.Members[action.UserName].Devices, action.DeviceID)
	next.RemovedDevices[action.DeviceID] = true
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}
