// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import "fmt"

// MaxNameLength bounds both user names and device names: generous for
// a human-chosen label, short enough to keep derived device ids and
// log lines manageable.
const MaxNameLength = 128

// ValidateUserName checks that userName is non-empty, within
// [MaxNameLength], and contains only lowercase ASCII letters, digits,
// and `. _ -` — the same restrained charset spec's identifiers use
// elsewhere (team names, role names), so a user name is always safe
// to embed in a device id's hash input and in log lines without
// further escaping.
func ValidateUserName(userName string) error {
	return validateName("user name", userName)
}

// ValidateDeviceName checks deviceName under the same rules as
// [ValidateUserName].
func ValidateDeviceName(deviceName string) error {
	return validateName("device name", deviceName)
}

func validateName(what, name string) error {
	if name == "" {
		return fmt.Errorf("identity: %s is empty", what)
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("identity: %s is %d characters, maximum is %d", what, len(name), MaxNameLength)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return fmt.Errorf("identity: %s %q has invalid character %q at position %d (allowed: a-z, 0-9, ., _, -)", what, name, c, i)
		}
	}
	return nil
}
