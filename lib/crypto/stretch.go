// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/bureau-foundation/concord/lib/secret"
)

// StretchSaltSize is the recommended salt size for [Stretch].
const StretchSaltSize = 16

// StretchParams configures Argon2id. The zero value is not valid —
// use [DefaultStretchParams].
type StretchParams struct {
	// Time is the number of Argon2id passes over memory.
	Time uint32

	// MemoryKiB is the amount of memory used, in kibibytes.
	MemoryKiB uint32

	// Threads is the degree of parallelism.
	Threads uint8

	// KeyLength is the size in bytes of the derived key.
	KeyLength uint32
}

// DefaultStretchParams returns the Argon2id cost parameters concord
// uses for invitation secrets and keyset seeds: 64 MiB of memory,
// single pass, four-way parallelism — the minimum OWASP recommends
// for Argon2id when memory is constrained, chosen because invitation
// secrets must stretch on ordinary laptops and phones within a
// human-tolerable delay, not a server's idle CPU budget.
func DefaultStretchParams() StretchParams {
	return StretchParams{
		Time:      1,
		MemoryKiB: 64 * 1024,
		Threads:   4,
		KeyLength: 32,
	}
}

// Stretch derives key material from a low-entropy secret (an
// invitation's secret word list, a recovery passphrase) using
// Argon2id. salt should be random and recorded alongside the
// derivation site (it is not itself secret) so the same input always
// re-derives the same key.
func Stretch(password []byte, salt []byte, params StretchParams) (*secret.Buffer, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("crypto: stretch requires a non-empty salt")
	}
	derived := argon2.IDKey(password, salt, params.Time, params.MemoryKiB, params.Threads, params.KeyLength)
	buffer, err := secret.NewFromBytes(derived)
	if err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("crypto: protecting stretched key: %w", err)
	}
	return buffer, nil
}
