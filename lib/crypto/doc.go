// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package crypto is concord's cryptographic primitives facade. Every
// other package reaches cryptographic operations only through this
// one — signing, asymmetric sealing, symmetric authenticated
// encryption, password/seed stretching, and random generation — so
// that a primitive can be swapped (a different curve, a different
// AEAD) without touching callers.
//
// Secret key material is always held in a [secret.Buffer], never a
// plain []byte or string, for as long as it is alive in this
// process — the same convention lib/secret already establishes for
// on-disk credentials.
//
// Signing uses Ed25519 (crypto/ed25519, stdlib): [GenerateSigningKeypair],
// [SigningKeypairFromSeed], [Sign], [Verify].
//
// Sealing is a NaCl crypto_box-style construction: an X25519 ECDH
// shared secret between a sender's secret scalar and a recipient's
// public key, an HKDF-derived ChaCha20-Poly1305 key binding both
// public keys into the HKDF salt, and a random-nonce AEAD encryption.
// See [Seal] and [Unseal]. A caller wanting an anonymous single-use
// seal (the lockbox use of this primitive) generates a fresh
// ephemeral keypair per call and passes its seed as the sender,
// publishing the ephemeral public key alongside the ciphertext. This
// is built directly on golang.org/x/crypto primitives, rather than
// an opaque identity/bech32 sealing library, so encryption keypairs
// can be derived deterministically from a stretched seed.
//
// [AEADEncrypt] and [AEADDecrypt] wrap ChaCha20-Poly1305 for
// symmetric encryption under an already-established key (session
// traffic, invitation secret payloads), with a random per-message
// nonce prefixed to the ciphertext.
//
// [Stretch] runs Argon2id, the deliberately expensive KDF used
// wherever a low-entropy human input (an invitation's secret word
// list, a recovery passphrase) must be turned into key material.
//
// Keyed hashing (hash(domain, data)) lives in lib/codec — a link's
// hash and a keyset's secret material are both single 32-byte values,
// so keeping one Hash type with canonical-encoding support avoids an
// awkward seam between "encoding" and "crypto".
package crypto
