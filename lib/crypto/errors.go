// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import "errors"

// ErrDecryptionFailed is returned by [Unseal] and [AEADDecrypt] when
// authentication fails — a tampered ciphertext, a wrong key, or a
// corrupt nonce. lib/teamerr maps this to its DecryptionFailed kind;
// it is never wrapped with the specific reason, since an AEAD
// authentication failure must not leak which part of the input was
// wrong.
var ErrDecryptionFailed = errors.New("crypto: decryption failed")
