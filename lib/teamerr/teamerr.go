// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package teamerr

import "fmt"

// Kind identifies why an operation failed. Kind values are stable and
// meant to be compared with [errors.Is] against the value [Of] returns
// for a kind, not switched on directly by value — use
// [Error.Kind] only when building a user-facing message or log line.
type Kind int

const (
	// NotAdmin means the acting principal does not hold the admin
	// role required for the attempted action.
	NotAdmin Kind = iota

	// NotFound means a referenced scope, member, role, or device does
	// not exist in the current team state or keyring.
	NotFound

	// AlreadyMember means an ADD_MEMBER or admission targeted a user
	// name already present in team state.
	AlreadyMember

	// InvalidSignature means a proof's signature did not verify: an
	// invitation proof against the invitation's signing key, or a
	// peer's identity proof during the handshake. A link signature
	// failing during a fold is reported as GraphCorrupt instead.
	InvalidSignature

	// GraphCorrupt means the signature graph itself is unsound — a
	// broken prev chain, an unreachable root, or a signature failure
	// encountered during a fold, which aborts the whole computation
	// rather than just rejecting one link.
	GraphCorrupt

	// InvitationNotFound means the referenced invitation id is not
	// present in team state.
	InvitationNotFound

	// InvitationRevoked means the referenced invitation has been
	// revoked by an admin.
	InvitationRevoked

	// InvitationUsed means the referenced invitation has already
	// reached its use limit.
	InvitationUsed

	// InvitationExpired means the referenced invitation's expiration
	// time has passed.
	InvitationExpired

	// NameMismatch means an invitation's decrypted payload does not
	// match the identity presented at admission time.
	NameMismatch

	// Timeout means a connection step did not complete within its
	// configured deadline.
	Timeout

	// ProtocolViolation means a peer sent a message that is not valid
	// in the connection's current state.
	ProtocolViolation

	// DecryptionFailed means an AEAD or sealed-box decryption failed
	// authentication.
	DecryptionFailed

	// KeyNotReachable means the requested (scope, name) keyset is not
	// reachable from the principal's keyring.
	KeyNotReachable
)

// String returns a human-readable, lowercase, underscore-free name
// for k, suitable for log lines and CLI error output.
func (k Kind) String() string {
	switch k {
	case NotAdmin:
		return "not admin"
	case NotFound:
		return "not found"
	case AlreadyMember:
		return "already member"
	case InvalidSignature:
		return "invalid signature"
	case GraphCorrupt:
		return "graph corrupt"
	case InvitationNotFound:
		return "invitation not found"
	case InvitationRevoked:
		return "invitation revoked"
	case InvitationUsed:
		return "invitation used"
	case InvitationExpired:
		return "invitation expired"
	case NameMismatch:
		return "name mismatch"
	case Timeout:
		return "timeout"
	case ProtocolViolation:
		return "protocol violation"
	case DecryptionFailed:
		return "decryption failed"
	case KeyNotReachable:
		return "key not reachable"
	default:
		return fmt.Sprintf("teamerr.Kind(%d)", int(k))
	}
}

// Error is the concrete error type every component in this module
// returns for a policy or protocol failure. It carries a [Kind] for
// programmatic dispatch, a human-readable message, and — for
// invitation-related failures — the invitation id spec §7 requires
// user-visible failures to surface.
type Error struct {
	Kind         Kind
	Message      string
	InvitationID string // empty unless Kind relates to an invitation
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.InvitationID != "" {
		return fmt.Sprintf("%s: %s (invitation %s)", e.Kind, e.Message, e.InvitationID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is a *[Error] with the same [Kind],
// making teamerr.Errors comparable with errors.Is without exposing
// package-level sentinels per kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an [Error] of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewInvitation builds an [Error] of the given kind carrying an
// invitation id, for the invitation-specific error kinds spec §7
// calls out (InvitationNotFound, InvitationRevoked, InvitationUsed,
// InvitationExpired, NameMismatch).
func NewInvitation(kind Kind, invitationID string, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), InvitationID: invitationID}
}

// Of is a sentinel value usable with errors.Is to test whether an
// error is a teamerr.Error of a particular kind, regardless of
// message: errors.Is(err, teamerr.Of(teamerr.NotAdmin)).
func Of(kind Kind) error {
	return &Error{Kind: kind}
}
