// Package eventing constructs KERI event bodies (icp, rot, ixn, dip, drt,
// rct, qry, ksn) as serder.Serder values, wiring together matter, serder,
// saider and threshold the way a controller builds one before signing it.
// This package has no notion of state: it never looks at a KEL, it only
// shapes and SAID-derives one event at a time.
package eventing

import "errors"

var (
	// ErrNoKeys is returned when an inception or rotation is given zero
	// signing keys.
	ErrNoKeys = errors.New("eventing: at least one signing key is required")

	// ErrNonTransferableRestricted is returned when a non-transferable
	// inception (Ed25519N basic derivation) carries a non-empty n, b, or a.
	ErrNonTransferableRestricted = errors.New("eventing: non-transferable identifiers forbid next-keys, witnesses, and anchors")

	// ErrBasicDerivationKeyCount is returned when basic (non-self-addressing)
	// derivation is requested with other than exactly one key.
	ErrBasicDerivationKeyCount = errors.New("eventing: basic derivation requires exactly one signing key")

	// ErrMissingDelegator is returned when a delegated inception or rotation
	// is built without a delegator prefix.
	ErrMissingDelegator = errors.New("eventing: delegated event requires a delegator prefix")

	// ErrDelegatedNeedsSelfAddressing is returned when a delegated inception
	// is requested under basic derivation; a dip's identifier must bind to
	// the event content so the delegator's seal pins it.
	ErrDelegatedNeedsSelfAddressing = errors.New("eventing: delegated inception requires self-addressing derivation")

	// ErrBadDigestCode is returned when NextDigests is asked to hash under a
	// code that is not a digest code.
	ErrBadDigestCode = errors.New("eventing: next-key digest code must be a digest derivation")
)
