// Package keri implements the Kever (per-identifier event state machine)
// and Kevery (stream multiplexer and escrow manager) at the heart of this
// kernel. It is the only package in this repository that carries state
// across events.
package keri

import "errors"

var (
	// ErrUnknownPrefix is returned when an operation names a prefix with no
	// Kever yet.
	ErrUnknownPrefix = errors.New("keri: no kever for this prefix")

	// ErrNotEstablished is returned when a rotation or interaction targets a
	// prefix whose Kever has not yet accepted an inception.
	ErrNotEstablished = errors.New("keri: kever is not established")

	// ErrSAIDMismatch is a Derivation-kind failure: the event's own d does
	// not reproduce under saider.Verify.
	ErrSAIDMismatch = errors.New("keri: said does not verify")

	// ErrPrefixMismatch is a Derivation-kind failure: a basic-derivation or
	// self-addressing inception's i does not match its keys/SAID.
	ErrPrefixMismatch = errors.New("keri: prefix does not match derivation")

	// ErrNonTransferableRestricted mirrors eventing's sentinel for the
	// acceptance path.
	ErrNonTransferableRestricted = errors.New("keri: non-transferable identifiers forbid next-keys, witnesses, and anchors")

	// ErrSequenceMismatch is a Validation-kind failure: sn is not prev.sn+1.
	ErrSequenceMismatch = errors.New("keri: sn is not one more than the prior accepted event")

	// ErrPriorMismatch is a Validation-kind failure: p does not equal the
	// prior accepted event's d.
	ErrPriorMismatch = errors.New("keri: p does not match the prior accepted event's said")

	// ErrNextCommitmentMismatch is a Validation-kind failure: the rotation's
	// new keys do not satisfy the prior establishment's n/nt.
	ErrNextCommitmentMismatch = errors.New("keri: new keys do not satisfy the prior next-key commitment")

	// ErrWitnessThreshold is a Validation-kind failure: bt exceeds the
	// witness count it is supposed to be satisfied from.
	ErrWitnessThreshold = errors.New("keri: witness threshold exceeds witness count")

	// ErrEstOnly is a Validation-kind failure: an ixn was submitted against
	// an identifier carrying the EstOnly trait.
	ErrEstOnly = errors.New("keri: interaction forbidden, identifier is establishment-only")

	// ErrInvalidSignature is surfaced, never escrowed: a presented
	// signature does not verify against its claimed key.
	ErrInvalidSignature = errors.New("keri: signature does not verify")

	// ErrUnderThreshold is recoverable: fewer valid signatures were
	// presented than kt/nt requires.
	ErrUnderThreshold = errors.New("keri: signing threshold not met")

	// ErrOutOfOrder is recoverable: sn is ahead of the Kever's expected next
	// sn.
	ErrOutOfOrder = errors.New("keri: sn is ahead of the kever's next expected sn")

	// ErrMissingDelegation is recoverable: the named delegator has no Kever
	// yet, or its KEL does not yet contain the anchoring seal.
	ErrMissingDelegation = errors.New("keri: delegator kel has not caught up to the anchoring seal")

	// ErrLikelyDuplicitous is non-recoverable: an irreconcilable competing
	// branch was observed.
	ErrLikelyDuplicitous = errors.New("keri: irreconcilable competing event observed")

	// ErrUnverifiedReceipt is recoverable: a receipt could not be verified
	// because the referenced event or endorser establishment state is not
	// yet known.
	ErrUnverifiedReceipt = errors.New("keri: receipt could not be verified against known state")
)
