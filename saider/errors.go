// Package saider computes and verifies Self-Addressing IDentifiers (SAIDs):
// the digest of an event's serialization with its "d" field (and, for a
// self-addressing inception, its "i" field) replaced by a dummy string of
// the right length before hashing.
package saider

import "errors"

var (
	// ErrNotFound is returned when the field a Saider operation needs is
	// absent from the supplied mapping.
	ErrNotFound = errors.New("saider: required field missing")

	// ErrMismatch is returned by Verify when the recomputed SAID does not
	// match the stored one.
	ErrMismatch = errors.New("saider: said does not match content")
)
