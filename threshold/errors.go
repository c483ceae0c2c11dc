// Package threshold implements KERI signing thresholds (kt, nt, bt): either
// a simple integer count, or a list of weighted clauses satisfied
// independently, plus the majority-floor and byzantine-ample helper
// functions used by event construction.
package threshold

import "errors"

var (
	// ErrBadFraction is returned when a weight string is not a valid "n/d"
	// fraction, or d is zero.
	ErrBadFraction = errors.New("threshold: malformed fraction weight")

	// ErrEmptyClause is returned when a weighted threshold has an empty
	// clause.
	ErrEmptyClause = errors.New("threshold: weighted clause has no members")

	// ErrIndexOutOfRange is returned when a contributing index falls outside
	// the flattened clause index range.
	ErrIndexOutOfRange = errors.New("threshold: signature index out of range")

	// ErrAmpleImpossible is returned by Ample when an explicit fault count f
	// is too large for n >= 1 signers: n-f < ceil((n+f+1)/2).
	ErrAmpleImpossible = errors.New("threshold: fault count too large for an ample majority of the signer set")
)
