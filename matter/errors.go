// Package matter implements the qualified-Base64 ("qb64") and raw
// representations of typed cryptographic primitives used across a key event
// log: public keys, digests, signatures and small fixed-width sequence
// values. Every value is a Matter: a derivation code plus a raw byte string.
package matter

import "errors"

var (
	// ErrUnknownCode is returned when a qb64 string (or an explicit code) does
	// not match any entry in the derivation code table.
	ErrUnknownCode = errors.New("matter: unknown derivation code")

	// ErrShortRaw is returned when raw bytes are shorter than the code's
	// fixed length.
	ErrShortRaw = errors.New("matter: raw value too short for code")

	// ErrShortQb64 is returned when a qb64 string is shorter than its code's
	// declared length.
	ErrShortQb64 = errors.New("matter: qb64 string too short for code")

	// ErrBadQb64 is returned when qb64 text contains characters outside the
	// Base64URL alphabet where primitive bytes are expected.
	ErrBadQb64 = errors.New("matter: invalid qb64 text")

	// ErrStripOnImmutable is returned when strip=true is requested against an
	// input shape that does not support in-place mutation.
	ErrStripOnImmutable = errors.New("matter: strip requires a mutable buffer")
)
