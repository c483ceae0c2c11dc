// Package counter implements Counters: the compact typed group headers that
// delimit attachment groups (indexed signatures, witness receipts, seal
// anchors, ...) in the wire stream that follows a key event body.
package counter

import "errors"

var (
	// ErrUnknownGroupCode is returned when a counter's group code is not in
	// the registered table.
	ErrUnknownGroupCode = errors.New("counter: unknown group code")

	// ErrShortHeader is returned when fewer than 4 characters are available
	// to parse a counter header.
	ErrShortHeader = errors.New("counter: header too short")

	// ErrBadHeader is returned when a counter header does not start with '-'
	// or its count field is not valid hex.
	ErrBadHeader = errors.New("counter: malformed header")

	// ErrShortGroup is returned when fewer bytes are available than the
	// group's declared member count requires.
	ErrShortGroup = errors.New("counter: group data too short")

	// ErrStripOnImmutable is returned when strip=true is requested against an
	// input shape that does not support in-place mutation.
	ErrStripOnImmutable = errors.New("counter: strip requires a mutable buffer")
)
