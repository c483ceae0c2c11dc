// Package serder implements the event body (de)serializer: a
// version-string-prefixed mapping ("KED") carried as JSON, CBOR, or
// MessagePack, whose field order is insertion order and whose "v" field
// carries the kind and the exact byte length of the serialization.
package serder

import "errors"

var (
	// ErrShortVersionString is returned when fewer than 17 bytes are
	// available to parse the version string.
	ErrShortVersionString = errors.New("serder: raw too short for version string")

	// ErrBadVersionString is returned when the version string does not match
	// the fixed KERI10<kind>NNNNNN_ layout.
	ErrBadVersionString = errors.New("serder: malformed version string")

	// ErrUnknownKind is returned for a kind token other than JSON/CBOR/MGPK.
	ErrUnknownKind = errors.New("serder: unknown serialization kind")

	// ErrShortBody is returned when raw has fewer bytes than the version
	// string declares.
	ErrShortBody = errors.New("serder: raw shorter than declared size")

	// ErrMissingField is returned when a required KED field is absent.
	ErrMissingField = errors.New("serder: required field missing")

	// ErrFieldType is returned when a KED field has an unexpected Go type.
	ErrFieldType = errors.New("serder: field has unexpected type")
)
