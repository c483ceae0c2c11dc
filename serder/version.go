package serder

import (
	"fmt"
	"strings"
)

// Kind names a supported event body serialization.
type Kind string

const (
	JSON Kind = "JSON"
	CBOR Kind = "CBOR"
	MGPK Kind = "MGPK"
)

// VersionStringLen is the fixed width of the "v" field's value: 4 protocol
// letters, 1 hex major digit, 1 hex minor digit, 4 kind letters, 6 hex size
// digits, '_'. E.g. "KERI10JSON0000fd_".
const VersionStringLen = 17

const protocolTag = "KERI"
const protoMajor = "1"
const protoMinor = "0"

// BuildVersionString renders the version string for kind with size bytes
// declared.
func BuildVersionString(kind Kind, size int) (string, error) {
	if kind != JSON && kind != CBOR && kind != MGPK {
		return "", ErrUnknownKind
	}
	if size < 0 || size > 0xFFFFFF {
		return "", ErrBadVersionString
	}
	return fmt.Sprintf("%s%s%s%s%06x_", protocolTag, protoMajor, protoMinor, string(kind), size), nil
}

// ParsedVersion is the decoded content of a version string.
type ParsedVersion struct {
	Kind Kind
	Size int
}

// MaxVSOffset is the farthest into a serialized event the version string can
// begin across the supported kinds: 6 bytes of JSON field framing
// (`{"v":"`), or a few bytes of CBOR/MessagePack map and string headers.
const MaxVSOffset = 12

// SniffVersionString locates the version string within the leading bytes of
// a serialized event and parses it, returning the byte offset at which it
// begins. The declared size always counts from the start of the event, not
// from the version string. ErrShortVersionString is returned when too few
// bytes are present to rule the tag in or out yet.
func SniffVersionString(raw []byte) (ParsedVersion, int, error) {
	limit := len(raw)
	if limit > MaxVSOffset+VersionStringLen {
		limit = MaxVSOffset + VersionStringLen
	}
	idx := strings.Index(string(raw[:limit]), protocolTag)
	if idx < 0 {
		if len(raw) < MaxVSOffset+VersionStringLen {
			return ParsedVersion{}, 0, ErrShortVersionString
		}
		return ParsedVersion{}, 0, ErrBadVersionString
	}
	if idx > MaxVSOffset {
		return ParsedVersion{}, 0, ErrBadVersionString
	}
	if len(raw) < idx+VersionStringLen {
		return ParsedVersion{}, 0, ErrShortVersionString
	}
	pv, err := ParseVersionString(string(raw[idx : idx+VersionStringLen]))
	if err != nil {
		return ParsedVersion{}, 0, err
	}
	return pv, idx, nil
}

// ParseVersionString parses the fixed 17-character version string from the
// front of s.
func ParseVersionString(s string) (ParsedVersion, error) {
	if len(s) < VersionStringLen {
		return ParsedVersion{}, ErrShortVersionString
	}
	v := s[:VersionStringLen]
	if v[:4] != protocolTag {
		return ParsedVersion{}, ErrBadVersionString
	}
	if v[4:5] != protoMajor || v[5:6] != protoMinor {
		return ParsedVersion{}, ErrBadVersionString
	}
	kind := Kind(v[6:10])
	if kind != JSON && kind != CBOR && kind != MGPK {
		return ParsedVersion{}, ErrUnknownKind
	}
	if v[16] != '_' {
		return ParsedVersion{}, ErrBadVersionString
	}
	var size int
	if _, err := fmt.Sscanf(v[10:16], "%06x", &size); err != nil {
		return ParsedVersion{}, ErrBadVersionString
	}
	return ParsedVersion{Kind: kind, Size: size}, nil
}
