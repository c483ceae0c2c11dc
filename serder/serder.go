package serder

import "strconv"

// Serder is the parsed or constructed form of one event body: the canonical
// raw bytes, the kind they were written in, and the decoded field mapping.
type Serder struct {
	Raw  []byte
	Kind Kind
	Ked  KED
}

// FromRaw parses an event body out of the front of raw: it reads the
// version string to learn kind and declared size, then deserializes exactly
// that many bytes.
func FromRaw(raw []byte) (Serder, error) {
	if len(raw) < VersionStringLen {
		return Serder{}, ErrShortVersionString
	}
	pv, _, err := SniffVersionString(raw)
	if err != nil {
		return Serder{}, err
	}
	if len(raw) < pv.Size {
		return Serder{}, ErrShortBody
	}
	body := raw[:pv.Size]

	var ked KED
	switch pv.Kind {
	case JSON:
		ked, err = decodeJSON(body)
	case CBOR:
		ked, err = decodeCBOR(body)
	case MGPK:
		ked, err = decodeMGPK(body)
	default:
		return Serder{}, ErrUnknownKind
	}
	if err != nil {
		return Serder{}, err
	}

	return Serder{Raw: body, Kind: pv.Kind, Ked: ked}, nil
}

// FromKed serializes ked in kind, rewriting the "v" field's size sub-field
// to the exact resulting byte length. ked's "v" value, if present, is
// replaced; callers need not pre-size it.
func FromKed(ked KED, kind Kind) (Serder, error) {
	// Pass 1: encode with a placeholder size to discover the final length;
	// because the version string is fixed-width, the placeholder and the
	// real value are always the same byte length, so one more pass with the
	// true size reproduces the exact same length.
	placeholder, err := BuildVersionString(kind, 0)
	if err != nil {
		return Serder{}, err
	}
	draft := ked.Set("v", placeholder)

	raw, err := encode(draft, kind)
	if err != nil {
		return Serder{}, err
	}

	vs, err := BuildVersionString(kind, len(raw))
	if err != nil {
		return Serder{}, err
	}
	final := ked.Set("v", vs)
	raw, err = encode(final, kind)
	if err != nil {
		return Serder{}, err
	}

	return Serder{Raw: raw, Kind: kind, Ked: final}, nil
}

func encode(ked KED, kind Kind) ([]byte, error) {
	switch kind {
	case JSON:
		return encodeJSON(ked)
	case CBOR:
		return encodeCBOR(ked)
	case MGPK:
		return encodeMGPK(ked)
	default:
		return nil, ErrUnknownKind
	}
}

// Said returns the "d" field.
func (s Serder) Said() (string, error) { return s.Ked.GetString("d") }

// Pre returns the "i" field.
func (s Serder) Pre() (string, error) { return s.Ked.GetString("i") }

// Ilk returns the "t" field (event type).
func (s Serder) Ilk() (string, error) { return s.Ked.GetString("t") }

// Sn parses the "s" field as lowercase hex, no leading zeros.
func (s Serder) Sn() (uint64, error) {
	str, err := s.Ked.GetString("s")
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(str, 16, 64)
}

// Prior returns the "p" field (prior event SAID), where present.
func (s Serder) Prior() (string, error) { return s.Ked.GetString("p") }

// SnToHex renders sn as lowercase hex without leading zeros, with the single
// exception that zero is "0".
func SnToHex(sn uint64) string {
	return strconv.FormatUint(sn, 16)
}
