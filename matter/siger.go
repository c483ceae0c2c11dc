package matter

import "errors"

var (
	// ErrNegativeIndex is returned when a Siger is constructed with a negative
	// signing-key index.
	ErrNegativeIndex = errors.New("matter: signature index must be non-negative")

	// ErrIndexRange is returned when a signing-key index does not fit the
	// single Base64 character the indexed wire form carries.
	ErrIndexRange = errors.New("matter: signature index exceeds 63")

	// ErrNotIndexedSig is returned when an indexed-signature decode does not
	// find the indexed selector at the front of the input.
	ErrNotIndexedSig = errors.New("matter: not an indexed signature")
)

// indexedSelector is the leading character of the indexed Ed25519 signature
// wire form: selector + 1 Base64 index character + 86 signature characters,
// 88 total, the same width as the unindexed Ed25519Sig qb64 form.
const indexedSelector = 'A'

// indexedSigLen is the fixed qb64 width of one indexed signature.
const indexedSigLen = 88

// Siger is a signature Matter carrying the index of the signing key it
// corresponds to within the current signing-key list.
type Siger struct {
	Matter
	Index int
}

// NewSiger builds a Siger from raw signature bytes and a key index.
func NewSiger(code Code, raw []byte, index int) (Siger, error) {
	if index < 0 {
		return Siger{}, ErrNegativeIndex
	}
	if index > 63 {
		return Siger{}, ErrIndexRange
	}
	m, err := NewWithRaw(code, raw)
	if err != nil {
		return Siger{}, err
	}
	return Siger{Matter: m, Index: index}, nil
}

// Qb64Indexed renders the indexed wire form carried inside -A/-B attachment
// groups: the indexed selector, the key index as one Base64 character, and
// the signature body. Unlike Qb64 (the bare Ed25519Sig form), this form
// survives a round trip with the index intact, so sparse signature sets
// (e.g. indices 0 and 2 of a 3-key list) decode back to the right keys.
func (s Siger) Qb64Indexed() string {
	encLen := indexedSigLen - 2
	pad := padBitsFor(encLen, len(s.raw))
	return string(indexedSelector) + string(b64Alphabet[s.Index]) + encodeRaw(s.raw, pad, encLen)
}

// DecodeSiger parses one indexed signature from the front of one of the four
// accepted input shapes, returning the Siger and the number of characters
// consumed. Strip semantics are as Decode's.
func DecodeSiger(input any, strip bool) (Siger, int, error) {
	var text string
	switch v := input.(type) {
	case string:
		if strip {
			return Siger{}, 0, ErrStripOnImmutable
		}
		text = v
	case []byte:
		if strip {
			return Siger{}, 0, ErrStripOnImmutable
		}
		text = string(v)
	case MutableBuffer:
		text = string(*v.Buf)
	default:
		return Siger{}, 0, ErrBadQb64
	}

	if len(text) < indexedSigLen {
		return Siger{}, 0, ErrShortQb64
	}
	if text[0] != indexedSelector {
		return Siger{}, 0, ErrNotIndexedSig
	}
	index := b64Rev[text[1]]
	if index < 0 {
		return Siger{}, 0, ErrBadQb64
	}

	rawLen, _ := RawSize(Ed25519Sig)
	encLen := indexedSigLen - 2
	raw, err := decodeRaw(text[2:indexedSigLen], padBitsFor(encLen, rawLen), rawLen)
	if err != nil {
		return Siger{}, 0, err
	}
	sg, err := NewSiger(Ed25519Sig, raw, int(index))
	if err != nil {
		return Siger{}, 0, err
	}
	if strip {
		mb := input.(MutableBuffer)
		*mb.Buf = (*mb.Buf)[indexedSigLen:]
	}
	return sg, indexedSigLen, nil
}
