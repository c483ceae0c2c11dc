package matter

// Matter is a derivation-coded typed primitive: a public key, digest,
// signature, or fixed-width sequence value. The zero value is not valid; use
// NewWithRaw or NewWithQb64.
type Matter struct {
	code Code
	raw  []byte
}

// NewWithRaw builds a Matter from a code and its raw bytes. raw is copied.
func NewWithRaw(code Code, raw []byte) (Matter, error) {
	e, ok := table[code]
	if !ok {
		return Matter{}, ErrUnknownCode
	}
	if len(raw) < e.rawLen {
		return Matter{}, ErrShortRaw
	}
	cp := make([]byte, e.rawLen)
	copy(cp, raw[:e.rawLen])
	return Matter{code: code, raw: cp}, nil
}

// NewWithQb64 parses a textual qb64 string into a Matter.
func NewWithQb64(qb64 string) (Matter, error) {
	e, err := codeFromQb64(qb64)
	if err != nil {
		return Matter{}, err
	}
	pad := padBitsFor(e.qb64Len-len(e.code), e.rawLen)
	raw, err := decodeRaw(qb64[len(e.code):e.qb64Len], pad, e.rawLen)
	if err != nil {
		return Matter{}, err
	}
	return Matter{code: e.code, raw: raw}, nil
}

// Code returns the derivation code.
func (m Matter) Code() Code { return m.code }

// Raw returns the raw bytes. The caller must not mutate the returned slice.
func (m Matter) Raw() []byte { return m.raw }

// Qb64 returns the qualified Base64URL textual form.
func (m Matter) Qb64() string {
	e := table[m.code]
	encLen := e.qb64Len - len(m.code)
	pad := padBitsFor(encLen, e.rawLen)
	return string(m.code) + encodeRaw(m.raw, pad, encLen)
}

// Qb64Len returns the character length this Matter's code always produces.
func (m Matter) Qb64Len() int {
	return table[m.code].qb64Len
}

// Equal reports whether two Matters have the same code and raw value.
func (m Matter) Equal(other Matter) bool {
	if m.code != other.code || len(m.raw) != len(other.raw) {
		return false
	}
	for i := range m.raw {
		if m.raw[i] != other.raw[i] {
			return false
		}
	}
	return true
}

// MutableBuffer is the fourth input shape accepted by decode operations: a
// byte buffer the caller allows to be mutated (and, when strip=true,
// shrunk) in place.
type MutableBuffer struct {
	Buf *[]byte
}

// Decode parses a Matter from the front of one of the four accepted input
// shapes (string; []byte, which serves as both immutable bytes and a
// read-only view; or a MutableBuffer). When
// strip is true the decoded prefix is removed from the input; strip is only
// legal against a MutableBuffer, otherwise ErrStripOnImmutable is returned.
//
// Decode returns the parsed Matter and the number of qb64 characters
// consumed from the input.
func Decode(input any, strip bool) (Matter, int, error) {
	switch v := input.(type) {
	case string:
		if strip {
			return Matter{}, 0, ErrStripOnImmutable
		}
		return decodeFrom(v)
	case []byte:
		if strip {
			return Matter{}, 0, ErrStripOnImmutable
		}
		return decodeFrom(string(v))
	case MutableBuffer:
		m, n, err := decodeFrom(string(*v.Buf))
		if err != nil {
			return Matter{}, 0, err
		}
		if strip {
			*v.Buf = (*v.Buf)[n:]
		}
		return m, n, nil
	default:
		return Matter{}, 0, ErrBadQb64
	}
}

func decodeFrom(s string) (Matter, int, error) {
	e, err := codeFromQb64(s)
	if err != nil {
		return Matter{}, 0, err
	}
	m, err := NewWithQb64(s[:e.qb64Len])
	if err != nil {
		return Matter{}, 0, err
	}
	return m, e.qb64Len, nil
}
