package serder

import (
	"bytes"
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// errBadCBORHeader signals a map header this encoder never produces.
var errBadCBORHeader = errors.New("serder: unsupported cbor map header")

// encodeCBOR renders ked as a CBOR map with entries in insertion order.
// fxamacker/cbor's Marshal does not expose insertion-order map encoding (Go
// maps have no order), so the map header and entries are written directly:
// each key/value is marshaled independently with cbor.Marshal and
// concatenated after a hand-written definite-length map header.
func encodeCBOR(ked KED) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(cborMapHeader(len(ked)))
	for _, kv := range ked {
		k, err := cbor.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		v, err := cbor.Marshal(kv.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.Write(v)
	}
	return buf.Bytes(), nil
}

// cborMapHeader returns the definite-length CBOR major-type-5 header for an
// n-entry map (n <= 0xFFFFFFFF).
func cborMapHeader(n int) []byte {
	const majorMap = 0xA0
	switch {
	case n < 24:
		return []byte{byte(majorMap | n)}
	case n < 1<<8:
		return []byte{0xB8, byte(n)}
	case n < 1<<16:
		return []byte{0xB9, byte(n >> 8), byte(n)}
	default:
		return []byte{0xBA, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
}

// decodeCBOR parses a CBOR map from data, preserving wire field order: the
// map header is parsed by hand to recover the entry count, then a streaming
// Decoder reads exactly that many key/value item pairs off the remaining
// bytes (CBOR items are self-delimiting, so sequential Decode calls over the
// post-header bytes reproduce wire order exactly).
func decodeCBOR(data []byte) (KED, error) {
	n, headerLen, err := parseCBORMapHeader(data)
	if err != nil {
		return nil, err
	}
	dec := cbor.NewDecoder(bytes.NewReader(data[headerLen:]))
	out := make(KED, 0, n)
	for i := 0; i < n; i++ {
		var key string
		if err := dec.Decode(&key); err != nil {
			return nil, err
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, KV{Key: key, Val: normalizeCBORValue(val)})
	}
	return out, nil
}

func parseCBORMapHeader(data []byte) (n int, headerLen int, err error) {
	if len(data) == 0 {
		return 0, 0, ErrShortBody
	}
	b0 := data[0]
	if b0&0xE0 != 0xA0 {
		return 0, 0, errBadCBORHeader
	}
	info := b0 & 0x1F
	switch {
	case info < 24:
		return int(info), 1, nil
	case info == 24:
		if len(data) < 2 {
			return 0, 0, ErrShortBody
		}
		return int(data[1]), 2, nil
	case info == 25:
		if len(data) < 3 {
			return 0, 0, ErrShortBody
		}
		return int(data[1])<<8 | int(data[2]), 3, nil
	case info == 26:
		if len(data) < 5 {
			return 0, 0, ErrShortBody
		}
		return int(data[1])<<24 | int(data[2])<<16 | int(data[3])<<8 | int(data[4]), 5, nil
	default:
		return 0, 0, errBadCBORHeader
	}
}

// normalizeCBORValue recurses into nested maps to make their key types
// consistently string (cbor.Unmarshal into `any` already does this for
// fxamacker/cbor, but we keep this hook symmetrical with codec_json.go).
func normalizeCBORValue(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if ks, ok := k.(string); ok {
				out[ks] = normalizeCBORValue(vv)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeCBORValue(vv)
		}
		return out
	default:
		return v
	}
}
