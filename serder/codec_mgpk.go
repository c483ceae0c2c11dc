package serder

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeMGPK renders ked as a MessagePack map with entries in insertion
// order, using the streaming Encoder so the map length and each key/value
// pair are written exactly in the order supplied.
func encodeMGPK(ked KED) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(len(ked)); err != nil {
		return nil, err
	}
	for _, kv := range ked {
		if err := enc.EncodeString(kv.Key); err != nil {
			return nil, err
		}
		if err := enc.Encode(kv.Val); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeMGPK parses a MessagePack map from data, preserving wire field order
// via the streaming Decoder (DecodeMapLen followed by n key/value reads).
func decodeMGPK(data []byte) (KED, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	out := make(KED, 0, n)
	for i := 0; i < n; i++ {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		val, err := dec.DecodeInterface()
		if err != nil {
			return nil, err
		}
		out = append(out, KV{Key: key, Val: val})
	}
	return out, nil
}
