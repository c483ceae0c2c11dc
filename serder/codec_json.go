package serder

import (
	"bytes"
	"encoding/json"
)

// encodeJSON renders ked as a JSON object with fields in insertion order.
func encodeJSON(ked KED) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range ked {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(kv.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeJSON parses a JSON object from data, preserving field order via
// json.Decoder's token stream (encoding/json loses order only when you
// unmarshal straight into a map; walking tokens keeps it).
func decodeJSON(data []byte) (KED, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrBadVersionString
	}

	var out KED
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, ErrFieldType
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, err
		}
		out = append(out, KV{Key: key, Val: normalizeJSONValue(val)})
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return nil, err
	}
	return out, nil
}

// normalizeJSONValue converts json.Number leaves (produced by UseNumber) back
// to the plain types the rest of the kernel expects: integers as int64,
// everything else passed through, recursing into nested containers.
func normalizeJSONValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		// Only reachable for nested objects; order is not load-bearing for
		// nested maps, only for the top-level event mapping.
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeJSONValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = normalizeJSONValue(vv)
		}
		return out
	default:
		return v
	}
}
