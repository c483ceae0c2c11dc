package counter

import "fmt"

// Counter is a 4-character typed header encoding (group code, count). Count
// means "number of members" for every group except Pipelined, where it means
// the number of enveloped bytes.
type Counter struct {
	Code  GroupCode
	Count int
}

// New builds a Counter, validating that code is registered and count fits
// the 2 hex digit field (0-255).
func New(code GroupCode, count int) (Counter, error) {
	if !knownCodes[code] {
		return Counter{}, ErrUnknownGroupCode
	}
	if count < 0 || count > 0xFF {
		return Counter{}, ErrBadHeader
	}
	return Counter{Code: code, Count: count}, nil
}

// String renders the counter as its 4-character wire form, e.g. "-A02".
func (c Counter) String() string {
	return fmt.Sprintf("-%s%02x", string(c.Code), c.Count)
}

// MutableBuffer mirrors matter.MutableBuffer: a caller-owned buffer that
// decode operations may shrink in place when strip=true.
type MutableBuffer struct {
	Buf *[]byte
}

// Decode parses a Counter from the front of one of the four accepted input
// shapes. When strip is true the 4 header characters are removed from the
// input; strip is only legal against a MutableBuffer.
func Decode(input any, strip bool) (Counter, error) {
	switch v := input.(type) {
	case string:
		if strip {
			return Counter{}, ErrStripOnImmutable
		}
		c, _, err := parse(v)
		return c, err
	case []byte:
		if strip {
			return Counter{}, ErrStripOnImmutable
		}
		c, _, err := parse(string(v))
		return c, err
	case MutableBuffer:
		c, n, err := parse(string(*v.Buf))
		if err != nil {
			return Counter{}, err
		}
		if strip {
			*v.Buf = (*v.Buf)[n:]
		}
		return c, nil
	default:
		return Counter{}, ErrBadHeader
	}
}

func parse(s string) (Counter, int, error) {
	if len(s) < HeaderLen {
		return Counter{}, 0, ErrShortHeader
	}
	if s[0] != '-' {
		return Counter{}, 0, ErrBadHeader
	}
	code := GroupCode(s[1:2])
	if !knownCodes[code] {
		return Counter{}, 0, ErrUnknownGroupCode
	}
	var count int
	if _, err := fmt.Sscanf(s[2:4], "%02x", &count); err != nil {
		return Counter{}, 0, ErrBadHeader
	}
	return Counter{Code: code, Count: count}, HeaderLen, nil
}
