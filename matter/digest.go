package matter

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Digest computes the raw digest bytes for code over data. Only digest
// codes are accepted.
func Digest(code Code, data []byte) ([]byte, error) {
	switch code {
	case Blake3_256:
		sum := blake3.Sum256(data)
		return sum[:], nil
	case SHA3_256:
		sum := sha3.Sum256(data)
		return sum[:], nil
	case SHA2_256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	default:
		return nil, ErrUnknownCode
	}
}

// DigestMatter computes the digest of data under code and returns it as a
// Matter.
func DigestMatter(code Code, data []byte) (Matter, error) {
	raw, err := Digest(code, data)
	if err != nil {
		return Matter{}, err
	}
	return NewWithRaw(code, raw)
}
