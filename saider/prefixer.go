package saider

import "errors"

// ErrNotBasic is returned by DeriveBasicPrefix when the key list does not
// describe a basic-derivation identifier (exactly one key).
var ErrNotBasic = errors.New("saider: basic derivation requires exactly one signing key")

// DeriveBasicPrefix returns the identifier prefix for a basic-derivation
// inception: the qb64 of the sole signing key. Basic derivation is used
// whenever the controller chooses not to bind identity to the inception
// event's own content.
func DeriveBasicPrefix(keysQb64 []string) (string, error) {
	if len(keysQb64) != 1 {
		return "", ErrNotBasic
	}
	return keysQb64[0], nil
}
