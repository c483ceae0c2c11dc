// Package kerikeys is the ambient signing key store collaborator: an
// external HD salt-derived key manager that produces (sign, verify) pairs
// on demand and deliberately keeps out of the core kernel. It is built only
// deep enough to hand the kever and parser test suites real (Signer,
// Verfer) pairs; it is not a production key manager.
package kerikeys

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/keri-community/keri-go/matter"
	"golang.org/x/crypto/blake2b"
)

// KeyPair is an Ed25519 signing key plus its qb64-coded public half. Code is
// either matter.Ed25519 (transferable) or matter.Ed25519N (non-transferable);
// Sign is only meaningful on the former in a real controller, but both are
// produced the same way here since Kever only ever calls Verify.
type KeyPair struct {
	code matter.Code
	priv ed25519.PrivateKey
	pub  matter.Matter
}

// New generates a random Ed25519 key pair under code (matter.Ed25519 or
// matter.Ed25519N).
func New(code matter.Code) (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	return fromRaw(code, pub, priv)
}

// FromSeed builds a deterministic key pair from a 32-byte Ed25519 seed, the
// same derivation ed25519.NewKeyFromSeed performs.
func FromSeed(code matter.Code, seed []byte) (KeyPair, error) {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return fromRaw(code, pub, priv)
}

func fromRaw(code matter.Code, pub ed25519.PublicKey, priv ed25519.PrivateKey) (KeyPair, error) {
	m, err := matter.NewWithRaw(code, pub)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{code: code, priv: priv, pub: m}, nil
}

// Qb64 is the verifying key's qualified Base64URL text form.
func (k KeyPair) Qb64() string { return k.pub.Qb64() }

// Verify reports whether sig is a valid Ed25519 signature over msg.
func (k KeyPair) Verify(msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(k.pub.Raw()), msg, sig)
}

// Sign returns the raw Ed25519 signature over msg.
func (k KeyPair) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, msg), nil
}

// Salter stretches one root salt into as many deterministic Ed25519 seeds as
// a controller needs across rotations, a simplified stand-in for an HD
// salt-derived key manager, not a BIP32-compatible derivation. Each seed is
// blake2b-256(salt || path), so the same (salt, path) always reproduces the
// same key pair.
type Salter struct {
	salt []byte
}

// NewSalter wraps a root salt (any length; typically 16+ random bytes).
func NewSalter(salt []byte) Salter {
	return Salter{salt: append([]byte(nil), salt...)}
}

// Derive produces the key pair at path (e.g. "icp-0", "rot-1-0") under code.
func (s Salter) Derive(code matter.Code, path string) (KeyPair, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return KeyPair{}, err
	}
	h.Write(s.salt)
	h.Write([]byte(path))
	seed := h.Sum(nil)
	return FromSeed(code, seed)
}
