package keri

// Verfer is the external collaborator that knows how to check a signature
// against one qb64-encoded public key. A real implementation wraps a
// Matter of a signing-key derivation code (kerikeys.KeyPair satisfies this).
type Verfer interface {
	// Qb64 is the verifying key's qualified Base64URL text form.
	Qb64() string
	// Verify reports whether sig is a valid signature over msg.
	Verify(msg, sig []byte) bool
}

// Signer additionally produces signatures; Kever never needs this side, it
// only verifies, but constructors building a test fixture usually want both
// halves of the same key pair.
type Signer interface {
	Verfer
	// Sign returns the raw signature bytes over msg.
	Sign(msg []byte) ([]byte, error)
}
