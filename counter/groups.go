package counter

// Fixed qb64 field widths used by attachment group members (matter.Ed25519*
// and digest codes are all 44 characters, matter.Ed25519Sig is 88,
// matter.Seqner is 24; see matter.Qb64Size for the authoritative table).
const (
	preLen    = 44
	sigLen    = 88
	seqnerLen = 24
	digestLen = 44
)

// WitnessCouple is a witness's indexed-signature endorsement:
// non-transferable prefix + signature (132 chars).
type WitnessCouple struct {
	Pre string
	Sig string
}

// ReceiptCouple is a non-transferable endorser's receipt couple: prefix +
// signature (132 chars), same shape as WitnessCouple but carried in a
// NonTransReceiptCouples group.
type ReceiptCouple struct {
	Pre string
	Sig string
}

// SourceCouple locates a prior event by sequence number and digest (68
// chars): used for seal/delegation anchoring.
type SourceCouple struct {
	Seqner string
	Digest string
}

// ReceiptTriple identifies a transferable endorser's event: prefix + sequence
// number + digest (112 chars), prior to the attached signature(s).
type ReceiptTriple struct {
	Pre    string
	Seqner string
	Digest string
}

// TransReceiptQuadruple is a transferable receipt anchor: prefix + sequence
// number + digest + signature (200 chars).
type TransReceiptQuadruple struct {
	Pre    string
	Seqner string
	Digest string
	Sig    string
}

// TransReceiptQuintuple prepends the receipted event's own digest to a
// TransReceiptQuadruple (244 chars).
type TransReceiptQuintuple struct {
	EventDigest string
	Pre         string
	Seqner      string
	Digest      string
	Sig         string
}

func take(s string, n int) (string, string, error) {
	if len(s) < n {
		return "", "", ErrShortGroup
	}
	return s[:n], s[n:], nil
}

func stringOf(input any) (string, error) {
	switch v := input.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case MutableBuffer:
		return string(*v.Buf), nil
	default:
		return "", ErrBadHeader
	}
}

func finishStrip(input any, strip bool, consumed int) error {
	if !strip {
		return nil
	}
	v, ok := input.(MutableBuffer)
	if !ok {
		return ErrStripOnImmutable
	}
	*v.Buf = (*v.Buf)[consumed:]
	return nil
}

// DeWitnessCouple decodes one WitnessCouple from the front of input.
func DeWitnessCouple(input any, strip bool) (WitnessCouple, error) {
	s, err := stringOf(input)
	if err != nil {
		return WitnessCouple{}, err
	}
	pre, rest, err := take(s, preLen)
	if err != nil {
		return WitnessCouple{}, err
	}
	sig, _, err := take(rest, sigLen)
	if err != nil {
		return WitnessCouple{}, err
	}
	if err := finishStrip(input, strip, preLen+sigLen); err != nil {
		return WitnessCouple{}, err
	}
	return WitnessCouple{Pre: pre, Sig: sig}, nil
}

// DeReceiptCouple decodes one ReceiptCouple from the front of input.
func DeReceiptCouple(input any, strip bool) (ReceiptCouple, error) {
	wc, err := DeWitnessCouple(input, strip)
	return ReceiptCouple{Pre: wc.Pre, Sig: wc.Sig}, err
}

// DeSourceCouple decodes one SourceCouple from the front of input.
func DeSourceCouple(input any, strip bool) (SourceCouple, error) {
	s, err := stringOf(input)
	if err != nil {
		return SourceCouple{}, err
	}
	seqner, rest, err := take(s, seqnerLen)
	if err != nil {
		return SourceCouple{}, err
	}
	digest, _, err := take(rest, digestLen)
	if err != nil {
		return SourceCouple{}, err
	}
	if err := finishStrip(input, strip, seqnerLen+digestLen); err != nil {
		return SourceCouple{}, err
	}
	return SourceCouple{Seqner: seqner, Digest: digest}, nil
}

// DeReceiptTriple decodes one ReceiptTriple from the front of input.
func DeReceiptTriple(input any, strip bool) (ReceiptTriple, error) {
	s, err := stringOf(input)
	if err != nil {
		return ReceiptTriple{}, err
	}
	pre, rest, err := take(s, preLen)
	if err != nil {
		return ReceiptTriple{}, err
	}
	seqner, rest, err := take(rest, seqnerLen)
	if err != nil {
		return ReceiptTriple{}, err
	}
	digest, _, err := take(rest, digestLen)
	if err != nil {
		return ReceiptTriple{}, err
	}
	if err := finishStrip(input, strip, preLen+seqnerLen+digestLen); err != nil {
		return ReceiptTriple{}, err
	}
	return ReceiptTriple{Pre: pre, Seqner: seqner, Digest: digest}, nil
}

// DeTransReceiptQuadruple decodes one TransReceiptQuadruple from the front of input.
func DeTransReceiptQuadruple(input any, strip bool) (TransReceiptQuadruple, error) {
	s, err := stringOf(input)
	if err != nil {
		return TransReceiptQuadruple{}, err
	}
	pre, rest, err := take(s, preLen)
	if err != nil {
		return TransReceiptQuadruple{}, err
	}
	seqner, rest, err := take(rest, seqnerLen)
	if err != nil {
		return TransReceiptQuadruple{}, err
	}
	digest, rest, err := take(rest, digestLen)
	if err != nil {
		return TransReceiptQuadruple{}, err
	}
	sig, _, err := take(rest, sigLen)
	if err != nil {
		return TransReceiptQuadruple{}, err
	}
	if err := finishStrip(input, strip, preLen+seqnerLen+digestLen+sigLen); err != nil {
		return TransReceiptQuadruple{}, err
	}
	return TransReceiptQuadruple{Pre: pre, Seqner: seqner, Digest: digest, Sig: sig}, nil
}

// DeTransReceiptQuintuple decodes one TransReceiptQuintuple from the front of input.
func DeTransReceiptQuintuple(input any, strip bool) (TransReceiptQuintuple, error) {
	s, err := stringOf(input)
	if err != nil {
		return TransReceiptQuintuple{}, err
	}
	evtDigest, rest, err := take(s, digestLen)
	if err != nil {
		return TransReceiptQuintuple{}, err
	}
	quad, err := DeTransReceiptQuadruple(rest, false)
	if err != nil {
		return TransReceiptQuintuple{}, err
	}
	if err := finishStrip(input, strip, digestLen+preLen+seqnerLen+digestLen+sigLen); err != nil {
		return TransReceiptQuintuple{}, err
	}
	return TransReceiptQuintuple{
		EventDigest: evtDigest,
		Pre:         quad.Pre,
		Seqner:      quad.Seqner,
		Digest:      quad.Digest,
		Sig:         quad.Sig,
	}, nil
}
