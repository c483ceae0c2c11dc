package matter

// Code names the role a Matter plays. Dispatch on Code, never on a class
// hierarchy, per the derivation-code-driven design in DESIGN.md.
type Code string

// Known derivation codes. Hard (selector) sizes of 1 or 2 characters are
// supported; soft/variable-length codes are not needed by this kernel.
const (
	Ed25519Seed Code = "A" // Ed25519 private seed, 32 byte raw
	Ed25519N    Code = "B" // Ed25519 non-transferable public key, 32 byte raw
	Ed25519     Code = "D" // Ed25519 transferable public key, 32 byte raw
	Blake3_256  Code = "E" // Blake3-256 digest, 32 byte raw
	SHA3_256    Code = "H" // SHA3-256 digest, 32 byte raw
	SHA2_256    Code = "I" // SHA2-256 digest, 32 byte raw (rarely used; kept for table completeness)
	Ed25519Sig  Code = "0B" // Ed25519 signature, 64 byte raw
	Seqner      Code = "0A" // Big-endian sequence number, 16 byte raw
)

// entry describes the fixed layout of one derivation code: the number of raw
// bytes it carries and the total qb64 text length it always produces.
type entry struct {
	code    Code
	rawLen  int
	qb64Len int
}

var table = map[Code]entry{}
var byQb64Len = map[int][]entry{} // registered entries grouped by qb64 length

func register(code Code, rawLen int) {
	qb64Len := qb64Length(len(code), rawLen)
	e := entry{code: code, rawLen: rawLen, qb64Len: qb64Len}
	table[code] = e
	byQb64Len[qb64Len] = append(byQb64Len[qb64Len], e)
}

func init() {
	register(Ed25519Seed, 32)
	register(Ed25519N, 32)
	register(Ed25519, 32)
	register(Blake3_256, 32)
	register(SHA3_256, 32)
	register(SHA2_256, 32)
	register(Ed25519Sig, 64)
	register(Seqner, 16)
}

// RawSize returns the fixed raw byte length for code.
func RawSize(code Code) (int, bool) {
	e, ok := table[code]
	return e.rawLen, ok
}

// Qb64Size returns the fixed qb64 text length for code.
func Qb64Size(code Code) (int, bool) {
	e, ok := table[code]
	return e.qb64Len, ok
}

// IsDigestCode reports whether code names a digest derivation.
func IsDigestCode(code Code) bool {
	switch code {
	case Blake3_256, SHA3_256, SHA2_256:
		return true
	default:
		return false
	}
}

// IsNonTransferable reports whether code names a non-transferable signing key.
func IsNonTransferable(code Code) bool {
	return code == Ed25519N
}

// codeFromQb64 finds the registered entry whose hard size and total length
// match the leading characters of qb64. Hard size is inferred from the first
// character: codes beginning with '0' are two characters wide, everything
// else is one character wide (matches the full CESR selector table, reduced
// to the codes this kernel implements).
func codeFromQb64(qb64 string) (entry, error) {
	if len(qb64) < 1 {
		return entry{}, ErrShortQb64
	}
	hard := 1
	if qb64[0] == '0' {
		hard = 2
	}
	if len(qb64) < hard {
		return entry{}, ErrShortQb64
	}
	code := Code(qb64[:hard])
	e, ok := table[code]
	if !ok {
		return entry{}, ErrUnknownCode
	}
	if len(qb64) < e.qb64Len {
		return entry{}, ErrShortQb64
	}
	return e, nil
}
