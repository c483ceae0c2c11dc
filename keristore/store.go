// Package keristore models the KEL/receipt/key-state database Kevery needs
// as a Go interface, plus one in-memory reference implementation. This
// package is not a durability guarantee: it shapes the contract a real
// persistent store would meet without attempting to be one itself.
package keristore

// Receipt is one endorsement entry under a KEL event's receipt index. For a
// non-transferable endorsement (counter.ReceiptCouple) Seqner and Digest are
// empty; for a transferable endorsement (quadruple/quintuple) they locate
// the endorsing establishment event.
type Receipt struct {
	EndorserPre string
	Seqner      string
	Digest      string
	Sig         string
}

// Store is the append-only, keyed database Kevery reads and writes. Its
// tables: KEL (i||sn) -> d, events (i||d) -> raw, first-seen (i||fn) -> d,
// receipts (i||d) -> {couples}, key-state i -> ksn raw, duplicity
// (i||sn) -> {d}.
type Store interface {
	// AppendKEL records that said is the accepted event at (pre, sn) and
	// stores its raw bytes under the event table.
	AppendKEL(pre string, sn uint64, said string, raw []byte) error

	// GetKEL returns the SAID accepted at (pre, sn), and its raw bytes.
	GetKEL(pre string, sn uint64) (said string, raw []byte, ok bool)

	// GetEvent returns the raw bytes for (pre, said) regardless of whether
	// said is the currently accepted event at its sn (superseded branches
	// remain retrievable for duplicity inspection).
	GetEvent(pre, said string) ([]byte, bool)

	// AppendReceipt adds one endorsement to the receipt index for (pre,
	// said). Appending the same couple twice is a no-op.
	AppendReceipt(pre, said string, r Receipt) error

	// Receipts returns every recorded endorsement for (pre, said).
	Receipts(pre, said string) []Receipt

	// FirstSeen returns the SAID first-seen at ordinal fn for pre.
	FirstSeen(pre string, fn uint64) (said string, ok bool)

	// NextFN returns the next unused first-seen ordinal for pre, without
	// reserving it.
	NextFN(pre string) uint64

	// PutKeyState stores the latest key-state snapshot (a serialized ksn)
	// for pre.
	PutKeyState(pre string, ksn []byte) error

	// GetKeyState returns the latest key-state snapshot for pre.
	GetKeyState(pre string) ([]byte, bool)

	// MarkDuplicitous records said as a superseded (or competing) branch at
	// (pre, sn).
	MarkDuplicitous(pre string, sn uint64, said string) error

	// Duplicitous returns every SAID marked duplicitous at (pre, sn).
	Duplicitous(pre string, sn uint64) ([]string, bool)
}
