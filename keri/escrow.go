package keri

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/keri-community/keri-go/keristore"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

// EscrowKind names one of the recoverable failure modes a Kevery holds
// pending entries for. The non-recoverable kinds (invalid-signature,
// likely-duplicitous, decoding) are never escrowed, only surfaced.
type EscrowKind string

const (
	EscrowPartiallySigned    EscrowKind = "partially-signed"
	EscrowOutOfOrder         EscrowKind = "out-of-order"
	EscrowMissingDelegation  EscrowKind = "missing-delegation"
	EscrowUnverifiedReceipts EscrowKind = "unverified-receipts"
)

// escrowEntry is one pending event awaiting a prerequisite.
type escrowEntry struct {
	ID       uuid.UUID
	Kind     EscrowKind
	Pre      string
	Sn       uint64
	Serder   serder.Serder
	Sigs     []matter.Siger
	Receipts []keristore.Receipt
	Expires  time.Time
}

// escrows indexes pending entries by (kind, pre, sn); re-attempt is driven
// by Kevery on every state change.
type escrows struct {
	ttl     time.Duration
	entries map[EscrowKind]map[string]map[uint64][]*escrowEntry
}

func newEscrows() *escrows {
	return &escrows{
		ttl:     24 * time.Hour,
		entries: map[EscrowKind]map[string]map[uint64][]*escrowEntry{},
	}
}

// add inserts entry, or, when an entry for the same event (kind, pre, sn,
// said) is already pending, merges the new entry's signatures and receipts
// into the existing one instead of duplicating it. Re-entry on promotion is
// therefore idempotent: reprocessing an escrowed event that fails again
// never grows the escrow.
func (e *escrows) add(kind EscrowKind, entry *escrowEntry) {
	said, _ := entry.Serder.Said()

	byPre, ok := e.entries[kind]
	if !ok {
		byPre = map[string]map[uint64][]*escrowEntry{}
		e.entries[kind] = byPre
	}
	bySn, ok := byPre[entry.Pre]
	if !ok {
		bySn = map[uint64][]*escrowEntry{}
		byPre[entry.Pre] = bySn
	}

	for _, existing := range bySn[entry.Sn] {
		esaid, _ := existing.Serder.Said()
		if esaid != said {
			continue
		}
		existing.Sigs = mergeSigers(existing.Sigs, entry.Sigs)
		existing.Receipts = mergeReceipts(existing.Receipts, entry.Receipts)
		return
	}

	entry.ID = uuid.New()
	if entry.Expires.IsZero() {
		entry.Expires = time.Now().Add(e.ttl)
	}
	bySn[entry.Sn] = append(bySn[entry.Sn], entry)
}

// forPrefix returns every pending entry of kind for pre, in ascending sn
// order so promotion replays a gap front to back.
func (e *escrows) forPrefix(kind EscrowKind, pre string) []*escrowEntry {
	bySn := e.entries[kind][pre]
	sns := make([]uint64, 0, len(bySn))
	for sn := range bySn {
		sns = append(sns, sn)
	}
	sort.Slice(sns, func(i, j int) bool { return sns[i] < sns[j] })
	var out []*escrowEntry
	for _, sn := range sns {
		out = append(out, bySn[sn]...)
	}
	return out
}

// all returns every pending entry of kind across every prefix.
func (e *escrows) all(kind EscrowKind) []*escrowEntry {
	pres := make([]string, 0, len(e.entries[kind]))
	for pre := range e.entries[kind] {
		pres = append(pres, pre)
	}
	sort.Strings(pres)
	var out []*escrowEntry
	for _, pre := range pres {
		out = append(out, e.forPrefix(kind, pre)...)
	}
	return out
}

// remove drops one entry by identity.
func (e *escrows) remove(kind EscrowKind, entry *escrowEntry) {
	bySn, ok := e.entries[kind][entry.Pre]
	if !ok {
		return
	}
	list := bySn[entry.Sn]
	for i, c := range list {
		if c.ID == entry.ID {
			bySn[entry.Sn] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// evictExpired drops every entry whose TTL has passed as of now.
func (e *escrows) evictExpired(now time.Time) {
	for kind, byPre := range e.entries {
		for pre, bySn := range byPre {
			for sn, list := range bySn {
				kept := list[:0]
				for _, entry := range list {
					if entry.Expires.After(now) {
						kept = append(kept, entry)
					}
				}
				e.entries[kind][pre][sn] = kept
			}
		}
	}
}

// mergeSigers unions two indexed-signature sets by key index; on a
// collision the earlier signature wins (both verified against the same key,
// so they are interchangeable).
func mergeSigers(into, from []matter.Siger) []matter.Siger {
	seen := make(map[int]bool, len(into))
	for _, sg := range into {
		seen[sg.Index] = true
	}
	for _, sg := range from {
		if !seen[sg.Index] {
			seen[sg.Index] = true
			into = append(into, sg)
		}
	}
	return into
}

func mergeReceipts(into, from []keristore.Receipt) []keristore.Receipt {
	for _, r := range from {
		dup := false
		for _, existing := range into {
			if existing == r {
				dup = true
				break
			}
		}
		if !dup {
			into = append(into, r)
		}
	}
	return into
}
