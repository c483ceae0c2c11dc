package parser

import (
	"github.com/keri-community/keri-go/counter"
	"github.com/keri-community/keri-go/keristore"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

// Message is one fully decoded event body plus whatever attachment groups
// followed it in the stream.
type Message struct {
	Serder serder.Serder

	// Sigs are the controller indexed signatures (-A group): what
	// Kever.NewKever/Rotate/Interact verify against the current signing
	// keys.
	Sigs []matter.Siger

	// WitnessSigs are witness indexed signatures (-B group); this kernel's
	// Kevery does not itself verify witness endorsements, but a driver
	// wiring up the witness-indirection transport (out of scope here)
	// needs them.
	WitnessSigs []matter.Siger

	// Receipts are non-transferable and transferable endorsement
	// couples/quadruples/quintuples (-C/-F/-G groups), ready to hand to
	// keri.Kevery.Process for an rct event.
	Receipts []keristore.Receipt

	// Seals are delegation-anchor seal source couples (-J group).
	Seals []counter.SourceCouple

	// LastEstSeals are last-establishment-event seal prefixes (-H group).
	LastEstSeals []string
}

func (m *Message) merge(other Message) {
	m.Sigs = append(m.Sigs, other.Sigs...)
	m.WitnessSigs = append(m.WitnessSigs, other.WitnessSigs...)
	m.Receipts = append(m.Receipts, other.Receipts...)
	m.Seals = append(m.Seals, other.Seals...)
	m.LastEstSeals = append(m.LastEstSeals, other.LastEstSeals...)
}

// Processor is the consumer a Parser hands decoded messages to. keri.Kevery
// satisfies this with its own Process method; it is spelled out here as an
// interface rather than imported directly so this package never needs to
// depend on keri. The Parser only ever hands off, it never itself
// understands Kever/Kevery state.
type Processor interface {
	Process(s serder.Serder, sigs []matter.Siger, receipts []keristore.Receipt) error
}
