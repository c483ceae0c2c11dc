package eventing

import "github.com/keri-community/keri-go/serder"

// ReceiptParams identifies the event a non-transferable rct endorses. The
// rct's own d/i/s fields simply copy the receipted event's identity; a
// receipt is never itself SAID-derived. The endorsement travels entirely in
// attachments, not the event body.
type ReceiptParams struct {
	Prefix string // "i" of the receipted event
	Sn     uint64 // "s" of the receipted event
	Said   string // "d" of the receipted event

	Kind serder.Kind
}

// Receipt builds an rct event body. The endorsing signature(s) travel as
// counter-framed attachments (counter.ReceiptCouple / TransReceiptQuadruple),
// not as part of this body.
func Receipt(p ReceiptParams) (serder.Serder, error) {
	if p.Kind == "" {
		p.Kind = serder.JSON
	}
	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(Rct))
	ked = ked.Set("d", p.Said)
	ked = ked.Set("i", p.Prefix)
	ked = ked.Set("s", serder.SnToHex(p.Sn))

	return serder.FromKed(ked, p.Kind)
}
