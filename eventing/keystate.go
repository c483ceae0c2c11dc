package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
	"github.com/keri-community/keri-go/threshold"
)

// KeyStateParams describes a ksn notice: a snapshot of one identifier's
// current Kever state. The ksn field set was built by analogy to icp/rot,
// which left "d" meaning two things in the original layout (the base
// schema's own-event SAID, and a leftover establishment-event digest); this
// constructor emits it once, as the notice's own SAID.
type KeyStateParams struct {
	Prefix string // "i"
	Sn     uint64 // "s"; current sequence number
	Prior  string // "p"; digest of the prior event

	FirstSeen uint64 // "f"
	Datetime  string // "dt"; RFC3339
	LastIlk   Ilk    // "et"; type of the latest accepted event

	Keys             []string
	KeyThreshold     threshold.Threshold
	NextDigests      []string
	NextThreshold    threshold.Threshold
	Witnesses        []string
	WitnessThreshold threshold.Threshold
	Config           []string

	LastEstSn   uint64 // "ee.s"
	LastEstSaid string // "ee.d"

	Delegator string // "di"; empty when not delegated

	Code matter.Code
	Kind serder.Kind
}

// KeyStateNotice builds a ksn event and derives its SAID.
func KeyStateNotice(p KeyStateParams) (serder.Serder, error) {
	if p.Code == "" {
		p.Code = saider.DefaultCode
	}
	if p.Kind == "" {
		p.Kind = serder.JSON
	}

	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(Ksn))
	ked = ked.Set("d", "")
	ked = ked.Set("i", p.Prefix)
	ked = ked.Set("s", serder.SnToHex(p.Sn))
	ked = ked.Set("p", p.Prior)
	ked = ked.Set("f", serder.SnToHex(p.FirstSeen))
	ked = ked.Set("dt", p.Datetime)
	ked = ked.Set("et", string(p.LastIlk))
	ked = ked.Set("kt", p.KeyThreshold.Wire())
	ked = ked.Set("k", toAny(p.Keys))
	ked = ked.Set("nt", p.NextThreshold.Wire())
	ked = ked.Set("n", toAny(p.NextDigests))
	ked = ked.Set("bt", p.WitnessThreshold.Wire())
	ked = ked.Set("b", toAny(p.Witnesses))
	ked = ked.Set("c", toAny(p.Config))
	ked = ked.Set("ee", map[string]any{"s": serder.SnToHex(p.LastEstSn), "d": p.LastEstSaid})
	if p.Delegator != "" {
		ked = ked.Set("di", p.Delegator)
	}

	_, s, err := saider.Derive(ked, p.Kind, p.Code, false)
	return s, err
}
