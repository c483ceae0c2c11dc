package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
	"github.com/keri-community/keri-go/threshold"
)

// RotationParams describes a rot or drt event before SAID derivation. The
// identifier prefix is already established, so i is carried verbatim rather
// than derived.
type RotationParams struct {
	Prefix           string // "i"
	Sn               uint64 // "s"; must be >= 1
	Prior            string // "p"; the prior event's SAID
	Keys             []string
	KeyThreshold     threshold.Threshold
	NextDigests      []string
	NextThreshold    threshold.Threshold
	WitnessAdd       []string // "ba"
	WitnessRemove    []string // "br"
	WitnessThreshold threshold.Threshold
	Anchors          []any

	// Delegated produces a drt instead of a rot. The delegator's anchoring
	// seal travels as an attachment (counter group -J), not a KED field, so
	// it is not modeled here.
	Delegated bool

	Code matter.Code
	Kind serder.Kind
}

// Rotation builds a rot (or, with Delegated set, a drt) event and derives
// its SAID. An unset KeyThreshold defaults to the majority computation over
// the supplied key count.
func Rotation(p RotationParams) (serder.Serder, error) {
	if p.Code == "" {
		p.Code = saider.DefaultCode
	}
	if p.Kind == "" {
		p.Kind = serder.JSON
	}
	if len(p.Keys) == 0 {
		return serder.Serder{}, ErrNoKeys
	}
	if p.KeyThreshold.IsZero() {
		p.KeyThreshold = threshold.NewSimple(threshold.Simple(uint64(len(p.Keys))), false)
	}

	ilk := Rot
	if p.Delegated {
		ilk = Drt
	}

	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(ilk))
	ked = ked.Set("d", "")
	ked = ked.Set("i", p.Prefix)
	ked = ked.Set("s", serder.SnToHex(p.Sn))
	ked = ked.Set("p", p.Prior)
	ked = ked.Set("kt", p.KeyThreshold.Wire())
	ked = ked.Set("k", toAny(p.Keys))
	ked = ked.Set("nt", p.NextThreshold.Wire())
	ked = ked.Set("n", toAny(p.NextDigests))
	ked = ked.Set("bt", p.WitnessThreshold.Wire())
	ked = ked.Set("br", toAny(p.WitnessRemove))
	ked = ked.Set("ba", toAny(p.WitnessAdd))
	ked = ked.Set("a", p.Anchors)

	_, s, err := saider.Derive(ked, p.Kind, p.Code, false)
	return s, err
}
