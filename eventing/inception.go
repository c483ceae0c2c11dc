package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
	"github.com/keri-community/keri-go/threshold"
)

// InceptionParams describes an icp or dip event before SAID derivation.
// Leave Delegator empty to build a plain icp; set it to build a dip.
type InceptionParams struct {
	Keys             []string
	KeyThreshold     threshold.Threshold
	NextDigests      []string
	NextThreshold    threshold.Threshold
	Witnesses        []string
	WitnessThreshold threshold.Threshold
	Config           []string
	Anchors          []any
	Delegator        string // "di"; empty for a non-delegated inception

	// SelfAddressing chooses self-addressing derivation (i == d, both the
	// SAID of the dummy-substituted event) over basic derivation (i == the
	// sole signing key's qb64). Basic derivation requires exactly one key.
	SelfAddressing bool

	Code matter.Code // digest code; defaults to saider.DefaultCode
	Kind serder.Kind // serialization kind; defaults to serder.JSON
}

// Inception builds an icp (or, with Delegator set, a dip) event and derives
// its SAID. Unset thresholds default to the majority/ample computation over
// the supplied key and witness counts.
func Inception(p InceptionParams) (serder.Serder, error) {
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
	if p.WitnessThreshold.IsZero() && len(p.Witnesses) > 0 {
		bt, err := threshold.Ample(uint64(len(p.Witnesses)), nil, true)
		if err != nil {
			return serder.Serder{}, err
		}
		p.WitnessThreshold = threshold.NewSimple(bt, false)
	}

	var i string
	if !p.SelfAddressing {
		if p.Delegator != "" {
			return serder.Serder{}, ErrDelegatedNeedsSelfAddressing
		}
		var err error
		i, err = saider.DeriveBasicPrefix(p.Keys)
		if err != nil {
			return serder.Serder{}, ErrBasicDerivationKeyCount
		}

		km, err := matter.NewWithQb64(p.Keys[0])
		if err != nil {
			return serder.Serder{}, err
		}
		if matter.IsNonTransferable(km.Code()) {
			if len(p.NextDigests) > 0 || len(p.Witnesses) > 0 || len(p.Anchors) > 0 {
				return serder.Serder{}, ErrNonTransferableRestricted
			}
		}
	}

	ilk := Icp
	if p.Delegator != "" {
		ilk = Dip
	}

	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(ilk))
	ked = ked.Set("d", "")
	ked = ked.Set("i", i)
	ked = ked.Set("s", serder.SnToHex(0))
	ked = ked.Set("kt", p.KeyThreshold.Wire())
	ked = ked.Set("k", toAny(p.Keys))
	ked = ked.Set("nt", p.NextThreshold.Wire())
	ked = ked.Set("n", toAny(p.NextDigests))
	ked = ked.Set("bt", p.WitnessThreshold.Wire())
	ked = ked.Set("b", toAny(p.Witnesses))
	ked = ked.Set("c", toAny(p.Config))
	ked = ked.Set("a", p.Anchors)
	if p.Delegator != "" {
		ked = ked.Set("di", p.Delegator)
	}

	// Self-addressing derivation binds both i and d to the event's own SAID.
	// Basic derivation has no digest to bind: the prefix is the key itself,
	// and d simply repeats it.
	if p.SelfAddressing {
		_, s, err := saider.Derive(ked, p.Kind, p.Code, true)
		return s, err
	}
	ked = ked.Set("d", i)
	return serder.FromKed(ked, p.Kind)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
