package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
)

// InteractionParams describes an ixn event. Interaction does not rotate
// keys: the signing-key set and kt used to satisfy it are the identifier's
// current established ones, carried out of band in the Kever, not in the
// event body (an ixn's only fields beyond the base schema are p and a).
type InteractionParams struct {
	Prefix  string // "i"
	Sn      uint64 // "s"; must be >= 1
	Prior   string // "p"
	Anchors []any  // "a"

	Code matter.Code
	Kind serder.Kind
}

// Interaction builds an ixn event and derives its SAID. Callers must reject
// this construction for identifiers carrying the EstOnly trait before
// signing it; this package has no state to check that against.
func Interaction(p InteractionParams) (serder.Serder, error) {
	if p.Code == "" {
		p.Code = saider.DefaultCode
	}
	if p.Kind == "" {
		p.Kind = serder.JSON
	}

	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(Ixn))
	ked = ked.Set("d", "")
	ked = ked.Set("i", p.Prefix)
	ked = ked.Set("s", serder.SnToHex(p.Sn))
	ked = ked.Set("p", p.Prior)
	ked = ked.Set("a", p.Anchors)

	_, s, err := saider.Derive(ked, p.Kind, p.Code, false)
	return s, err
}
