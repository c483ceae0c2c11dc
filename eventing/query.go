package eventing

import (
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
)

// QueryParams describes a qry message: a self-addressing request for
// another party's key state or KEL, routed by Route (e.g. "ksn", "logs").
// The r (route) / q (args) field pair is this package's own layout for qry;
// no other message type here shares it. See DESIGN.md.
type QueryParams struct {
	Route string         // "r"
	Args  map[string]any // "q"

	Code matter.Code
	Kind serder.Kind
}

// Query builds a qry event and derives its SAID.
func Query(p QueryParams) (serder.Serder, error) {
	if p.Code == "" {
		p.Code = saider.DefaultCode
	}
	if p.Kind == "" {
		p.Kind = serder.JSON
	}

	var ked serder.KED
	ked = ked.Set("v", "")
	ked = ked.Set("t", string(Qry))
	ked = ked.Set("d", "")
	ked = ked.Set("r", p.Route)
	ked = ked.Set("q", p.Args)

	_, s, err := saider.Derive(ked, p.Kind, p.Code, false)
	return s, err
}
