package parser

import (
	"github.com/keri-community/keri-go/counter"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

// Messagize renders a message for the wire: the event's own raw bytes
// followed by each non-empty attachment group this package knows how to
// decode, in the same order decodeAttachments accepts them. It is the
// encode side to decodeAttachments' decode. pipelined wraps every attachment
// group in a single Pipelined (-V) envelope, so a receiver that doesn't
// understand one of the nested groups can still skip past the whole thing.
func Messagize(s serder.Serder, sigs []matter.Siger, witnessSigs []matter.Siger, seal *counter.SourceCouple, pipelined bool) ([]byte, error) {
	var atts []byte

	group, err := sigGroup(counter.ControllerIdxSigs, sigs)
	if err != nil {
		return nil, err
	}
	atts = append(atts, group...)

	group, err = sigGroup(counter.WitnessIdxSigs, witnessSigs)
	if err != nil {
		return nil, err
	}
	atts = append(atts, group...)

	if seal != nil {
		c, err := counter.New(counter.SealSourceCouples, 1)
		if err != nil {
			return nil, err
		}
		atts = append(atts, []byte(c.String())...)
		atts = append(atts, []byte(seal.Seqner)...)
		atts = append(atts, []byte(seal.Digest)...)
	}

	if pipelined {
		c, err := counter.New(counter.Pipelined, len(atts))
		if err != nil {
			return nil, err
		}
		wrapped := make([]byte, 0, len(c.String())+len(atts))
		wrapped = append(wrapped, []byte(c.String())...)
		wrapped = append(wrapped, atts...)
		atts = wrapped
	}

	out := make([]byte, 0, len(s.Raw)+len(atts))
	out = append(out, s.Raw...)
	out = append(out, atts...)
	return out, nil
}

// sigGroup renders an indexed-signature attachment group, or nil if sigs is
// empty (an empty group is simply omitted, not encoded with a zero count).
func sigGroup(code counter.GroupCode, sigs []matter.Siger) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, nil
	}
	c, err := counter.New(code, len(sigs))
	if err != nil {
		return nil, err
	}
	out := []byte(c.String())
	for _, sg := range sigs {
		out = append(out, []byte(sg.Qb64Indexed())...)
	}
	return out, nil
}
