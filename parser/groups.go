package parser

import (
	"github.com/keri-community/keri-go/counter"
	"github.com/keri-community/keri-go/keristore"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

var preLen, _ = matter.Qb64Size(matter.Ed25519N)

// decodeAttachments consumes every counter-framed group from the front of
// buf, for as long as the next bytes begin with the counter tag, and
// returns the accumulated Message, the number of bytes consumed, and the
// first hard decode error encountered outside of a Pipelined envelope.
//
// Inside a Pipelined (-V) envelope a decode error is swallowed rather than
// propagated: that wrapper exists precisely so a parser that does not
// understand every nested group can still skip past it; whatever groups did
// decode before the error are still merged in.
func decodeAttachments(buf []byte, s serder.Serder) (Message, int, error) {
	msg := Message{Serder: s}
	cursor := buf

	for len(cursor) > 0 && cursor[0] == '-' {
		mb := counter.MutableBuffer{Buf: &cursor}
		c, err := counter.Decode(mb, true)
		if err != nil {
			return msg, len(buf) - len(cursor), err
		}

		switch c.Code {
		case counter.Pipelined:
			n := c.Count
			if len(cursor) < n {
				return msg, len(buf) - len(cursor), counter.ErrShortGroup
			}
			inner := cursor[:n]
			innerMsg, _, _ := decodeAttachments(inner, s)
			msg.merge(innerMsg)
			cursor = cursor[n:]

		case counter.ControllerIdxSigs, counter.WitnessIdxSigs:
			for i := 0; i < c.Count; i++ {
				mmb := matter.MutableBuffer{Buf: &cursor}
				sg, _, err := matter.DecodeSiger(mmb, true)
				if err != nil {
					return msg, len(buf) - len(cursor), err
				}
				if c.Code == counter.ControllerIdxSigs {
					msg.Sigs = append(msg.Sigs, sg)
				} else {
					msg.WitnessSigs = append(msg.WitnessSigs, sg)
				}
			}

		case counter.NonTransReceiptCouples:
			for i := 0; i < c.Count; i++ {
				rmb := counter.MutableBuffer{Buf: &cursor}
				rc, err := counter.DeReceiptCouple(rmb, true)
				if err != nil {
					return msg, len(buf) - len(cursor), err
				}
				msg.Receipts = append(msg.Receipts, keristore.Receipt{EndorserPre: rc.Pre, Sig: rc.Sig})
			}

		case counter.TransReceiptQuadruples:
			for i := 0; i < c.Count; i++ {
				rmb := counter.MutableBuffer{Buf: &cursor}
				q, err := counter.DeTransReceiptQuadruple(rmb, true)
				if err != nil {
					return msg, len(buf) - len(cursor), err
				}
				msg.Receipts = append(msg.Receipts, keristore.Receipt{
					EndorserPre: q.Pre, Seqner: q.Seqner, Digest: q.Digest, Sig: q.Sig,
				})
			}

		case counter.TransReceiptQuintuples:
			for i := 0; i < c.Count; i++ {
				rmb := counter.MutableBuffer{Buf: &cursor}
				q, err := counter.DeTransReceiptQuintuple(rmb, true)
				if err != nil {
					return msg, len(buf) - len(cursor), err
				}
				msg.Receipts = append(msg.Receipts, keristore.Receipt{
					EndorserPre: q.Pre, Seqner: q.Seqner, Digest: q.Digest, Sig: q.Sig,
				})
			}

		case counter.SealSourceCouples:
			for i := 0; i < c.Count; i++ {
				smb := counter.MutableBuffer{Buf: &cursor}
				sc, err := counter.DeSourceCouple(smb, true)
				if err != nil {
					return msg, len(buf) - len(cursor), err
				}
				msg.Seals = append(msg.Seals, sc)
			}

		case counter.LastEstSealCouples:
			for i := 0; i < c.Count; i++ {
				if len(cursor) < preLen {
					return msg, len(buf) - len(cursor), counter.ErrShortGroup
				}
				msg.LastEstSeals = append(msg.LastEstSeals, string(cursor[:preLen]))
				cursor = cursor[preLen:]
			}

		default:
			return msg, len(buf) - len(cursor), ErrUnexpectedGroup
		}
	}

	return msg, len(buf) - len(cursor), nil
}
