package keri

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/keri-community/keri-go/eventing"
	"github.com/keri-community/keri-go/keristore"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/serder"
)

// Kevery is the stream multiplexer and escrow manager: it owns every Kever
// for every prefix it has seen, the database, and the pending escrows and
// cues that arise from processing events out of order.
type Kevery struct {
	kevers  map[string]*Kever
	store   keristore.Store
	escrows *escrows
	cues    []Cue

	// duplicitous quarantines prefixes on which an irreconcilable fork has
	// been observed; no further events are accepted for them until an
	// operator clears the flag.
	duplicitous map[string]bool

	log       logger.Logger
	keverOpts []KeverOption
}

// NewKevery builds a Kevery backed by store.
func NewKevery(store keristore.Store, opts ...KeveryOption) *Kevery {
	k := &Kevery{
		kevers:      map[string]*Kever{},
		store:       store,
		escrows:     newEscrows(),
		duplicitous: map[string]bool{},
		log:         logger.Sugar.WithServiceName("keri.kevery"),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Kever returns the Kever for pre, if this Kevery has accepted its
// inception.
func (ky *Kevery) Kever(pre string) (*Kever, bool) {
	k, ok := ky.kevers[pre]
	return k, ok
}

// Cues drains and returns every cue queued since the last call.
func (ky *Kevery) Cues() []Cue {
	out := ky.cues
	ky.cues = nil
	return out
}

// EvictEscrows ages out every escrow entry whose TTL has passed as of now.
// Drivers call this at whatever cadence suits them; Kevery never evicts on
// its own.
func (ky *Kevery) EvictEscrows(now time.Time) {
	ky.escrows.evictExpired(now)
}

// Duplicitous reports whether pre has been quarantined by an observed
// irreconcilable fork.
func (ky *Kevery) Duplicitous(pre string) bool {
	return ky.duplicitous[pre]
}

// ClearDuplicitous lifts the quarantine on pre. This is the operator
// intervention a likely-duplicitous finding demands; it does not undo the
// duplicity records already persisted.
func (ky *Kevery) ClearDuplicitous(pre string) {
	delete(ky.duplicitous, pre)
}

// Process dispatches one parsed (serder, attachments) unit by its ilk. sigs
// carries controller indexed signatures for key events; receipts carries
// endorsement couples/quadruples/quintuples for rct events.
func (ky *Kevery) Process(s serder.Serder, sigs []matter.Siger, receipts []keristore.Receipt) error {
	ilk, err := s.Ilk()
	if err != nil {
		return wrap(KindDecoding, err, "", 0, "")
	}

	switch ilk {
	case string(eventing.Icp), string(eventing.Dip):
		return ky.processInception(s, sigs)
	case string(eventing.Rot), string(eventing.Drt):
		return ky.processRotation(s, sigs)
	case string(eventing.Ixn):
		return ky.processInteraction(s, sigs)
	case string(eventing.Rct):
		return ky.processReceipt(s, receipts)
	case string(eventing.Qry):
		pre, _ := s.Ked.GetString("r")
		ky.cues = append(ky.cues, newCue(CueQuery, pre, "", "qry received"))
		return nil
	case string(eventing.Ksn):
		pre, _ := s.Pre()
		ky.cues = append(ky.cues, newCue(CueKeyStateNotice, pre, "", "ksn received"))
		return nil
	default:
		return wrap(KindDecoding, ErrLikelyDuplicitous, "", 0, "")
	}
}

func (ky *Kevery) processInception(s serder.Serder, sigs []matter.Siger) error {
	pre, err := s.Pre()
	if err != nil {
		return wrap(KindDecoding, err, "", 0, "")
	}
	said, _ := s.Said()

	if ky.duplicitous[pre] {
		return wrap(KindLikelyDuplicitous, ErrLikelyDuplicitous, pre, 0, said)
	}
	if _, exists := ky.kevers[pre]; exists {
		// Resubmission of the already-accepted inception is a no-op.
		if accepted, _, ok := ky.store.GetKEL(pre, 0); ok && accepted == said {
			return nil
		}
		return wrap(KindValidation, ErrSequenceMismatch, pre, 0, said)
	}

	ilk, _ := s.Ilk()
	if ilk == string(eventing.Dip) {
		di, err := s.Ked.GetString("di")
		if err != nil {
			return wrap(KindValidation, err, pre, 0, said)
		}
		if !ky.delegationAnchored(di, pre, 0, said) {
			ky.escrows.add(EscrowMissingDelegation, &escrowEntry{Kind: EscrowMissingDelegation, Pre: pre, Sn: 0, Serder: s, Sigs: sigs})
			return wrap(KindMissingDelegation, ErrMissingDelegation, pre, 0, said)
		}
	}

	merged := ky.withEscrowedSigs(pre, 0, said, sigs)
	kever, err := NewKever(s, merged, ky.keverOpts...)
	if err != nil {
		var kerr *KeriError
		if errors.As(err, &kerr) && kerr.Kind == KindMissingSignatures {
			ky.escrows.add(EscrowPartiallySigned, &escrowEntry{Kind: EscrowPartiallySigned, Pre: pre, Sn: 0, Serder: s, Sigs: merged})
		}
		return err
	}

	kever.State.Fn = ky.store.NextFN(pre)
	if err := ky.store.AppendKEL(pre, 0, said, s.Raw); err != nil {
		return err
	}
	ky.kevers[pre] = kever
	ky.snapshotKeyState(kever, s)

	ky.cues = append(ky.cues, newCue(CueFetchReceipts, pre, said, ""))
	ky.promote(pre)
	return nil
}

func (ky *Kevery) processRotation(s serder.Serder, sigs []matter.Siger) error {
	pre, err := s.Pre()
	if err != nil {
		return wrap(KindDecoding, err, "", 0, "")
	}
	sn, _ := s.Sn()
	said, _ := s.Said()

	if ky.duplicitous[pre] {
		return wrap(KindLikelyDuplicitous, ErrLikelyDuplicitous, pre, sn, said)
	}

	kever, ok := ky.kevers[pre]
	if !ok {
		ky.escrows.add(EscrowOutOfOrder, &escrowEntry{Kind: EscrowOutOfOrder, Pre: pre, Sn: sn, Serder: s, Sigs: sigs})
		return wrap(KindOutOfOrder, ErrOutOfOrder, pre, sn, said)
	}

	// Resubmission of the already-accepted event at this sn is a no-op.
	if accepted, _, ok := ky.store.GetKEL(pre, sn); ok && accepted == said {
		return nil
	}

	ilk, _ := s.Ilk()
	if ilk == string(eventing.Drt) && kever.State.Delegator != "" {
		if !ky.delegationAnchored(kever.State.Delegator, pre, sn, said) {
			ky.escrows.add(EscrowMissingDelegation, &escrowEntry{Kind: EscrowMissingDelegation, Pre: pre, Sn: sn, Serder: s, Sigs: sigs})
			return wrap(KindMissingDelegation, ErrMissingDelegation, pre, sn, said)
		}
	}

	merged := ky.withEscrowedSigs(pre, sn, said, sigs)
	err = kever.Rotate(s, merged)
	if err == nil {
		kever.State.Fn = ky.store.NextFN(pre)
		if err := ky.store.AppendKEL(pre, sn, said, s.Raw); err != nil {
			return err
		}
		ky.snapshotKeyState(kever, s)
		ky.cues = append(ky.cues, newCue(CueFetchReceipts, pre, said, ""))
		ky.promote(pre)
		return nil
	}

	var kerr *KeriError
	if errors.As(err, &kerr) {
		switch kerr.Kind {
		case KindOutOfOrder:
			ky.escrows.add(EscrowOutOfOrder, &escrowEntry{Kind: EscrowOutOfOrder, Pre: pre, Sn: sn, Serder: s, Sigs: merged})
			return err
		case KindMissingSignatures:
			ky.escrows.add(EscrowPartiallySigned, &escrowEntry{Kind: EscrowPartiallySigned, Pre: pre, Sn: sn, Serder: s, Sigs: merged})
			return err
		case KindValidation:
			if errors.Is(kerr.Err, ErrSequenceMismatch) && sn <= kever.State.Sn {
				return ky.recover(kever, s, merged)
			}
			return err
		}
	}
	return err
}

func (ky *Kevery) processInteraction(s serder.Serder, sigs []matter.Siger) error {
	pre, err := s.Pre()
	if err != nil {
		return wrap(KindDecoding, err, "", 0, "")
	}
	sn, _ := s.Sn()
	said, _ := s.Said()

	if ky.duplicitous[pre] {
		return wrap(KindLikelyDuplicitous, ErrLikelyDuplicitous, pre, sn, said)
	}

	kever, ok := ky.kevers[pre]
	if !ok {
		ky.escrows.add(EscrowOutOfOrder, &escrowEntry{Kind: EscrowOutOfOrder, Pre: pre, Sn: sn, Serder: s, Sigs: sigs})
		return wrap(KindOutOfOrder, ErrOutOfOrder, pre, sn, said)
	}

	// A competing interaction at an already-occupied sn can never recover
	// the log (only a rotation may supersede); an identical resubmission is
	// a no-op, anything else is an irreconcilable fork.
	if sn <= kever.State.Sn {
		if accepted, _, ok := ky.store.GetKEL(pre, sn); ok {
			if accepted == said {
				return nil
			}
			return ky.markDuplicitous(pre, sn, accepted, said)
		}
		return wrap(KindValidation, ErrSequenceMismatch, pre, sn, said)
	}

	merged := ky.withEscrowedSigs(pre, sn, said, sigs)
	err = kever.Interact(s, merged)
	if err == nil {
		kever.State.Fn = ky.store.NextFN(pre)
		if err := ky.store.AppendKEL(pre, sn, said, s.Raw); err != nil {
			return err
		}
		ky.snapshotKeyState(kever, s)
		ky.promote(pre)
		return nil
	}

	var kerr *KeriError
	if errors.As(err, &kerr) {
		switch kerr.Kind {
		case KindOutOfOrder:
			ky.escrows.add(EscrowOutOfOrder, &escrowEntry{Kind: EscrowOutOfOrder, Pre: pre, Sn: sn, Serder: s, Sigs: merged})
		case KindMissingSignatures:
			ky.escrows.add(EscrowPartiallySigned, &escrowEntry{Kind: EscrowPartiallySigned, Pre: pre, Sn: sn, Serder: s, Sigs: merged})
		}
	}
	return err
}

// processReceipt never mutates a Kever. Each
// couple/quadruple/quintuple is verified against the receipted event's own
// raw bytes before being persisted; one that doesn't verify, or names an
// endorser this Kevery has no state for yet, is dropped into
// EscrowUnverifiedReceipts rather than silently trusted.
func (ky *Kevery) processReceipt(s serder.Serder, receipts []keristore.Receipt) error {
	pre, err := s.Pre()
	if err != nil {
		return wrap(KindDecoding, err, "", 0, "")
	}
	said, err := s.Said()
	if err != nil {
		return wrap(KindDecoding, err, pre, 0, "")
	}
	sn, _ := s.Sn()

	raw, ok := ky.store.GetEvent(pre, said)
	if !ok {
		ky.escrows.add(EscrowUnverifiedReceipts, &escrowEntry{Kind: EscrowUnverifiedReceipts, Pre: pre, Sn: sn, Serder: s, Receipts: receipts})
		return wrap(KindMissingSignatures, ErrUnverifiedReceipt, pre, sn, said)
	}

	var verified, pending []keristore.Receipt
	for _, r := range receipts {
		ok, err := ky.verifyReceipt(raw, r)
		if err != nil || !ok {
			pending = append(pending, r)
			continue
		}
		verified = append(verified, r)
	}
	if len(pending) > 0 {
		ky.escrows.add(EscrowUnverifiedReceipts, &escrowEntry{Kind: EscrowUnverifiedReceipts, Pre: pre, Sn: sn, Serder: s, Receipts: pending})
	}

	for _, r := range verified {
		if err := ky.store.AppendReceipt(pre, said, r); err != nil {
			return err
		}
	}
	if len(pending) > 0 && len(verified) == 0 {
		return wrap(KindMissingSignatures, ErrUnverifiedReceipt, pre, sn, said)
	}
	return nil
}

// verifyReceipt checks one endorsement's signature against raw, the
// receipted event's own bytes. A non-transferable couple (no Seqner)
// verifies directly against the key named by EndorserPre; a transferable
// quadruple/quintuple verifies against whichever of the endorser's
// currently established keys produced it, which requires that endorser's
// Kever already be known to this Kevery.
func (ky *Kevery) verifyReceipt(raw []byte, r keristore.Receipt) (bool, error) {
	sigM, err := matter.NewWithQb64(r.Sig)
	if err != nil {
		return false, err
	}
	if sigM.Code() != matter.Ed25519Sig {
		return false, nil
	}

	if r.Seqner == "" {
		endorserM, err := matter.NewWithQb64(r.EndorserPre)
		if err != nil {
			return false, err
		}
		if !matter.IsNonTransferable(endorserM.Code()) {
			return false, nil
		}
		return ed25519.Verify(ed25519.PublicKey(endorserM.Raw()), raw, sigM.Raw()), nil
	}

	endorser, ok := ky.kevers[r.EndorserPre]
	if !ok {
		return false, nil
	}
	for _, keyQb64 := range endorser.State.Keys {
		km, err := matter.NewWithQb64(keyQb64)
		if err != nil {
			continue
		}
		if km.Code() != matter.Ed25519 && km.Code() != matter.Ed25519N {
			continue
		}
		if ed25519.Verify(ed25519.PublicKey(km.Raw()), raw, sigM.Raw()) {
			return true, nil
		}
	}
	return false, nil
}

// delegationAnchored reports whether delegator's KEL, as accepted so far,
// contains a seal (i, s, d) matching the delegate event identified by pre,
// sn, said.
func (ky *Kevery) delegationAnchored(delegator, pre string, sn uint64, said string) bool {
	delKever, ok := ky.kevers[delegator]
	if !ok {
		return false
	}
	for dsn := uint64(0); dsn <= delKever.State.Sn; dsn++ {
		_, raw, ok := ky.store.GetKEL(delegator, dsn)
		if !ok {
			continue
		}
		ds, err := serder.FromRaw(raw)
		if err != nil {
			continue
		}
		anchorsVal, _ := ds.Ked.Get("a")
		anchors, _ := anchorsVal.([]any)
		for _, a := range anchors {
			seal, ok := a.(map[string]any)
			if !ok {
				continue
			}
			if seal["i"] == pre && seal["d"] == said {
				if sstr, ok := seal["s"].(string); ok && sstr == serder.SnToHex(sn) {
					return true
				}
			}
		}
	}
	return false
}

// recover handles a rotation whose p refers to an earlier accepted event
// than the current head: it rebuilds the identifier's state as of that
// earlier event from the trusted KEL, applies the new rotation atop it,
// and, only on success, marks the superseded suffix duplicitous and
// installs the new branch. A rotation that claims an occupied sn but fails
// validation against the replayed state is an irreconcilable fork: both
// branches go into the duplicity index and the prefix is quarantined.
func (ky *Kevery) recover(kever *Kever, s serder.Serder, sigs []matter.Siger) error {
	pre := kever.Pre
	sn, _ := s.Sn()
	said, _ := s.Said()
	prior, _ := s.Prior()

	if sn == 0 {
		return wrap(KindValidation, ErrSequenceMismatch, pre, sn, said)
	}
	accepted, _, _ := ky.store.GetKEL(pre, sn)
	priorSaid, _, ok := ky.store.GetKEL(pre, sn-1)
	if !ok || priorSaid != prior {
		return ky.markDuplicitous(pre, sn, accepted, said)
	}

	replayed, err := ky.replayUpTo(pre, sn-1)
	if err != nil {
		return wrap(KindValidation, err, pre, sn, said)
	}

	if err := replayed.Rotate(s, sigs); err != nil {
		var kerr *KeriError
		if errors.As(err, &kerr) {
			switch kerr.Kind {
			case KindMissingSignatures:
				ky.escrows.add(EscrowPartiallySigned, &escrowEntry{Kind: EscrowPartiallySigned, Pre: pre, Sn: sn, Serder: s, Sigs: sigs})
				return err
			case KindValidation:
				return ky.markDuplicitous(pre, sn, accepted, said)
			}
		}
		return err
	}

	oldHead := kever.State.Sn
	for superseded := sn; superseded <= oldHead; superseded++ {
		if oldSaid, _, ok := ky.store.GetKEL(pre, superseded); ok {
			if err := ky.store.MarkDuplicitous(pre, superseded, oldSaid); err != nil {
				return err
			}
		}
	}

	replayed.State.Fn = ky.store.NextFN(pre)
	if err := ky.store.AppendKEL(pre, sn, said, s.Raw); err != nil {
		return err
	}
	ky.kevers[pre] = replayed
	ky.snapshotKeyState(replayed, s)
	ky.cues = append(ky.cues, newCue(CueFetchReceipts, pre, said, "recovered"))
	ky.promote(pre)
	return nil
}

// markDuplicitous records both branches of an irreconcilable fork at (pre,
// sn), the accepted SAID (when one exists) and the competing one, then
// quarantines the prefix and surfaces the failure.
func (ky *Kevery) markDuplicitous(pre string, sn uint64, accepted, competing string) error {
	if accepted != "" {
		if err := ky.store.MarkDuplicitous(pre, sn, accepted); err != nil {
			return err
		}
	}
	if err := ky.store.MarkDuplicitous(pre, sn, competing); err != nil {
		return err
	}
	ky.duplicitous[pre] = true
	ky.log.Infof("kevery: likely duplicitous fork at pre=%s sn=%d: accepted=%s competing=%s", pre, sn, accepted, competing)
	return wrap(KindLikelyDuplicitous, ErrLikelyDuplicitous, pre, sn, competing)
}

// replayUpTo rebuilds a trusted Kever for pre from already-accepted KEL
// bytes, sn 0..uptoSn inclusive, without re-verifying signatures (see
// Kever.trustedReplay). The returned Kever verifies normally again: replay
// trust covers only the bytes this Kevery itself accepted, never the next
// incoming event.
func (ky *Kevery) replayUpTo(pre string, uptoSn uint64) (*Kever, error) {
	_, raw0, ok := ky.store.GetKEL(pre, 0)
	if !ok {
		return nil, ErrUnknownPrefix
	}
	s0, err := serder.FromRaw(raw0)
	if err != nil {
		return nil, err
	}
	kv, err := NewKever(s0, nil, append(append([]KeverOption{}, ky.keverOpts...), withTrustedReplay())...)
	if err != nil {
		return nil, err
	}

	for sn := uint64(1); sn <= uptoSn; sn++ {
		_, raw, ok := ky.store.GetKEL(pre, sn)
		if !ok {
			break
		}
		s, err := serder.FromRaw(raw)
		if err != nil {
			return nil, err
		}
		ilk, _ := s.Ilk()
		switch ilk {
		case string(eventing.Rot), string(eventing.Drt):
			if err := kv.Rotate(s, nil); err != nil {
				return nil, err
			}
		case string(eventing.Ixn):
			if err := kv.Interact(s, nil); err != nil {
				return nil, err
			}
		}
	}
	kv.trustedReplay = false
	return kv, nil
}

// withEscrowedSigs unions sigs with any signatures already escrowed as
// partially-signed for the same event, so a controller can drip indexed
// signatures across submissions until the threshold is met.
func (ky *Kevery) withEscrowedSigs(pre string, sn uint64, said string, sigs []matter.Siger) []matter.Siger {
	merged := append([]matter.Siger(nil), sigs...)
	for _, entry := range ky.escrows.forPrefix(EscrowPartiallySigned, pre) {
		if entry.Sn != sn {
			continue
		}
		esaid, _ := entry.Serder.Said()
		if esaid != said {
			continue
		}
		merged = mergeSigers(merged, entry.Sigs)
	}
	return merged
}

// snapshotKeyState writes the latest key-state snapshot for kever's prefix,
// serialized as a ksn notice. Snapshot failure never blocks acceptance: the
// KEL itself is the source of truth, the snapshot only a cached projection.
func (ky *Kevery) snapshotKeyState(kever *Kever, s serder.Serder) {
	ilk, _ := s.Ilk()
	prior, _ := s.Prior()
	ksn, err := eventing.KeyStateNotice(eventing.KeyStateParams{
		Prefix:           kever.Pre,
		Sn:               kever.State.Sn,
		Prior:            prior,
		FirstSeen:        kever.State.Fn,
		Datetime:         time.Now().UTC().Format(time.RFC3339Nano),
		LastIlk:          eventing.Ilk(ilk),
		Keys:             kever.State.Keys,
		KeyThreshold:     kever.State.KeyThreshold,
		NextDigests:      kever.State.NextDigests,
		NextThreshold:    kever.State.NextThreshold,
		Witnesses:        kever.State.Witnesses,
		WitnessThreshold: kever.State.WitnessThreshold,
		Config:           kever.State.Config,
		LastEstSn:        kever.State.LastEstSn,
		LastEstSaid:      kever.State.LastEstSaid,
		Delegator:        kever.State.Delegator,
		Kind:             serder.CBOR,
	})
	if err != nil {
		ky.log.Infof("kevery: key-state snapshot failed for %s: %v", kever.Pre, err)
		return
	}
	if err := ky.store.PutKeyState(kever.Pre, ksn.Raw); err != nil {
		ky.log.Infof("kevery: key-state persist failed for %s: %v", kever.Pre, err)
	}
}

// promote re-attempts pending escrows after a state change for pre:
// out-of-order and partially-signed entries for pre itself, every
// missing-delegation entry (a delegator's progress unblocks delegates
// escrowed under their own prefixes), and unverified receipts for pre.
// A successful promotion recurses through the accept path, since applying
// one entry may unblock the next sn.
func (ky *Kevery) promote(pre string) {
	for _, kind := range []EscrowKind{EscrowOutOfOrder, EscrowPartiallySigned} {
		for _, entry := range ky.escrows.forPrefix(kind, pre) {
			ky.retryEntry(kind, entry)
		}
	}
	for _, entry := range ky.escrows.all(EscrowMissingDelegation) {
		ky.retryEntry(EscrowMissingDelegation, entry)
	}
	for _, entry := range ky.escrows.forPrefix(EscrowUnverifiedReceipts, pre) {
		if err := ky.processReceipt(entry.Serder, entry.Receipts); err == nil {
			ky.escrows.remove(EscrowUnverifiedReceipts, entry)
		}
	}
}

// retryEntry reprocesses one escrowed key event, dropping the entry once
// its event is accepted (whether by this retry or a prior one).
func (ky *Kevery) retryEntry(kind EscrowKind, entry *escrowEntry) {
	said, _ := entry.Serder.Said()
	if accepted, _, ok := ky.store.GetKEL(entry.Pre, entry.Sn); ok && accepted == said {
		ky.escrows.remove(kind, entry)
		return
	}

	ilk, _ := entry.Serder.Ilk()
	var err error
	switch ilk {
	case string(eventing.Icp), string(eventing.Dip):
		err = ky.processInception(entry.Serder, entry.Sigs)
	case string(eventing.Ixn):
		err = ky.processInteraction(entry.Serder, entry.Sigs)
	default:
		err = ky.processRotation(entry.Serder, entry.Sigs)
	}
	if err == nil {
		ky.escrows.remove(kind, entry)
	}
}
