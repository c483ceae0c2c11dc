package keri

import (
	"crypto/ed25519"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/keri-community/keri-go/eventing"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/saider"
	"github.com/keri-community/keri-go/serder"
	"github.com/keri-community/keri-go/threshold"
)

// Kever is the per-identifier event state machine. It holds only the
// current establishment state; it never mutates on a receipt, and it never
// reaches outside itself for a prior event. The sequencing and recovery
// orchestration that need the KEL live in Kevery, which owns the store.
type Kever struct {
	Pre   string
	State State

	log      logger.Logger
	resolver func(qb64 string) (Verfer, bool)

	// trustedReplay, set only by Kevery while rebuilding a Kever from
	// already-accepted KEL bytes during recovery, skips signature
	// verification: those bytes were verified once, at first acceptance,
	// and replay only needs to re-run the structural (sn/p/commitment)
	// checks to reconstruct state.
	trustedReplay bool
}

// checkThreshold verifies sigs against keys/kt, or trivially succeeds
// during a trusted replay (see trustedReplay).
func (k *Kever) checkThreshold(keys []string, kt threshold.Threshold, raw []byte, sigs []matter.Siger) (bool, error) {
	if k.trustedReplay {
		return true, nil
	}
	return verifySigs(keys, kt, raw, sigs, k.resolver)
}

// withTrustedReplay is unexported: only Kevery's recovery path may bypass
// signature verification.
func withTrustedReplay() KeverOption {
	return func(k *Kever) { k.trustedReplay = true }
}

// NewKever validates and accepts an icp or dip event, producing a fresh
// Kever at sn=0. sigs are the controller indexed signatures over s.Raw.
func NewKever(s serder.Serder, sigs []matter.Siger, opts ...KeverOption) (*Kever, error) {
	ilk, err := s.Ilk()
	if err != nil {
		return nil, err
	}
	if ilk != string(eventing.Icp) && ilk != string(eventing.Dip) {
		return nil, wrap(KindValidation, ErrNotEstablished, "", 0, "")
	}

	pre, err := s.Pre()
	if err != nil {
		return nil, err
	}
	said, err := s.Said()
	if err != nil {
		return nil, err
	}
	sn, err := s.Sn()
	if err != nil {
		return nil, err
	}
	if sn != 0 {
		return nil, wrap(KindValidation, ErrSequenceMismatch, pre, sn, said)
	}

	dm, err := matter.NewWithQb64(said)
	if err != nil {
		return nil, wrap(KindDerivation, err, pre, 0, said)
	}
	selfAddressing := matter.IsDigestCode(dm.Code())

	keys, err := stringList(s.Ked, "k")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, wrap(KindValidation, eventing.ErrNoKeys, pre, 0, said)
	}

	if selfAddressing {
		// i and d both hold the event's SAID; reproduce it.
		if pre != said {
			return nil, wrap(KindDerivation, ErrPrefixMismatch, pre, 0, said)
		}
		if err := saider.Verify(s.Ked, s.Kind, dm.Code(), true); err != nil {
			return nil, wrap(KindDerivation, ErrSAIDMismatch, pre, 0, said)
		}
	} else {
		// Basic derivation: the prefix is the sole signing key, and d
		// repeats it; there is no digest to reproduce.
		if said != pre || len(keys) != 1 || keys[0] != pre {
			return nil, wrap(KindDerivation, ErrPrefixMismatch, pre, 0, said)
		}
	}

	nextDigests, err := stringList(s.Ked, "n")
	if err != nil {
		return nil, err
	}
	witnesses, err := stringList(s.Ked, "b")
	if err != nil {
		return nil, err
	}
	config, err := stringList(s.Ked, "c")
	if err != nil {
		return nil, err
	}
	anchors, _ := s.Ked.Get("a")
	anchorList, _ := anchors.([]any)

	transferable := true
	if len(keys) == 1 {
		km, err := matter.NewWithQb64(keys[0])
		if err != nil {
			return nil, wrap(KindDerivation, err, pre, 0, said)
		}
		if matter.IsNonTransferable(km.Code()) {
			transferable = false
			if len(nextDigests) > 0 || len(witnesses) > 0 || len(anchorList) > 0 {
				return nil, wrap(KindDerivation, ErrNonTransferableRestricted, pre, 0, said)
			}
		}
	}

	ktWire, _ := s.Ked.Get("kt")
	kt, err := threshold.ParseWire(ktWire)
	if err != nil {
		return nil, wrap(KindValidation, err, pre, 0, said)
	}
	ntWire, _ := s.Ked.Get("nt")
	nt, err := threshold.ParseWire(ntWire)
	if err != nil {
		return nil, wrap(KindValidation, err, pre, 0, said)
	}
	btWire, _ := s.Ked.Get("bt")
	bt, err := threshold.ParseWire(btWire)
	if err != nil {
		return nil, wrap(KindValidation, err, pre, 0, said)
	}
	if n, ok := bt.Num(); ok && n > uint64(len(witnesses)) {
		return nil, wrap(KindValidation, ErrWitnessThreshold, pre, 0, said)
	}

	k := &Kever{Pre: pre, log: logger.Sugar.WithServiceName("keri.kever")}
	for _, opt := range opts {
		opt(k)
	}

	ok, err := k.checkThreshold(keys, kt, s.Raw, sigs)
	if err != nil {
		return nil, wrap(KindValidation, ErrInvalidSignature, pre, 0, said)
	}
	if !ok {
		return nil, wrap(KindMissingSignatures, ErrUnderThreshold, pre, 0, said)
	}

	delegator := ""
	if ilk == string(eventing.Dip) {
		di, err := s.Ked.GetString("di")
		if err != nil {
			return nil, wrap(KindValidation, err, pre, 0, said)
		}
		delegator = di
	}

	k.State = State{
		Sn:               0,
		Fn:               0,
		Keys:             keys,
		KeyThreshold:     kt,
		NextDigests:      nextDigests,
		NextThreshold:    nt,
		Witnesses:        witnesses,
		WitnessThreshold: bt,
		Config:           config,
		Transferable:     transferable,
		Delegator:        delegator,
		LastEstSn:        0,
		LastEstSaid:      said,
		LastSaid:         said,
	}
	return k, nil
}

// Rotate applies a rot or drt event. It only handles the forward case
// (sn == State.Sn+1); sn <= State.Sn signals a
// possible recovery, which Kevery alone can validate since it requires
// historical KEL state this Kever does not retain.
func (k *Kever) Rotate(s serder.Serder, sigs []matter.Siger) error {
	if k.State.Phase() != Established {
		return wrap(KindValidation, ErrNotEstablished, k.Pre, 0, "")
	}

	ilk, err := s.Ilk()
	if err != nil {
		return err
	}
	if ilk != string(eventing.Rot) && ilk != string(eventing.Drt) {
		return wrap(KindValidation, ErrNotEstablished, k.Pre, 0, "")
	}

	sn, err := s.Sn()
	if err != nil {
		return err
	}
	said, err := s.Said()
	if err != nil {
		return err
	}
	if sn > k.State.Sn+1 {
		return wrap(KindOutOfOrder, ErrOutOfOrder, k.Pre, sn, said)
	}
	if sn <= k.State.Sn {
		return wrap(KindValidation, ErrSequenceMismatch, k.Pre, sn, said)
	}

	prior, err := s.Prior()
	if err != nil {
		return err
	}
	if prior != k.State.LastSaid {
		return wrap(KindValidation, ErrPriorMismatch, k.Pre, sn, said)
	}

	newKeys, err := stringList(s.Ked, "k")
	if err != nil {
		return err
	}
	newNextDigests, err := stringList(s.Ked, "n")
	if err != nil {
		return err
	}

	ok, err := eventing.VerifyNextCommitment(k.State.NextDigests, k.State.NextThreshold, newKeys, saider.DefaultCode)
	if err != nil {
		return wrap(KindValidation, err, k.Pre, sn, said)
	}
	if !ok {
		return wrap(KindValidation, ErrNextCommitmentMismatch, k.Pre, sn, said)
	}

	ktWire, _ := s.Ked.Get("kt")
	kt, err := threshold.ParseWire(ktWire)
	if err != nil {
		return wrap(KindValidation, err, k.Pre, sn, said)
	}
	ntWire, _ := s.Ked.Get("nt")
	nt, err := threshold.ParseWire(ntWire)
	if err != nil {
		return wrap(KindValidation, err, k.Pre, sn, said)
	}
	btWire, _ := s.Ked.Get("bt")
	bt, err := threshold.ParseWire(btWire)
	if err != nil {
		return wrap(KindValidation, err, k.Pre, sn, said)
	}

	sigsOK, err := k.checkThreshold(newKeys, kt, s.Raw, sigs)
	if err != nil {
		return wrap(KindValidation, ErrInvalidSignature, k.Pre, sn, said)
	}
	if !sigsOK {
		return wrap(KindMissingSignatures, ErrUnderThreshold, k.Pre, sn, said)
	}

	ba, err := stringList(s.Ked, "ba")
	if err != nil {
		return err
	}
	br, err := stringList(s.Ked, "br")
	if err != nil {
		return err
	}
	newWitnesses := applyWitnessDelta(k.State.Witnesses, ba, br)
	if n, ok := bt.Num(); ok && n > uint64(len(newWitnesses)) {
		return wrap(KindValidation, ErrWitnessThreshold, k.Pre, sn, said)
	}

	k.State.Sn = sn
	k.State.Fn++
	k.State.Keys = newKeys
	k.State.KeyThreshold = kt
	k.State.NextDigests = newNextDigests
	k.State.NextThreshold = nt
	k.State.Witnesses = newWitnesses
	k.State.WitnessThreshold = bt
	k.State.LastEstSn = sn
	k.State.LastEstSaid = said
	k.State.LastSaid = said
	return nil
}

// Interact applies an ixn event. It never changes the signing-key
// commitment.
func (k *Kever) Interact(s serder.Serder, sigs []matter.Siger) error {
	if k.State.Phase() != Established {
		return wrap(KindValidation, ErrNotEstablished, k.Pre, 0, "")
	}
	if eventing.HasTrait(k.State.Config, eventing.EstOnly) {
		return wrap(KindValidation, ErrEstOnly, k.Pre, 0, "")
	}

	sn, err := s.Sn()
	if err != nil {
		return err
	}
	said, err := s.Said()
	if err != nil {
		return err
	}
	if sn > k.State.Sn+1 {
		return wrap(KindOutOfOrder, ErrOutOfOrder, k.Pre, sn, said)
	}
	if sn <= k.State.Sn {
		return wrap(KindValidation, ErrSequenceMismatch, k.Pre, sn, said)
	}

	prior, err := s.Prior()
	if err != nil {
		return err
	}
	if prior != k.State.LastSaid {
		return wrap(KindValidation, ErrPriorMismatch, k.Pre, sn, said)
	}

	ok, err := k.checkThreshold(k.State.Keys, k.State.KeyThreshold, s.Raw, sigs)
	if err != nil {
		return wrap(KindValidation, ErrInvalidSignature, k.Pre, sn, said)
	}
	if !ok {
		return wrap(KindMissingSignatures, ErrUnderThreshold, k.Pre, sn, said)
	}

	k.State.Sn = sn
	k.State.Fn++
	k.State.LastSaid = said
	return nil
}

// verifySigs checks each siger against the key at its index, rejecting
// outright on any present-but-invalid signature, then reports whether the
// valid indices satisfy kt.
func verifySigs(keys []string, kt threshold.Threshold, raw []byte, sigs []matter.Siger, resolve func(string) (Verfer, bool)) (bool, error) {
	contributing := make([]int, 0, len(sigs))
	for _, sg := range sigs {
		if sg.Index < 0 || sg.Index >= len(keys) {
			return false, ErrInvalidSignature
		}
		keyQb64 := keys[sg.Index]
		km, err := matter.NewWithQb64(keyQb64)
		if err != nil {
			return false, err
		}

		var ok bool
		switch km.Code() {
		case matter.Ed25519, matter.Ed25519N:
			ok = ed25519.Verify(ed25519.PublicKey(km.Raw()), raw, sg.Raw())
		default:
			if resolve == nil {
				return false, ErrInvalidSignature
			}
			v, found := resolve(keyQb64)
			if !found {
				return false, ErrInvalidSignature
			}
			ok = v.Verify(raw, sg.Raw())
		}
		if !ok {
			return false, ErrInvalidSignature
		}
		contributing = append(contributing, sg.Index)
	}
	return kt.Satisfied(contributing)
}

func applyWitnessDelta(current, add, remove []string) []string {
	out := make([]string, 0, len(current)+len(add))
	removed := make(map[string]bool, len(remove))
	for _, r := range remove {
		removed[r] = true
	}
	for _, w := range current {
		if !removed[w] {
			out = append(out, w)
		}
	}
	out = append(out, add...)
	return out
}

func stringList(ked serder.KED, key string) ([]string, error) {
	v, ok := ked.Get(key)
	if !ok {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, serder.ErrFieldType
	}
	out := make([]string, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, serder.ErrFieldType
		}
		out[i] = s
	}
	return out, nil
}
