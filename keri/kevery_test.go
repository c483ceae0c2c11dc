package keri

import (
	"testing"

	"github.com/keri-community/keri-go/eventing"
	"github.com/keri-community/keri-go/keristore"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sigQb64(t *testing.T, raw []byte) string {
	t.Helper()
	m, err := matter.NewWithRaw(matter.Ed25519Sig, raw)
	require.NoError(t, err)
	return m.Qb64()
}

func TestKeveryAcceptsInceptionThenInteraction(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	icpSaid, _ := icp.Said()
	pre, _ := icp.Pre()

	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	kev, ok := ky.Kever(pre)
	require.True(t, ok)
	assert.Equal(t, uint64(0), kev.State.Sn)

	ixn, err := eventing.Interaction(eventing.InteractionParams{Prefix: pre, Sn: 1, Prior: icpSaid})
	require.NoError(t, err)
	require.NoError(t, ky.Process(ixn, []matter.Siger{mustSig(t, k0, ixn.Raw, 0)}, nil))

	kev, _ = ky.Kever(pre)
	assert.Equal(t, uint64(1), kev.State.Sn)
}

// A rotation that arrives before its identifier's inception is escrowed as
// out-of-order and produces no Kever. Once the inception arrives, Kevery's
// promotion pass replays the escrowed rotation and the identifier ends up
// fully caught up from a single Process call.
func TestKeveryPromotesEscrowedRotationOnceInceptionArrives(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)

	n1, err := eventing.NextDigests([]string{k1.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)

	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		NextDigests:    n1,
		NextThreshold:  threshold.NewSimple(1, false),
		SelfAddressing: true,
		Code:           matter.Blake3_256,
	})
	require.NoError(t, err)
	icpSaid, _ := icp.Said()
	pre, _ := icp.Pre()

	rot, err := eventing.Rotation(eventing.RotationParams{
		Prefix:        pre,
		Sn:            1,
		Prior:         icpSaid,
		Keys:          []string{k1.Qb64()},
		KeyThreshold:  threshold.NewSimple(1, false),
		NextThreshold: threshold.NewSimple(1, false),
		Code:          matter.Blake3_256,
	})
	require.NoError(t, err)

	// Rotation arrives first: no Kever exists yet, so it is escrowed.
	err = ky.Process(rot, []matter.Siger{mustSig(t, k1, rot.Raw, 0)}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	_, ok := ky.Kever(pre)
	assert.False(t, ok)

	// Inception arrives: accepted, and promotion replays the escrowed rotation.
	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	kev, ok := ky.Kever(pre)
	require.True(t, ok)
	assert.Equal(t, uint64(1), kev.State.Sn)
	assert.Equal(t, []string{k1.Qb64()}, kev.State.Keys)
}

// An inception under a 2-of-3 threshold with only one signature is escrowed
// as partially-signed rather than accepted; resubmitting with enough
// signatures succeeds.
func TestKeveryEscrowsUnderThresholdInceptionThenAcceptsFullerResubmission(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)
	k2 := mustKeyPair(t, matter.Ed25519)

	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64(), k1.Qb64(), k2.Qb64()},
		KeyThreshold:   threshold.NewSimple(2, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	pre, _ := icp.Pre()

	err = ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnderThreshold)
	_, ok := ky.Kever(pre)
	assert.False(t, ok)

	require.NoError(t, ky.Process(icp, []matter.Siger{
		mustSig(t, k0, icp.Raw, 0),
		mustSig(t, k1, icp.Raw, 1),
	}, nil))

	kev, ok := ky.Kever(pre)
	require.True(t, ok)
	assert.Equal(t, uint64(0), kev.State.Sn)
}

// S6: a rotation presented at an sn already occupied by a previously
// accepted rotation, but chaining from the same prior, is treated as a
// recovery: the superseded event is marked duplicitous and the new branch
// becomes the identifier's live state.
func TestS6RecoverFromCompetingRotationAtSameSn(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)
	k2 := mustKeyPair(t, matter.Ed25519)
	k3 := mustKeyPair(t, matter.Ed25519)

	n1, err := eventing.NextDigests([]string{k1.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		NextDigests:    n1,
		NextThreshold:  threshold.NewSimple(1, false),
		SelfAddressing: true,
		Code:           matter.Blake3_256,
	})
	require.NoError(t, err)
	icpSaid, _ := icp.Said()
	pre, _ := icp.Pre()
	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	n2, err := eventing.NextDigests([]string{k2.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)
	rotA, err := eventing.Rotation(eventing.RotationParams{
		Prefix: pre, Sn: 1, Prior: icpSaid,
		Keys: []string{k1.Qb64()}, KeyThreshold: threshold.NewSimple(1, false),
		NextDigests: n2, NextThreshold: threshold.NewSimple(1, false),
		Code: matter.Blake3_256,
	})
	require.NoError(t, err)
	rotASaid, _ := rotA.Said()
	require.NoError(t, ky.Process(rotA, []matter.Siger{mustSig(t, k1, rotA.Raw, 0)}, nil))

	kev, _ := ky.Kever(pre)
	require.Equal(t, uint64(1), kev.State.Sn)

	// Competing rotation at the same sn, same prior, different next commit.
	n3, err := eventing.NextDigests([]string{k3.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)
	rotB, err := eventing.Rotation(eventing.RotationParams{
		Prefix: pre, Sn: 1, Prior: icpSaid,
		Keys: []string{k1.Qb64()}, KeyThreshold: threshold.NewSimple(1, false),
		NextDigests: n3, NextThreshold: threshold.NewSimple(1, false),
		Code: matter.Blake3_256,
	})
	require.NoError(t, err)
	rotBSaid, _ := rotB.Said()
	require.NotEqual(t, rotASaid, rotBSaid)

	require.NoError(t, ky.Process(rotB, []matter.Siger{mustSig(t, k1, rotB.Raw, 0)}, nil))

	kev, ok := ky.Kever(pre)
	require.True(t, ok)
	assert.Equal(t, rotBSaid, kev.State.LastSaid)
	assert.Equal(t, n3, kev.State.NextDigests)

	saids, ok := store.Duplicitous(pre, 1)
	require.True(t, ok)
	assert.Contains(t, saids, rotASaid)
}

// S7: a valid non-transferable receipt couple is persisted, and processing
// the identical receipt a second time does not duplicate it.
func TestS7ReceiptRoundTripIsIdempotent(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	pre, _ := icp.Pre()
	said, _ := icp.Said()
	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	endorser := mustKeyPair(t, matter.Ed25519N)
	endorserSig, err := endorser.Sign(icp.Raw)
	require.NoError(t, err)
	receipt := keristore.Receipt{EndorserPre: endorser.Qb64(), Sig: sigQb64(t, endorserSig)}

	rct, err := eventing.Receipt(eventing.ReceiptParams{Prefix: pre, Sn: 0, Said: said})
	require.NoError(t, err)

	require.NoError(t, ky.Process(rct, nil, []keristore.Receipt{receipt}))
	require.NoError(t, ky.Process(rct, nil, []keristore.Receipt{receipt}))

	assert.Equal(t, []keristore.Receipt{receipt}, store.Receipts(pre, said))
}

// A receipt whose signature does not verify against its claimed endorser is
// rejected and escrowed rather than persisted.
func TestKeveryEscrowsUnverifiedReceiptSignature(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	pre, _ := icp.Pre()
	said, _ := icp.Said()
	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	endorser := mustKeyPair(t, matter.Ed25519N)
	bogusSig := make([]byte, 64)
	receipt := keristore.Receipt{EndorserPre: endorser.Qb64(), Sig: sigQb64(t, bogusSig)}

	rct, err := eventing.Receipt(eventing.ReceiptParams{Prefix: pre, Sn: 0, Said: said})
	require.NoError(t, err)

	err = ky.Process(rct, nil, []keristore.Receipt{receipt})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnverifiedReceipt)
	assert.Empty(t, store.Receipts(pre, said))
}

func TestKeveryCuesQueryAndKeyStateNotice(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	qry, err := eventing.Query(eventing.QueryParams{Route: "ksn", Args: map[string]any{"i": "Esubject"}})
	require.NoError(t, err)
	require.NoError(t, ky.Process(qry, nil, nil))

	k0 := mustKeyPair(t, matter.Ed25519)
	ksn, err := eventing.KeyStateNotice(eventing.KeyStateParams{
		Prefix:       "Esubject",
		Sn:           0,
		Datetime:     "2026-07-30T00:00:00.000000+00:00",
		LastIlk:      eventing.Icp,
		Keys:         []string{k0.Qb64()},
		KeyThreshold: threshold.NewSimple(1, false),
	})
	require.NoError(t, err)
	require.NoError(t, ky.Process(ksn, nil, nil))

	cues := ky.Cues()
	require.Len(t, cues, 2)
	assert.Equal(t, CueQuery, cues[0].Kind)
	assert.Equal(t, CueKeyStateNotice, cues[1].Kind)
}

func TestKeveryCuesFetchReceiptsOnAcceptedInception(t *testing.T) {
	store := keristore.NewMemStore()
	ky := NewKevery(store)

	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	require.NoError(t, ky.Process(icp, []matter.Siger{mustSig(t, k0, icp.Raw, 0)}, nil))

	cues := ky.Cues()
	require.Len(t, cues, 1)
	assert.Equal(t, CueFetchReceipts, cues[0].Kind)
	assert.Empty(t, ky.Cues())
}
