package keri

import (
	"errors"
	"testing"

	"github.com/keri-community/keri-go/eventing"
	"github.com/keri-community/keri-go/kerikeys"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKeyPair(t *testing.T, code matter.Code) kerikeys.KeyPair {
	t.Helper()
	kp, err := kerikeys.New(code)
	require.NoError(t, err)
	return kp
}

func mustSig(t *testing.T, kp kerikeys.KeyPair, raw []byte, index int) matter.Siger {
	t.Helper()
	sig, err := kp.Sign(raw)
	require.NoError(t, err)
	sg, err := matter.NewSiger(matter.Ed25519Sig, sig, index)
	require.NoError(t, err)
	return sg
}

// S1: a minimal non-transferable identifier is accepted at sn=0 with i==d.
func TestS1MinimalNonTransferableInception(t *testing.T) {
	kp := mustKeyPair(t, matter.Ed25519N)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:         []string{kp.Qb64()},
		KeyThreshold: threshold.NewSimple(1, false),
	})
	require.NoError(t, err)

	d, _ := icp.Said()
	i, _ := icp.Pre()
	assert.Equal(t, kp.Qb64(), d)
	assert.Equal(t, kp.Qb64(), i)

	sig := mustSig(t, kp, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), kev.State.Sn)
	assert.False(t, kev.State.Transferable)
	assert.Equal(t, Abandoned, kev.State.Phase())
}

// S2: a self-addressing transferable inception carrying a next-key
// commitment is accepted, with i==d both equal to the event's own SAID.
func TestS2TransferableInceptionWithNextCommit(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)

	nextDigests, err := eventing.NextDigests([]string{k1.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)

	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		NextDigests:    nextDigests,
		NextThreshold:  threshold.NewSimple(1, false),
		SelfAddressing: true,
		Code:           matter.Blake3_256,
	})
	require.NoError(t, err)

	d, _ := icp.Said()
	i, _ := icp.Pre()
	assert.Equal(t, d, i)
	assert.NotEmpty(t, d)

	sig := mustSig(t, k0, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), kev.State.Sn)
	assert.True(t, kev.State.Transferable)
	assert.Equal(t, nextDigests, kev.State.NextDigests)
}

// S3: a rotation whose new keys satisfy the prior next-key commitment is
// accepted and advances Sn and the live key set.
func TestS3RotationCommitmentMatch(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)
	k2 := mustKeyPair(t, matter.Ed25519)

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

	sig0 := mustSig(t, k0, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig0})
	require.NoError(t, err)
	pre := kev.Pre

	n2, err := eventing.NextDigests([]string{k2.Qb64()}, matter.Blake3_256)
	require.NoError(t, err)

	rot, err := eventing.Rotation(eventing.RotationParams{
		Prefix:        pre,
		Sn:            1,
		Prior:         icpSaid,
		Keys:          []string{k1.Qb64()},
		KeyThreshold:  threshold.NewSimple(1, false),
		NextDigests:   n2,
		NextThreshold: threshold.NewSimple(1, false),
		Code:          matter.Blake3_256,
	})
	require.NoError(t, err)

	sig1 := mustSig(t, k1, rot.Raw, 0)
	require.NoError(t, kev.Rotate(rot, []matter.Siger{sig1}))

	assert.Equal(t, uint64(1), kev.State.Sn)
	assert.Equal(t, pre, kev.Pre)
	assert.Equal(t, []string{k1.Qb64()}, kev.State.Keys)
	assert.Equal(t, n2, kev.State.NextDigests)
}

// S4: a rotation to keys that do not satisfy the prior next-key commitment
// is rejected and leaves state untouched.
func TestS4RotationCommitmentMismatch(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)
	k2 := mustKeyPair(t, matter.Ed25519)

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

	sig0 := mustSig(t, k0, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig0})
	require.NoError(t, err)
	pre := kev.Pre

	// rotate directly to k2, which was never committed to by icp's n.
	rot, err := eventing.Rotation(eventing.RotationParams{
		Prefix:        pre,
		Sn:            1,
		Prior:         icpSaid,
		Keys:          []string{k2.Qb64()},
		KeyThreshold:  threshold.NewSimple(1, false),
		NextThreshold: threshold.NewSimple(1, false),
		Code:          matter.Blake3_256,
	})
	require.NoError(t, err)

	sig2 := mustSig(t, k2, rot.Raw, 0)
	err = kev.Rotate(rot, []matter.Siger{sig2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNextCommitmentMismatch)

	var kerr *KeriError
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, KindValidation, kerr.Kind)

	assert.Equal(t, uint64(0), kev.State.Sn)
	assert.Equal(t, []string{k0.Qb64()}, kev.State.Keys)
}

// S5: an interaction against an EstOnly identifier is rejected without
// advancing Sn.
func TestS5InteractionBlockedByEstOnly(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
		Config:         []string{string(eventing.EstOnly)},
	})
	require.NoError(t, err)
	icpSaid, _ := icp.Said()

	sig0 := mustSig(t, k0, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig0})
	require.NoError(t, err)
	pre := kev.Pre

	ixn, err := eventing.Interaction(eventing.InteractionParams{Prefix: pre, Sn: 1, Prior: icpSaid})
	require.NoError(t, err)

	sig1 := mustSig(t, k0, ixn.Raw, 0)
	err = kev.Interact(ixn, []matter.Siger{sig1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEstOnly)
	assert.Equal(t, uint64(0), kev.State.Sn)
}

// An ixn signed and submitted against a plain (non-EstOnly) identifier
// advances Sn but never touches the signing-key commitment.
func TestInteractionAdvancesSnWithoutChangingKeys(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)
	icpSaid, _ := icp.Said()

	sig0 := mustSig(t, k0, icp.Raw, 0)
	kev, err := NewKever(icp, []matter.Siger{sig0})
	require.NoError(t, err)
	pre := kev.Pre

	ixn, err := eventing.Interaction(eventing.InteractionParams{Prefix: pre, Sn: 1, Prior: icpSaid})
	require.NoError(t, err)
	sig1 := mustSig(t, k0, ixn.Raw, 0)
	require.NoError(t, kev.Interact(ixn, []matter.Siger{sig1}))

	assert.Equal(t, uint64(1), kev.State.Sn)
	assert.Equal(t, []string{k0.Qb64()}, kev.State.Keys)
}

// S8 (threshold): an inception with a 2-of-3 key threshold rejects a single
// signature as under-threshold but accepts two.
func TestS8MultiSigThresholdRequiresEnoughSigs(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	k1 := mustKeyPair(t, matter.Ed25519)
	k2 := mustKeyPair(t, matter.Ed25519)

	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64(), k1.Qb64(), k2.Qb64()},
		KeyThreshold:   threshold.NewSimple(2, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig0 := mustSig(t, k0, icp.Raw, 0)
	_, err = NewKever(icp, []matter.Siger{sig0})
	require.Error(t, err)
	var kerr *KeriError
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, KindMissingSignatures, kerr.Kind)
	assert.ErrorIs(t, err, ErrUnderThreshold)

	sig1 := mustSig(t, k1, icp.Raw, 1)
	kev, err := NewKever(icp, []matter.Siger{sig0, sig1})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), kev.State.Sn)
}

// A present signature that does not verify against its claimed key index is
// rejected outright, never treated as merely under threshold.
func TestInvalidSignatureIsRejectedOutright(t *testing.T) {
	k0 := mustKeyPair(t, matter.Ed25519)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k0.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	garbage := make([]byte, 64)
	sig, err := matter.NewSiger(matter.Ed25519Sig, garbage, 0)
	require.NoError(t, err)

	_, err = NewKever(icp, []matter.Siger{sig})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
