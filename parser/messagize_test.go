package parser

import (
	"testing"

	"github.com/keri-community/keri-go/counter"
	"github.com/keri-community/keri-go/eventing"
	"github.com/keri-community/keri-go/matter"
	"github.com/keri-community/keri-go/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagizeRoundTripsThroughParser(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig, err := matter.NewSiger(matter.Ed25519Sig, append(make([]byte, 63), 1), 1)
	require.NoError(t, err)

	msg, err := Messagize(icp, []matter.Siger{sig}, nil, nil, false)
	require.NoError(t, err)

	p := New()
	p.Feed(msg)
	out, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, out.Sigs, 1)
	assert.Equal(t, sig.Qb64(), out.Sigs[0].Qb64())
	assert.Equal(t, 1, out.Sigs[0].Index)
	assert.Equal(t, 0, p.Buffered())
}

func TestMessagizePipelinedRoundTrips(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig, err := matter.NewSiger(matter.Ed25519Sig, make([]byte, 64), 0)
	require.NoError(t, err)

	msg, err := Messagize(icp, []matter.Siger{sig}, nil, nil, true)
	require.NoError(t, err)

	p := New()
	p.Feed(msg)
	out, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, out.Sigs, 1)
	assert.Equal(t, sig.Qb64(), out.Sigs[0].Qb64())
}

func TestMessagizeWithSeal(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig, err := matter.NewSiger(matter.Ed25519Sig, make([]byte, 64), 0)
	require.NoError(t, err)

	seqner, err := matter.NewWithRaw(matter.Seqner, make([]byte, 16))
	require.NoError(t, err)
	digest, err := matter.NewWithRaw(matter.Blake3_256, append(make([]byte, 31), 1))
	require.NoError(t, err)
	seal := &counter.SourceCouple{Seqner: seqner.Qb64(), Digest: digest.Qb64()}

	msg, err := Messagize(icp, []matter.Siger{sig}, nil, seal, false)
	require.NoError(t, err)

	p := New()
	p.Feed(msg)
	out, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, out.Seals, 1)
	assert.Equal(t, *seal, out.Seals[0])
}
