package parser

import (
	"strings"
	"testing"

	"github.com/keri-community/keri-go/counter"
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

func preQb64(t *testing.T, fill byte) string {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = fill
	}
	m, err := matter.NewWithRaw(matter.Ed25519N, raw)
	require.NoError(t, err)
	return m.Qb64()
}

func TestParserYieldsEventWithControllerSigs(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig1, err := matter.NewSiger(matter.Ed25519Sig, append(make([]byte, 63), 1), 2)
	require.NoError(t, err)
	c, err := counter.New(counter.ControllerIdxSigs, 1)
	require.NoError(t, err)

	stream := append(append([]byte{}, icp.Raw...), []byte(c.String()+sig1.Qb64Indexed())...)

	p := New()
	p.Feed(stream)

	msg, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, msg.Sigs, 1)
	assert.Equal(t, 2, msg.Sigs[0].Index)
	assert.Equal(t, sig1.Qb64(), msg.Sigs[0].Qb64())
	said, _ := msg.Serder.Said()
	icpSaid, _ := icp.Said()
	assert.Equal(t, icpSaid, said)

	assert.Equal(t, 0, p.Buffered())
}

func TestParserNeedsMoreOnShortBody(t *testing.T) {
	p := New()
	p.Feed([]byte("KERI10JSON0000fd_"))
	_, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, NeedMore, res)
}

func TestParserYieldsReceiptCouple(t *testing.T) {
	rctPre := preQb64(t, 0x07)
	rct, err := eventing.Receipt(eventing.ReceiptParams{Prefix: rctPre, Sn: 0, Said: strings.Repeat("E", 44)})
	require.NoError(t, err)

	endorser := preQb64(t, 0x09)
	sig := sigQb64(t, make([]byte, 64))
	c, err := counter.New(counter.NonTransReceiptCouples, 1)
	require.NoError(t, err)

	stream := append(append([]byte{}, rct.Raw...), []byte(c.String()+endorser+sig)...)

	p := New()
	p.Feed(stream)
	msg, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, msg.Receipts, 1)
	assert.Equal(t, keristore.Receipt{EndorserPre: endorser, Sig: sig}, msg.Receipts[0])
}

func TestParserResyncsOnGarbage(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	garbage := []byte("garbage-not-a-version-string")
	stream := append(append([]byte{}, garbage...), icp.Raw...)

	p := New()
	p.Feed(stream)

	_, res, err := p.Step()
	assert.Equal(t, Resynced, res)
	assert.Error(t, err)

	msg, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	said, _ := msg.Serder.Said()
	icpSaid, _ := icp.Said()
	assert.Equal(t, icpSaid, said)
}

func TestParserPipelinedEnvelopeSkipsUnknownGroup(t *testing.T) {
	k, err := matter.NewWithRaw(matter.Ed25519, make([]byte, 32))
	require.NoError(t, err)
	icp, err := eventing.Inception(eventing.InceptionParams{
		Keys:           []string{k.Qb64()},
		KeyThreshold:   threshold.NewSimple(1, false),
		SelfAddressing: true,
	})
	require.NoError(t, err)

	sig1, err := matter.NewSiger(matter.Ed25519Sig, make([]byte, 64), 0)
	require.NoError(t, err)
	sigsGroup, err := counter.New(counter.ControllerIdxSigs, 1)
	require.NoError(t, err)
	// "-Z00" uses a group code the counter table does not know.
	inner := sigsGroup.String() + sig1.Qb64Indexed() + "-Z00"

	pipelined, err := counter.New(counter.Pipelined, len(inner))
	require.NoError(t, err)

	stream := append(append([]byte{}, icp.Raw...), []byte(pipelined.String()+inner)...)

	p := New()
	p.Feed(stream)
	msg, res, err := p.Step()
	require.NoError(t, err)
	assert.Equal(t, Yielded, res)
	require.Len(t, msg.Sigs, 1)
	assert.Equal(t, sig1.Qb64(), msg.Sigs[0].Qb64())
}
