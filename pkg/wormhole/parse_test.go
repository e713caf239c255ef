package wormhole

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildRawVAA(t *testing.T, emitterChain uint16, emitterAddr [32]byte, sequence uint64, payload []byte) []byte {
	t.Helper()

	buf := []byte{1} // version
	gsi := make([]byte, 4)
	binary.BigEndian.PutUint32(gsi, 3)
	buf = append(buf, gsi...)
	buf = append(buf, 0) // zero signatures

	ts := make([]byte, 4)
	nonce := make([]byte, 4)
	buf = append(buf, ts...)
	buf = append(buf, nonce...)

	chain := make([]byte, 2)
	binary.BigEndian.PutUint16(chain, emitterChain)
	buf = append(buf, chain...)

	buf = append(buf, emitterAddr[:]...)

	seq := make([]byte, 8)
	binary.BigEndian.PutUint64(seq, sequence)
	buf = append(buf, seq...)

	buf = append(buf, 0) // consistency level
	buf = append(buf, payload...)
	return buf
}

func TestParseVAA(t *testing.T) {
	var emitter [32]byte
	emitter[31] = 0x42

	raw := buildRawVAA(t, 21, emitter, 12345, []byte("payload-bytes"))

	vaa, err := parseVAA(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(1), vaa.Version)
	require.Equal(t, uint32(3), vaa.GuardianSetIndex)
	require.Equal(t, uint16(21), vaa.EmitterChain)
	require.Equal(t, emitter, vaa.EmitterAddress)
	require.Equal(t, uint64(12345), vaa.Sequence)
	require.Equal(t, []byte("payload-bytes"), vaa.Payload)
}

func TestParseVAA_TooShort(t *testing.T) {
	_, err := parseVAA([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestParseVAA_TruncatedAfterSignatures(t *testing.T) {
	raw := []byte{1, 0, 0, 0, 3, 0} // version, gsi(4), numSigs=0, nothing more
	_, err := parseVAA(raw)
	require.Error(t, err)
}
