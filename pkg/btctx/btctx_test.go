package btctx

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

func rawTx(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return buf.Bytes()
}

func sampleTx() *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	prevHash := chainhash.Hash{}
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(150000, []byte{0x00, 0x14}))
	tx.AddTxOut(wire.NewTxOut(50000, []byte{0x00, 0x14}))
	return tx
}

func TestParse(t *testing.T) {
	tx := sampleTx()
	raw := rawTx(t, tx)

	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, tx.TxHash(), parsed.Hash)
	require.Len(t, parsed.TxOut, 2)
	require.Equal(t, int64(150000), parsed.TxOut[0].Value)
}

func TestParse_InvalidBytes(t *testing.T) {
	_, err := Parse([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}

func TestOutputAt(t *testing.T) {
	parsed, err := Parse(rawTx(t, sampleTx()))
	require.NoError(t, err)

	out, err := parsed.OutputAt(1)
	require.NoError(t, err)
	require.Equal(t, int64(50000), out.Value)

	_, err = parsed.OutputAt(5)
	require.Error(t, err)
}

func TestAssembleRaw(t *testing.T) {
	tx := sampleTx()
	raw := rawTx(t, tx)

	version := raw[:4]
	locktime := raw[len(raw)-4:]
	middle := raw[4 : len(raw)-4]

	assembled := AssembleRaw(version, middle, nil, locktime)
	require.Equal(t, raw, assembled)

	parsed, err := Parse(assembled)
	require.NoError(t, err)
	require.Equal(t, tx.TxHash(), parsed.Hash)
}

func TestDepositID_Deterministic(t *testing.T) {
	hash := chainhash.Hash{0x01, 0x02, 0x03}

	id1 := DepositID(hash, 0)
	id2 := DepositID(hash, 0)
	require.Equal(t, id1, id2)

	idOtherIndex := DepositID(hash, 1)
	require.NotEqual(t, id1, idOtherIndex)

	var otherHash chainhash.Hash
	otherHash[0] = 0xff
	idOtherHash := DepositID(otherHash, 0)
	require.NotEqual(t, id1, idOtherHash)
}
