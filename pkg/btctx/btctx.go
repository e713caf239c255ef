// Package btctx parses Bitcoin funding transactions and derives the
// canonical deposit id the rest of the relayer uses to key a Deposit
// record, using btcsuite's wire transaction codec the way every Bitcoin-
// adjacent service in this lineage's dependency set does rather than
// hand-rolling transaction parsing.
package btctx

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// FundingTx is a parsed Bitcoin funding transaction, holding only the
// fields the relayer needs to validate a reveal and derive a deposit id.
type FundingTx struct {
	Hash    chainhash.Hash
	Version int32
	TxOut   []*wire.TxOut
	LockTime uint32
}

// Parse decodes a raw Bitcoin transaction's wire bytes.
func Parse(raw []byte) (*FundingTx, error) {
	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("btctx: deserialize funding transaction: %w", err)
	}
	return &FundingTx{
		Hash:     tx.TxHash(),
		Version:  tx.Version,
		TxOut:    tx.TxOut,
		LockTime: tx.LockTime,
	}, nil
}

// OutputAt returns the funding output at index, validating it exists before
// a reveal is submitted against it.
func (f *FundingTx) OutputAt(index uint32) (*wire.TxOut, error) {
	if int(index) >= len(f.TxOut) {
		return nil, fmt.Errorf("btctx: output index %d out of range (tx has %d outputs)", index, len(f.TxOut))
	}
	return f.TxOut[index], nil
}

// AssembleRaw concatenates a reveal's four funding-transaction components
// (version, input vector, output vector, locktime) into the legacy
// non-segwit wire encoding Parse expects. The reveal endpoint receives these
// as four separate hex fields rather than one serialized transaction, so
// this reconstructs the bytes btcsuite's wire codec can deserialize.
func AssembleRaw(version, inputVector, outputVector, locktime []byte) []byte {
	raw := make([]byte, 0, len(version)+len(inputVector)+len(outputVector)+len(locktime))
	raw = append(raw, version...)
	raw = append(raw, inputVector...)
	raw = append(raw, outputVector...)
	raw = append(raw, locktime...)
	return raw
}

// DepositID derives the relayer's canonical deposit id for a given funding
// transaction hash and output index: sha256(fundingTxHash || outputIndex),
// rendered as a decimal big-integer string so it sorts and compares the
// same way across every chain adapter, which all key store.Deposit.ID as a
// decimal string.
func DepositID(fundingTxHash chainhash.Hash, outputIndex uint32) string {
	var idxBytes [4]byte
	binary.LittleEndian.PutUint32(idxBytes[:], outputIndex)

	h := sha256.New()
	h.Write(fundingTxHash[:])
	h.Write(idxBytes[:])
	sum := h.Sum(nil)

	return new(big.Int).SetBytes(sum).String()
}
