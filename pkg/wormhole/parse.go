package wormhole

import (
	"encoding/binary"
	"fmt"
)

// parseVAA decodes the wire format shared by every guardian-signed VAA:
//
//	version          uint8
//	guardianSetIndex uint32
//	lenSignatures    uint8
//	signatures       [lenSignatures](index uint8, r,s [32]byte, v uint8)
//	timestamp        uint32
//	nonce            uint32
//	emitterChain     uint16
//	emitterAddress   [32]byte
//	sequence         uint64
//	consistencyLevel uint8
//	payload          []byte (remainder)
//
// Only the header fields the relayer needs to verify are extracted;
// signature verification against the guardian set is intentionally out of
// scope (the relayer trusts the guardian network's REST response, the same
// trust boundary the guardian REST API itself is built for).
func parseVAA(raw []byte) (*VAA, error) {
	if len(raw) < 6 {
		return nil, fmt.Errorf("wormhole: VAA too short")
	}

	v := &VAA{Bytes: raw}
	v.Version = raw[0]
	v.GuardianSetIndex = binary.BigEndian.Uint32(raw[1:5])

	numSigs := int(raw[5])
	offset := 6 + numSigs*66 // index(1) + r(32) + s(32) + v(1)
	if len(raw) < offset+6+32+8+1 {
		return nil, fmt.Errorf("wormhole: VAA truncated after signatures")
	}

	// skip timestamp(4) + nonce(4)
	offset += 8

	v.EmitterChain = binary.BigEndian.Uint16(raw[offset : offset+2])
	offset += 2

	copy(v.EmitterAddress[:], raw[offset:offset+32])
	offset += 32

	v.Sequence = binary.BigEndian.Uint64(raw[offset : offset+8])
	offset += 8

	offset += 1 // consistencyLevel

	if offset > len(raw) {
		return nil, fmt.Errorf("wormhole: VAA truncated before payload")
	}
	v.Payload = raw[offset:]

	return v, nil
}
