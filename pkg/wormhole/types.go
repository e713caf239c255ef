package wormhole

// VAA is a parsed, signed Verifiable Action Approval as returned by the
// guardian network's REST API.
type VAA struct {
	Version          uint8
	GuardianSetIndex uint32
	Sequence         uint64
	EmitterChain     uint16
	EmitterAddress   [32]byte // universal address form
	Payload          []byte
	Bytes            []byte // raw VAA bytes, base64-decoded
}

// guardianVAAResponse mirrors the guardian network's
// /v1/signed_vaa/{chain}/{emitter}/{sequence} JSON response.
type guardianVAAResponse struct {
	VaaBytes string `json:"vaaBytes"`
}
