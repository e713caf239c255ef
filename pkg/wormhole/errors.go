package wormhole

import "errors"

var (
	// ErrMessageNotLocated means the L2 transaction receipt did not carry
	// a decodable Wormhole LogMessagePublished event.
	ErrMessageNotLocated = errors.New("wormhole: could not locate message in transaction")
	// ErrVAANotYetAvailable means the guardian network has not produced a
	// signed VAA for this emitter/sequence yet; callers should retry.
	ErrVAANotYetAvailable = errors.New("wormhole: VAA not yet available")
	// ErrInvalidEmitter means a fetched VAA's emitter address does not
	// match the expected Wormhole core contract for its chain.
	ErrInvalidEmitter = errors.New("wormhole: VAA emitter address mismatch")
	// ErrL1NotCompleted means the L1 token bridge has not yet recorded
	// redemption of this VAA.
	ErrL1NotCompleted = errors.New("wormhole: L1 completion not observed")
)
