package handler

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/apperrors"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/wormhole"
)

// processWormholeBridging is the shared WormholeBridger implementation for
// every platform whose deposits route through Wormhole (Sui, Sei): fetch and
// verify the deposit's VAA, submit it to the L1 bridge contract, and
// transition the deposit to BRIDGED. Platform adapters differ only in how
// they originally located the Wormhole message (done earlier, at Finalize
// time, and stashed on d.WormholeInfo), so this lives once in the handler
// package rather than being duplicated per adapter.
func processWormholeBridging(ctx context.Context, b *Base, svc *wormhole.Service, l1Bridge *bind.BoundContract, d *store.Deposit) error {
	if d.WormholeInfo == nil {
		return apperrors.Validation("handler.processWormholeBridging", fmt.Errorf("deposit %s has no wormhole info", d.ID))
	}

	sequence, err := strconv.ParseUint(d.WormholeInfo.Sequence, 10, 64)
	if err != nil {
		return apperrors.Validation("handler.processWormholeBridging", fmt.Errorf("parse sequence %q: %w", d.WormholeInfo.Sequence, err))
	}

	emitterBytes, err := hex.DecodeString(d.WormholeInfo.EmitterAddress)
	if err != nil || len(emitterBytes) != 32 {
		return apperrors.Validation("handler.processWormholeBridging", fmt.Errorf("invalid emitter address %q", d.WormholeInfo.EmitterAddress))
	}
	var emitter [32]byte
	copy(emitter[:], emitterBytes)

	vaa, err := svc.FetchAndVerify(ctx, d.WormholeInfo.EmitterChain, emitter, sequence)
	if err != nil {
		d.WormholeInfo.FetchAttempts++
		return err // already classified (VAANotFound / VAAInvalidEmitter / TransientRPC) by the VAA service
	}

	opts, err := b.ChainCtx.L1Nonce.NextOpts(ctx)
	if err != nil {
		return apperrors.TransientRPC("handler.processWormholeBridging", b.ChainName(), err)
	}

	tx, err := l1Bridge.Transact(opts, "completeTransferWithPayload", vaa.Bytes)
	if err != nil {
		b.ChainCtx.L1Nonce.Release(opts.Nonce.Uint64())
		return apperrors.ChainRevertPermanent("handler.processWormholeBridging", b.ChainName(), err)
	}

	d.L1TxHash = tx.Hash().Hex()
	d.WormholeInfo.VAABytes = hex.EncodeToString(vaa.Bytes)
	return b.transition(ctx, d, store.DepositBridged, "completeTransferWithPayload submitted on L1")
}
