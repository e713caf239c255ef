package handler

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

// Sei drives the deposit lifecycle for Sei, which exposes an EVM-compatible
// execution layer for the reveal/finalize calls but, unlike the platform:
// evm adapter, routes finalized deposits through Wormhole before they reach
// L1. It reuses EVM for the on-chain plumbing and adds the WormholeBridger
// capability EVM chains don't need.
type Sei struct {
	*EVM
	l1Bridge *bind.BoundContract
}

// NewSei constructs a Sei adapter: an EVM adapter for the reveal/finalize
// calls plus a bound L1 bridge contract for completing the Wormhole leg.
func NewSei(b Base, l1BridgeAddress string) (*Sei, error) {
	evm, err := NewEVM(b)
	if err != nil {
		return nil, err
	}
	bridge := bind.NewBoundContract(common.HexToAddress(l1BridgeAddress), l1BridgeABI, b.ChainCtx.L1Client, b.ChainCtx.L1Client, b.ChainCtx.L1Client)
	return &Sei{EVM: evm, l1Bridge: bridge}, nil
}

// ProcessWormholeBridging implements handler.WormholeBridger.
func (h *Sei) ProcessWormholeBridging(ctx context.Context, d *store.Deposit) error {
	return processWormholeBridging(ctx, &h.Base, h.ChainCtx.Wormhole, h.l1Bridge, d)
}
