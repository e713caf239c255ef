package handler

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/store"
)

func TestEVMAddressToUniversal(t *testing.T) {
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	universal := evmAddressToUniversal(addr)

	require.Len(t, universal, 64) // 32 bytes, hex-encoded
	require.Equal(t, "0000000000000000000000001111111111111111111111111111111111111111", universal)
}

func TestIsBridgeWaitingRevert(t *testing.T) {
	require.True(t, isBridgeWaitingRevert(errors.New("execution reverted: Deposit not finalized by the bridge")))
	require.True(t, isBridgeWaitingRevert(errors.New("execution reverted: deposit not finalized by the bridge")))
	require.False(t, isBridgeWaitingRevert(errors.New("execution reverted: already revealed")))
	require.False(t, isBridgeWaitingRevert(errors.New("execution reverted: invalid signature")))
}

func TestMapL1DepositStatus(t *testing.T) {
	require.Nil(t, mapL1DepositStatus(0))
	require.Equal(t, store.DepositInitialized, *mapL1DepositStatus(1))
	require.Equal(t, store.DepositFinalized, *mapL1DepositStatus(2))
	require.Equal(t, store.DepositAwaitingWormholeVAA, *mapL1DepositStatus(3))
	require.Equal(t, store.DepositBridged, *mapL1DepositStatus(4))
	require.Nil(t, mapL1DepositStatus(5))
}
