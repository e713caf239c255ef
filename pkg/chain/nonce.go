package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// NonceManager serializes transaction submission for a single signer
// address so concurrent reconciler jobs never race on the same nonce. It
// wraps a bind.TransactOpts the way evm_strategy's constructor does, but
// adds the mutex and the pending-nonce priming concurrent callers need.
type NonceManager struct {
	mu      sync.Mutex
	auth    *bind.TransactOpts
	address common.Address
	client  *ethclient.Client
	next    uint64
	primed  bool
}

func newNonceManager(ctx context.Context, privateKeyHex string, chainID *big.Int, client *ethclient.Client) (*NonceManager, error) {
	auth, err := buildTransactor(privateKeyHex, chainID)
	if err != nil {
		return nil, err
	}
	addr, err := signerAddress(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return &NonceManager{auth: auth, address: addr, client: client}, nil
}

// Address returns the signer's address.
func (n *NonceManager) Address() common.Address { return n.address }

// NextOpts returns a *bind.TransactOpts with Nonce set to the next nonce
// this manager will hand out, reserving it for the caller. The caller must
// eventually call Release if the transaction was never actually broadcast
// (e.g. a validation error before ExecContext), otherwise the reserved
// nonce is considered consumed.
func (n *NonceManager) NextOpts(ctx context.Context) (*bind.TransactOpts, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.primed {
		pending, err := n.client.PendingNonceAt(ctx, n.address)
		if err != nil {
			return nil, fmt.Errorf("chain: fetch pending nonce: %w", err)
		}
		n.next = pending
		n.primed = true
	}

	opts := *n.auth
	opts.Context = ctx
	opts.Nonce = new(big.Int).SetUint64(n.next)
	n.next++
	return &opts, nil
}

// Release gives back a reserved nonce that was never broadcast, so the
// next caller reuses it instead of leaving a gap.
func (n *NonceManager) Release(nonce uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.primed && nonce == n.next-1 {
		n.next--
	}
}
