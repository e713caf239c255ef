// Package chain builds and holds the per-chain RPC clients, signer, and
// Wormhole handle a Chain Handler needs to talk to both its L2 and the L1
// settlement chain. One Context is constructed per configured chain at
// startup and then held read-only by the handler that owns it.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/config"
	"github.com/tlabs-xyz/tbtc-crosschain-relayer-sub004/pkg/wormhole"
)

// Context bundles everything a Chain Handler needs for one configured
// chain: the L1 settlement-chain client (always EVM), the chain's own L2
// client, a nonce-serializing signer, and a Wormhole service handle.
type Context struct {
	ChainName string
	Config    *config.ChainConfig

	L1Client *ethclient.Client
	L1ChainID *big.Int

	// L2Client is non-nil only for EVM-platform and Sei chains; other
	// platforms use their own RPC client reachable through the handler.
	L2Client *ethclient.Client

	// L1Nonce serializes transactions submitted to the L1 settlement
	// chain: the EVM reveal/finalize calls on the L1 depositor, VAA
	// completion calls for Wormhole-bridging platforms, and redemption
	// completion calls.
	L1Nonce *NonceManager

	// L2Nonce is primed against the EVM-family L2 client (platform: evm
	// and platform: sei); no handler submits through it. Nil
	// for platforms that submit through their own RPC client instead.
	L2Nonce *NonceManager

	Wormhole *wormhole.Service
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithWormholeService attaches a shared Wormhole VAA service.
func WithWormholeService(s *wormhole.Service) Option {
	return func(c *Context) { c.Wormhole = s }
}

// NewContext dials the configured L1 and (for EVM-family chains) L2
// endpoints, derives the signer from the chain's configured private key,
// and returns a ready-to-use Context.
func NewContext(ctx context.Context, chainName string, cfg *config.ChainConfig, l1RPC string, l1ChainID int64, opts ...Option) (*Context, error) {
	c := &Context{ChainName: chainName, Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	l1Client, err := ethclient.DialContext(ctx, l1RPC)
	if err != nil {
		return nil, fmt.Errorf("chain[%s]: dial L1 RPC: %w", chainName, err)
	}
	c.L1Client = l1Client
	c.L1ChainID = big.NewInt(l1ChainID)

	if cfg.Platform == config.PlatformEVM || cfg.Platform == config.PlatformSei {
		l2Client, err := ethclient.DialContext(ctx, cfg.L2RPC)
		if err != nil {
			return nil, fmt.Errorf("chain[%s]: dial L2 RPC: %w", chainName, err)
		}
		c.L2Client = l2Client
	}

	if cfg.PrivateKey != "" {
		l1Nonce, err := newNonceManager(ctx, cfg.PrivateKey, c.L1ChainID, c.L1Client)
		if err != nil {
			return nil, fmt.Errorf("chain[%s]: build L1 signer: %w", chainName, err)
		}
		c.L1Nonce = l1Nonce

		if c.L2Client != nil {
			l2ChainID, err := c.L2Client.ChainID(ctx)
			if err != nil {
				return nil, fmt.Errorf("chain[%s]: fetch L2 chain id: %w", chainName, err)
			}
			l2Nonce, err := newNonceManager(ctx, cfg.PrivateKey, l2ChainID, c.L2Client)
			if err != nil {
				return nil, fmt.Errorf("chain[%s]: build L2 signer: %w", chainName, err)
			}
			c.L2Nonce = l2Nonce
		}
	}

	return c, nil
}

// Close releases the underlying RPC connections.
func (c *Context) Close() {
	if c.L1Client != nil {
		c.L1Client.Close()
	}
	if c.L2Client != nil {
		c.L2Client.Close()
	}
}

// signerAddress returns the address the Context signs transactions as.
func signerAddress(privateKeyHex string) (common.Address, error) {
	pk, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("chain: parse private key: %w", err)
	}
	pub, ok := pk.Public().(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, fmt.Errorf("chain: derive public key")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// buildTransactor constructs a bind.TransactOpts the way the rest of this
// lineage's services do: HexToECDSA then NewKeyedTransactorWithChainID.
func buildTransactor(privateKeyHex string, chainID *big.Int) (*bind.TransactOpts, error) {
	pk, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("chain: parse private key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(pk, chainID)
	if err != nil {
		return nil, fmt.Errorf("chain: build transactor: %w", err)
	}
	auth.Context = context.Background()
	return auth, nil
}

const defaultRPCTimeout = 10 * time.Second
