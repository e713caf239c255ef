package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/knadh/koanf"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
)

// ChainPlatform identifies the execution environment a chain adapter
// targets.
type ChainPlatform string

const (
	PlatformEVM      ChainPlatform = "evm"
	PlatformStarknet ChainPlatform = "starknet"
	PlatformSolana   ChainPlatform = "solana"
	PlatformSui      ChainPlatform = "sui"
	PlatformSei      ChainPlatform = "sei"
)

func (p ChainPlatform) Valid() bool {
	switch p {
	case PlatformEVM, PlatformStarknet, PlatformSolana, PlatformSui, PlatformSei:
		return true
	default:
		return false
	}
}

// SupportsWormholeBridging reports whether deposits on this platform are
// bridged to L1 via Wormhole rather than landing there directly.
func (p ChainPlatform) SupportsWormholeBridging() bool {
	return p == PlatformSui || p == PlatformSei
}

// ChainConfig is one chain's configuration, loaded from a YAML file under
// Config.ChainConfigDir and merged with ${VAR}-style environment overrides.
type ChainConfig struct {
	ChainName   string        `koanf:"chain_name" yaml:"chain_name"`
	Platform    ChainPlatform `koanf:"platform" yaml:"platform"`
	Network     string        `koanf:"network" yaml:"network"`
	L2RPC       string        `koanf:"l2_rpc" yaml:"l2_rpc"`
	L1RPC       string        `koanf:"l1_rpc" yaml:"l1_rpc"`
	ContractAddress string    `koanf:"contract_address" yaml:"contract_address"`
	L1BridgeAddress string    `koanf:"l1_bridge_address" yaml:"l1_bridge_address"`
	// L1DepositorAddress is the L1 BitcoinDepositor contract this chain's
	// deposits are initialized and finalized against (initializeDeposit,
	// finalizeDeposit, quoteFinalizeDeposit, deposits).
	L1DepositorAddress string `koanf:"l1_depositor_address" yaml:"l1_depositor_address"`
	// VaultAddress is the L1 TBTCVault contract emitting
	// OptimisticMintingFinalized, watched to reconcile deposits to BRIDGED.
	VaultAddress string `koanf:"vault_address" yaml:"vault_address"`
	// L1RedeemerAddress is the L1 BitcoinRedeemer contract redemptions are
	// completed against (finalizeL2Redemption), distinct from
	// L1BridgeAddress which is the Wormhole token bridge used for deposit
	// bridging on Sui/Sei.
	L1RedeemerAddress string `koanf:"l1_redeemer_address" yaml:"l1_redeemer_address"`
	RequiredConfirmations int `koanf:"required_confirmations" yaml:"required_confirmations"`
	// GasLimitMultiplier scales the estimated gas for L1 redemption
	// completion calls to absorb estimation drift.
	GasLimitMultiplier float64 `koanf:"gas_limit_multiplier" yaml:"gas_limit_multiplier"`
	// L1TxTimeout bounds how long a redemption's L1 completion call waits
	// for a mined receipt before failing with L1_TX_TIMEOUT.
	L1TxTimeout time.Duration `koanf:"l1_tx_timeout" yaml:"l1_tx_timeout"`
	UseEndpoint       bool    `koanf:"use_endpoint" yaml:"use_endpoint"`
	EnableL2Redemption bool   `koanf:"enable_l2_redemption" yaml:"enable_l2_redemption"`
	StartBlock        uint64  `koanf:"start_block" yaml:"start_block"`
	PollInterval      time.Duration `koanf:"poll_interval" yaml:"poll_interval"`
	// StarknetFeeFallback lists fee-estimation strategies in preference
	// order, used only when Platform == PlatformStarknet.
	StarknetFeeFallback []string `koanf:"starknet_fee_fallback" yaml:"starknet_fee_fallback"`
	PrivateKey          string   `koanf:"private_key" yaml:"private_key"`
	Enabled             bool     `koanf:"enabled" yaml:"enabled"`

	// WormholeCoreContract and WormholeEmitterChain identify this chain's
	// Wormhole core contract for LogMessagePublished lookups. Only set for
	// platforms where Platform.SupportsWormholeBridging() is true.
	WormholeCoreContract string `koanf:"wormhole_core_contract" yaml:"wormhole_core_contract"`
	WormholeEmitterChain uint16 `koanf:"wormhole_emitter_chain" yaml:"wormhole_emitter_chain"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		name := groups[1]
		def := ""
		if len(groups) >= 4 {
			def = groups[3]
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return def
	})
}

// LoadChainConfig reads a chain's YAML file, substituting ${VAR} and
// ${VAR:-default} references against the environment before parsing.
func LoadChainConfig(path string) (*ChainConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read chain config %s: %w", path, err)
	}
	expanded := substituteEnvVars(string(raw))

	tmp, err := os.CreateTemp("", "chain-*.yaml")
	if err != nil {
		return nil, fmt.Errorf("config: stage chain config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(expanded); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("config: stage chain config: %w", err)
	}
	tmp.Close()

	k := koanf.New(".")
	if err := k.Load(file.Provider(tmp.Name()), kyaml.Parser()); err != nil {
		return nil, fmt.Errorf("config: parse chain config %s: %w", path, err)
	}

	cfg := &ChainConfig{
		RequiredConfirmations: 1,
		PollInterval:          15 * time.Second,
		Enabled:               true,
		GasLimitMultiplier:    1.2,
		L1TxTimeout:           5 * time.Minute,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal chain config %s: %w", path, err)
	}

	if !cfg.Platform.Valid() {
		return nil, fmt.Errorf("config: chain config %s: unsupported platform %q", path, cfg.Platform)
	}
	if cfg.L2RPC == "" {
		return nil, fmt.Errorf("config: chain config %s: l2_rpc is required", path)
	}
	return cfg, nil
}

// LoadChainConfigs loads one YAML file per chain name from dir, expecting
// a file named "<chainName>.yaml".
func LoadChainConfigs(dir string, chainNames []string) (map[string]*ChainConfig, error) {
	out := make(map[string]*ChainConfig, len(chainNames))
	for _, name := range chainNames {
		path := dir + "/" + name + ".yaml"
		cfg, err := LoadChainConfig(path)
		if err != nil {
			return nil, err
		}
		cfg.ChainName = name
		out[name] = cfg
	}
	return out, nil
}
