package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
chain_name: base-mainnet
platform: evm
network: base
l2_rpc: ${TEST_L2_RPC:-https://default.example}
l1_rpc: https://l1.example
contract_address: "0xabc"
required_confirmations: 3
`

func TestLoadChainConfig_EnvSubstitutionDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base-mainnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := LoadChainConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://default.example", cfg.L2RPC)
	require.Equal(t, PlatformEVM, cfg.Platform)
	require.Equal(t, 3, cfg.RequiredConfirmations)
}

func TestLoadChainConfig_EnvSubstitutionOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base-mainnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	t.Setenv("TEST_L2_RPC", "https://override.example")

	cfg, err := LoadChainConfig(path)
	require.NoError(t, err)
	require.Equal(t, "https://override.example", cfg.L2RPC)
}

func TestLoadChainConfig_InvalidPlatform(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("platform: cosmos\nl2_rpc: https://x"), 0o644))

	_, err := LoadChainConfig(path)
	require.Error(t, err)
}

func TestLoadChainConfig_MissingL2RPC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("platform: evm"), 0o644))

	_, err := LoadChainConfig(path)
	require.Error(t, err)
}

func TestChainPlatform_SupportsWormholeBridging(t *testing.T) {
	require.True(t, PlatformSui.SupportsWormholeBridging())
	require.True(t, PlatformSei.SupportsWormholeBridging())
	require.False(t, PlatformEVM.SupportsWormholeBridging())
	require.False(t, PlatformStarknet.SupportsWormholeBridging())
	require.False(t, PlatformSolana.SupportsWormholeBridging())
}
