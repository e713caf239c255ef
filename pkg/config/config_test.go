package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Dump(t *testing.T) {
	cfg := &Config{ListenAddr: "0.0.0.0:8080", SupportedChains: []string{"base-mainnet", "sui-mainnet"}}

	out, err := cfg.Dump()
	require.NoError(t, err)
	require.Contains(t, out, "listenaddr: 0.0.0.0:8080")
	require.Contains(t, out, "base-mainnet")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPPORTED_CHAINS", "")
	t.Setenv("APP_HOST", "")
	t.Setenv("APP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:8080", cfg.ListenAddr)
	require.True(t, cfg.EnableCleanupCron)
}

func TestValidate_RequiresDatabaseURLAndChains(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL")
	require.Contains(t, err.Error(), "SUPPORTED_CHAINS")
}
