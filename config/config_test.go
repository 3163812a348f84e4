package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8680", cfg.ListenAddress)
	require.Equal(t, "dev", cfg.Environment)
	require.Equal(t, 600, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadOverridesAndSections(t *testing.T) {
	path := writeConfig(t, `
ListenAddress = ":9000"
Environment = "prod"
CollateralTokens = ["NVC", "GOLD"]
LendingTokens = ["ZUSD"]

[RateLimit]
RequestsPerMinute = 120
Burst = 10

[lending]
MaxLTVBps = 7000
CashbackBps = 1000

[prices]
NVC = "10"
ZUSD = "1"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, []string{"NVC", "GOLD"}, cfg.CollateralTokens)
	require.Equal(t, 120, cfg.RateLimit.RequestsPerMinute)

	params := cfg.Lending.RiskParameters()
	require.Equal(t, uint64(7_000), params.MaxLTVBps)
	require.Equal(t, uint64(12_500), params.LiquidationThresholdBps)
	require.Equal(t, uint64(1_000), params.CashbackBps)

	seeds, err := cfg.SeedPrices()
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10), seeds["NVC"])
	require.Equal(t, big.NewInt(1), seeds["ZUSD"])
}

func TestLoadRejectsBadPrice(t *testing.T) {
	path := writeConfig(t, `
[prices]
NVC = "-3"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadTreasury(t *testing.T) {
	path := writeConfig(t, `TreasuryAddress = "not-bech32"`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsEmptyListenAddress(t *testing.T) {
	cfg := Default()
	cfg.ListenAddress = "  "
	require.Error(t, cfg.Validate())
}
