package lending

// Config captures the runtime configuration for the lending module.
type Config struct {
	MaxLTVBps               uint64 `toml:"MaxLTVBps"`
	LiquidationThresholdBps uint64 `toml:"LiquidationThresholdBps"`
	LiquidationBonusBps     uint64 `toml:"LiquidationBonusBps"`
	CashbackBps             uint64 `toml:"CashbackBps"`
}

// RiskParameters resolves the configured thresholds, falling back to the
// protocol defaults for unset fields.
func (c Config) RiskParameters() RiskParameters {
	params := DefaultRiskParameters()
	if c.MaxLTVBps > 0 {
		params.MaxLTVBps = c.MaxLTVBps
	}
	if c.LiquidationThresholdBps > 0 {
		params.LiquidationThresholdBps = c.LiquidationThresholdBps
	}
	if c.LiquidationBonusBps > 0 {
		params.LiquidationBonusBps = c.LiquidationBonusBps
	}
	if c.CashbackBps > 0 {
		params.CashbackBps = c.CashbackBps
	}
	return params
}
