package lending

import "math/big"

var basisPoints = big.NewInt(10_000)

// RiskParameters groups the safety thresholds gating borrowing and
// liquidation, expressed in basis points. The defaults carry the protocol's
// load-bearing ratios: a 75% loan-to-value ceiling and a 125% liquidation
// floor. Both checks use exact truncating integer arithmetic; changing the
// rounding here changes who keeps real value.
type RiskParameters struct {
	// MaxLTVBps caps new borrows relative to collateral value.
	MaxLTVBps uint64
	// LiquidationThresholdBps is the debt multiple collateral must cover to
	// stay safe from seizure.
	LiquidationThresholdBps uint64
	// LiquidationBonusBps is the premium over repaid debt value granted to
	// the liquidator in seized collateral.
	LiquidationBonusBps uint64
	// CashbackBps is the share of paid interest returned to the borrower.
	CashbackBps uint64
}

// DefaultRiskParameters returns the protocol defaults.
func DefaultRiskParameters() RiskParameters {
	return RiskParameters{
		MaxLTVBps:               7_500,
		LiquidationThresholdBps: 12_500,
		LiquidationBonusBps:     500,
		CashbackBps:             1_500,
	}
}

// borrowLimit returns collateralValue * MaxLTV, truncating.
func (p RiskParameters) borrowLimit(collateralValue *big.Int) *big.Int {
	if collateralValue == nil || collateralValue.Sign() <= 0 {
		return big.NewInt(0)
	}
	limit := new(big.Int).Mul(collateralValue, new(big.Int).SetUint64(p.MaxLTVBps))
	return limit.Quo(limit, basisPoints)
}

// liquidatable reports whether the position may be seized:
// collateralValue < totalDebt * liquidation threshold.
func (p RiskParameters) liquidatable(collateralValue, totalDebt *big.Int) bool {
	if totalDebt == nil || totalDebt.Sign() == 0 {
		return false
	}
	if collateralValue == nil {
		collateralValue = big.NewInt(0)
	}
	floor := new(big.Int).Mul(totalDebt, new(big.Int).SetUint64(p.LiquidationThresholdBps))
	floor.Quo(floor, basisPoints)
	return collateralValue.Cmp(floor) < 0
}

// withdrawalHealthy reports whether the remaining collateral value still
// covers the health floor after a collateral withdrawal.
func (p RiskParameters) withdrawalHealthy(remainingCollateralValue, totalDebt *big.Int) bool {
	if totalDebt == nil || totalDebt.Sign() == 0 {
		return true
	}
	if remainingCollateralValue == nil {
		remainingCollateralValue = big.NewInt(0)
	}
	floor := new(big.Int).Mul(totalDebt, new(big.Int).SetUint64(p.LiquidationThresholdBps))
	floor.Quo(floor, basisPoints)
	return remainingCollateralValue.Cmp(floor) >= 0
}

// interestSplit divides accrued interest into the borrower cashback and the
// treasury cut: cashback = interest * CashbackBps / 10000, treasury keeps
// the remainder.
func (p RiskParameters) interestSplit(interest *big.Int) (cashback, treasuryCut *big.Int) {
	if interest == nil || interest.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}
	cashback = new(big.Int).Mul(interest, new(big.Int).SetUint64(p.CashbackBps))
	cashback.Quo(cashback, basisPoints)
	treasuryCut = new(big.Int).Sub(interest, cashback)
	return cashback, treasuryCut
}
