package lending

import "math/big"

var oneHundred = big.NewInt(100)

// UtilizationPercent derives the utilization ratio of a pool as a truncating
// integer percentage: (gross - available) * 100 / gross.
//
// A pool with zero gross liquidity has no meaningful utilization and reports
// 0 rather than dividing by zero.
func UtilizationPercent(pool *Pool) uint64 {
	if pool == nil || pool.GrossLiquidity == nil || pool.GrossLiquidity.Sign() == 0 {
		return 0
	}
	available := pool.AvailableLiquidity
	if available == nil {
		available = big.NewInt(0)
	}
	borrowed := new(big.Int).Sub(pool.GrossLiquidity, available)
	if borrowed.Sign() <= 0 {
		return 0
	}
	rate := new(big.Int).Mul(borrowed, oneHundred)
	rate.Quo(rate, pool.GrossLiquidity)
	return rate.Uint64()
}
