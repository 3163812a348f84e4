package lending

import "math/big"

const secondsPerYear = 31_536_000

// RateTier maps a utilization bracket to its annual percentage rate. The
// bracket covers utilization values up to and including MaxUtilization.
type RateTier struct {
	MaxUtilization uint64
	APRPercent     uint64
}

// InterestModel selects an APR from a fixed utilization-keyed tier table and
// applies simple, non-compounding interest over elapsed time. Accrued
// interest is never written back into loan principal; every query recomputes
// it from the loan's LastPaymentTime.
type InterestModel struct {
	tiers      []RateTier
	topPercent uint64
}

// NewInterestModel constructs a model from an ordered tier table and the APR
// applied above the last bracket.
func NewInterestModel(tiers []RateTier, topPercent uint64) *InterestModel {
	return &InterestModel{
		tiers:      append([]RateTier(nil), tiers...),
		topPercent: topPercent,
	}
}

// DefaultInterestModel carries the protocol rate curve: cheap credit while
// the pool sits idle, stepping up as utilization climbs.
var DefaultInterestModel = NewInterestModel([]RateTier{
	{MaxUtilization: 16, APRPercent: 6},
	{MaxUtilization: 32, APRPercent: 8},
	{MaxUtilization: 48, APRPercent: 10},
	{MaxUtilization: 64, APRPercent: 12},
}, 14)

// Clone returns a deep copy of the interest model.
func (m *InterestModel) Clone() *InterestModel {
	if m == nil {
		return nil
	}
	return NewInterestModel(m.tiers, m.topPercent)
}

// APRPercent resolves the annual rate for the given utilization percentage.
// Bracket boundaries are inclusive on the upper bound.
func (m *InterestModel) APRPercent(utilizationPercent uint64) uint64 {
	if m == nil {
		return 0
	}
	for _, tier := range m.tiers {
		if utilizationPercent <= tier.MaxUtilization {
			return tier.APRPercent
		}
	}
	return m.topPercent
}

// AccruedInterest computes the simple interest owed on the loan at the
// supplied utilization and timestamp:
//
//	principal * APR * elapsedSeconds / (secondsPerYear * 100)
//
// with truncating integer division. Loans with zero principal owe nothing.
func (m *InterestModel) AccruedInterest(loan *Loan, utilizationPercent uint64, nowUnix uint64) *big.Int {
	if m == nil || loan == nil || loan.Principal == nil || loan.Principal.Sign() == 0 {
		return big.NewInt(0)
	}
	if nowUnix <= loan.LastPaymentTime {
		return big.NewInt(0)
	}
	elapsed := nowUnix - loan.LastPaymentTime
	apr := m.APRPercent(utilizationPercent)
	if apr == 0 {
		return big.NewInt(0)
	}
	interest := new(big.Int).Mul(loan.Principal, new(big.Int).SetUint64(apr))
	interest.Mul(interest, new(big.Int).SetUint64(elapsed))
	interest.Quo(interest, big.NewInt(secondsPerYear*100))
	return interest
}
