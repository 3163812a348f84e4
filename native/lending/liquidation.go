package lending

import "math/big"

// seizure is one token's share of a liquidation.
type seizure struct {
	token  string
	amount *big.Int
}

// seizureTarget returns the collateral value to seize when liquidating a
// position: the repaid debt value plus the liquidation bonus, capped at the
// collateral actually held.
func (p RiskParameters) seizureTarget(totalDebt, collateralValue *big.Int) *big.Int {
	target := new(big.Int).Mul(totalDebt, new(big.Int).SetUint64(10_000+p.LiquidationBonusBps))
	target.Quo(target, basisPoints)
	if collateralValue != nil && target.Cmp(collateralValue) > 0 {
		target = new(big.Int).Set(collateralValue)
	}
	return target
}

// planSeizure splits the seizure target across the position's collateral
// tokens pro-rata by value: each token contributes
// balance * target / collateralValue (truncating). Truncation leaves a value
// remainder; it is swept from whichever token still has the deepest
// unclaimed balance so the liquidator is not systematically shorted.
func planSeizure(pass *valuationPass, position *Position, tokens []string, collateralValue, target *big.Int) ([]seizure, error) {
	if target.Sign() <= 0 || collateralValue.Sign() <= 0 {
		return nil, nil
	}
	plan := make([]seizure, 0, len(tokens))
	seizedValue := big.NewInt(0)
	for _, token := range tokens {
		balance := position.CollateralBalance(token)
		if balance.Sign() == 0 {
			continue
		}
		price, err := pass.price(token)
		if err != nil {
			return nil, err
		}
		amount := new(big.Int).Mul(balance, target)
		amount.Quo(amount, collateralValue)
		if amount.Cmp(balance) > 0 {
			amount = new(big.Int).Set(balance)
		}
		if amount.Sign() == 0 {
			continue
		}
		plan = append(plan, seizure{token: token, amount: amount})
		seizedValue.Add(seizedValue, new(big.Int).Mul(price, amount))
	}

	remainder := new(big.Int).Sub(target, seizedValue)
	if remainder.Sign() > 0 {
		if err := sweepRemainder(pass, position, plan, remainder); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// sweepRemainder tops up the plan entry with the largest unclaimed balance
// value by up to remainder worth of tokens.
func sweepRemainder(pass *valuationPass, position *Position, plan []seizure, remainder *big.Int) error {
	bestIdx := -1
	bestValue := big.NewInt(0)
	for i, entry := range plan {
		price, err := pass.price(entry.token)
		if err != nil {
			return err
		}
		unclaimed := new(big.Int).Sub(position.CollateralBalance(entry.token), entry.amount)
		if unclaimed.Sign() <= 0 {
			continue
		}
		value := new(big.Int).Mul(price, unclaimed)
		if value.Cmp(bestValue) > 0 {
			bestValue = value
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return nil
	}
	price, err := pass.price(plan[bestIdx].token)
	if err != nil {
		return err
	}
	extra := new(big.Int).Quo(remainder, price)
	unclaimed := new(big.Int).Sub(position.CollateralBalance(plan[bestIdx].token), plan[bestIdx].amount)
	if extra.Cmp(unclaimed) > 0 {
		extra = unclaimed
	}
	if extra.Sign() > 0 {
		plan[bestIdx].amount = new(big.Int).Add(plan[bestIdx].amount, extra)
	}
	return nil
}
