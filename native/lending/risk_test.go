package lending

import (
	"math/big"
	"testing"
)

func TestBorrowLimitRatio(t *testing.T) {
	params := DefaultRiskParameters()
	if got := params.borrowLimit(big.NewInt(1_000)); got.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("expected 750, got %s", got)
	}
	if got := params.borrowLimit(big.NewInt(0)); got.Sign() != 0 {
		t.Fatalf("zero collateral: expected 0, got %s", got)
	}
	// Truncating division, never rounding up.
	if got := params.borrowLimit(big.NewInt(1)); got.Sign() != 0 {
		t.Fatalf("expected truncation to 0, got %s", got)
	}
}

func TestLiquidatableBoundary(t *testing.T) {
	params := DefaultRiskParameters()
	if !params.liquidatable(big.NewInt(124), big.NewInt(100)) {
		t.Fatalf("collateral 124 against debt 100 must be liquidatable")
	}
	if params.liquidatable(big.NewInt(125), big.NewInt(100)) {
		t.Fatalf("collateral 125 against debt 100 must be safe")
	}
	if params.liquidatable(big.NewInt(0), big.NewInt(0)) {
		t.Fatalf("zero debt must never be liquidatable")
	}
}

func TestInterestSplit(t *testing.T) {
	params := DefaultRiskParameters()
	cashback, treasury := params.interestSplit(big.NewInt(60))
	if cashback.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("cashback: expected 9, got %s", cashback)
	}
	if treasury.Cmp(big.NewInt(51)) != 0 {
		t.Fatalf("treasury: expected 51, got %s", treasury)
	}

	// Truncation favours the treasury.
	cashback, treasury = params.interestSplit(big.NewInt(1))
	if cashback.Sign() != 0 || treasury.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("one-unit interest: cashback %s treasury %s", cashback, treasury)
	}
}
