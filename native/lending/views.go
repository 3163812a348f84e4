package lending

import (
	"math/big"

	"lendvault/crypto"
)

// PoolView is the externally served snapshot of a lending pool.
type PoolView struct {
	Token              string   `json:"token"`
	GrossLiquidity     *big.Int `json:"grossLiquidity"`
	AvailableLiquidity *big.Int `json:"availableLiquidity"`
	UtilizationPercent uint64   `json:"utilizationPercent"`
	APRPercent         uint64   `json:"aprPercent"`
}

// LoanView is the externally served snapshot of an open loan.
type LoanView struct {
	ID                uint64   `json:"id"`
	Token             string   `json:"token"`
	Principal         *big.Int `json:"principal"`
	TermDays          uint32   `json:"termDays"`
	RemainingPayments uint32   `json:"remainingPayments"`
	StartTime         uint64   `json:"startTime"`
	LastPaymentTime   uint64   `json:"lastPaymentTime"`
}

// PositionView is the externally served snapshot of an account's position.
type PositionView struct {
	Address    string              `json:"address"`
	Supplied   map[string]*big.Int `json:"supplied"`
	Collateral map[string]*big.Int `json:"collateral"`
	Loans      []LoanView          `json:"loans"`
}

// RiskView summarises an account's standing against the protocol thresholds.
type RiskView struct {
	Address         string   `json:"address"`
	CollateralValue *big.Int `json:"collateralValue"`
	TotalDebt       *big.Int `json:"totalDebt"`
	BorrowLimit     *big.Int `json:"borrowLimit"`
	Liquidatable    bool     `json:"liquidatable"`
}

// PoolSnapshot returns the current state of the token's pool together with
// its derived utilization and APR.
func (e *Engine) PoolSnapshot(token string) (*PoolView, error) {
	release, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer release()
	if !e.registry.IsLending(token) {
		return nil, ErrUnsupportedToken
	}
	pool, err := e.ensurePool(token)
	if err != nil {
		return nil, err
	}
	utilization := UtilizationPercent(pool)
	return &PoolView{
		Token:              pool.Token,
		GrossLiquidity:     new(big.Int).Set(pool.GrossLiquidity),
		AvailableLiquidity: new(big.Int).Set(pool.AvailableLiquidity),
		UtilizationPercent: utilization,
		APRPercent:         e.interestModel.APRPercent(utilization),
	}, nil
}

// PositionSnapshot returns the account's supplied balances, pledged
// collateral and open loans.
func (e *Engine) PositionSnapshot(addr crypto.Address) (*PositionView, error) {
	release, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer release()
	position, err := e.ensurePosition(addr)
	if err != nil {
		return nil, err
	}
	view := &PositionView{
		Address:    addr.String(),
		Supplied:   make(map[string]*big.Int),
		Collateral: make(map[string]*big.Int),
		Loans:      make([]LoanView, 0, len(position.Loans)),
	}
	for token, bal := range position.Supplied {
		if bal == nil || bal.Sign() == 0 {
			continue
		}
		view.Supplied[token] = new(big.Int).Set(bal)
	}
	for token, bal := range position.Collateral {
		if bal == nil || bal.Sign() == 0 {
			continue
		}
		view.Collateral[token] = new(big.Int).Set(bal)
	}
	for _, loan := range position.Loans {
		if loan == nil {
			continue
		}
		view.Loans = append(view.Loans, LoanView{
			ID:                loan.ID,
			Token:             loan.Token,
			Principal:         new(big.Int).Set(loan.Principal),
			TermDays:          uint32(loan.Term),
			RemainingPayments: loan.RemainingPayments,
			StartTime:         loan.StartTime,
			LastPaymentTime:   loan.LastPaymentTime,
		})
	}
	return view, nil
}

// RiskSummary values the account through the oracle and reports its borrow
// headroom and liquidation standing.
func (e *Engine) RiskSummary(addr crypto.Address) (*RiskView, error) {
	release, err := e.begin()
	if err != nil {
		return nil, err
	}
	defer release()
	position, err := e.ensurePosition(addr)
	if err != nil {
		return nil, err
	}
	pass := newValuationPass(e.oracle)
	collateralValue, err := pass.valueCollateral(position, e.registry.CollateralTokens())
	if err != nil {
		return nil, err
	}
	totalDebt, err := pass.valueLoans(position.Loans)
	if err != nil {
		return nil, err
	}
	return &RiskView{
		Address:         addr.String(),
		CollateralValue: collateralValue,
		TotalDebt:       totalDebt,
		BorrowLimit:     e.params.borrowLimit(collateralValue),
		Liquidatable:    e.params.liquidatable(collateralValue, totalDebt),
	}, nil
}
