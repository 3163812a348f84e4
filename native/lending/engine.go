package lending

import (
	"math/big"
	"time"

	"lendvault/core/events"
	"lendvault/core/types"
	"lendvault/crypto"
	nativecommon "lendvault/native/common"
)

const moduleName = "lending"

// engineState is the persistence surface the engine mutates through.
// Implementations must hand out copies: an aborted operation drops its
// working set on the floor and nothing it touched may be observable.
type engineState interface {
	GetPool(token string) (*Pool, error)
	PutPool(pool *Pool) error
	GetPosition(addr crypto.Address) (*Position, error)
	PutPosition(position *Position) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
	LoanSequence() (uint64, error)
	PutLoanSequence(seq uint64) error
}

// Engine orchestrates the state transitions of the lending protocol. Every
// public state-mutating operation is atomic and exclusive: the call guard is
// held across the whole operation, including calls out to the price and
// transfer collaborators, and all validation plus collaborator work happens
// before the first write so an error path never commits partial state.
type Engine struct {
	state         engineState
	vaultAddress  crypto.Address
	reserveVault  crypto.Address
	treasury      crypto.Address
	params        RiskParameters
	registry      *TokenRegistry
	interestModel *InterestModel
	oracle        PriceOracle
	emitter       events.Emitter
	guard         *nativecommon.CallGuard
	pauses        nativecommon.PauseView
	nowFn         func() uint64
}

// NewEngine constructs a lending engine bound to the pool vault, the
// collateral reserve vault and the treasury addresses.
func NewEngine(vault, reserve, treasury crypto.Address, params RiskParameters) *Engine {
	return &Engine{
		vaultAddress:  vault,
		reserveVault:  reserve,
		treasury:      treasury,
		params:        params,
		registry:      NewTokenRegistry(),
		interestModel: DefaultInterestModel.Clone(),
		emitter:       events.NoopEmitter{},
		guard:         &nativecommon.CallGuard{},
		nowFn:         func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetOracle wires the external price collaborator.
func (e *Engine) SetOracle(oracle PriceOracle) {
	if e == nil {
		return
	}
	e.oracle = oracle
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if e == nil {
		return
	}
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPauses wires the administrative pause switchboard.
func (e *Engine) SetPauses(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetInterestModel replaces the rate curve used for accrual.
func (e *Engine) SetInterestModel(model *InterestModel) {
	if e == nil || model == nil {
		return
	}
	e.interestModel = model.Clone()
}

// SetClock overrides the timestamp source. Intended for tests and for hosts
// that supply a deterministic transaction time.
func (e *Engine) SetClock(now func() uint64) {
	if e == nil || now == nil {
		return
	}
	e.nowFn = now
}

// Registry exposes the supported-token sets.
func (e *Engine) Registry() *TokenRegistry { return e.registry }

// AddCollateralToken registers a collateral-eligible token. Part of the
// governance surface; idempotency-guarded.
func (e *Engine) AddCollateralToken(token string) error {
	if e == nil {
		return errNilState
	}
	return e.registry.AddCollateralToken(token)
}

// AddLendingToken registers a lending-eligible token. Part of the governance
// surface; idempotency-guarded.
func (e *Engine) AddLendingToken(token string) error {
	if e == nil {
		return errNilState
	}
	return e.registry.AddLendingToken(token)
}

func (e *Engine) now() uint64 { return e.nowFn() }

// begin acquires the exclusive call guard and checks the pause switch. The
// returned release must run on every exit path.
func (e *Engine) begin() (func(), error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	release, err := e.guard.Enter()
	if err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil {
		return
	}
	e.emitter.Emit(protocolEvent{evt: evt})
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e *Engine) ensureAccount(addr crypto.Address) (*types.Account, error) {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = &types.Account{}
	}
	return acc, nil
}

func (e *Engine) ensurePool(token string) (*Pool, error) {
	normalized := normalizeToken(token)
	pool, err := e.state.GetPool(normalized)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		pool = &Pool{Token: normalized}
	}
	if pool.GrossLiquidity == nil {
		pool.GrossLiquidity = big.NewInt(0)
	}
	if pool.AvailableLiquidity == nil {
		pool.AvailableLiquidity = big.NewInt(0)
	}
	return pool, nil
}

func (e *Engine) ensurePosition(addr crypto.Address) (*Position, error) {
	position, err := e.state.GetPosition(addr)
	if err != nil {
		return nil, err
	}
	if position == nil {
		position = &Position{Address: addr}
	}
	return position, nil
}

func debitAccount(acc *types.Account, token string, amount *big.Int) error {
	balance := acc.Balance(token)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	acc.SetBalance(token, new(big.Int).Sub(balance, amount))
	return nil
}

func creditAccount(acc *types.Account, token string, amount *big.Int) {
	acc.SetBalance(token, new(big.Int).Add(acc.Balance(token), amount))
}

// checkPoolInvariant guards availableLiquidity <= grossLiquidity after a
// mutation. A violation is a programming error, surfaced rather than
// silently committed.
func checkPoolInvariant(pool *Pool) error {
	if pool.AvailableLiquidity.Sign() < 0 ||
		pool.AvailableLiquidity.Cmp(pool.GrossLiquidity) > 0 {
		return ErrArithmeticOverflow
	}
	return nil
}

// Supply deposits liquidity into the token's pool, growing both the gross
// and available counters.
func (e *Engine) Supply(supplier crypto.Address, token string, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}
	if !e.registry.IsLending(token) {
		return ErrUnsupportedToken
	}
	normalized := normalizeToken(token)

	pool, err := e.ensurePool(normalized)
	if err != nil {
		return err
	}
	supplierAcc, err := e.ensureAccount(supplier)
	if err != nil {
		return err
	}
	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return err
	}
	position, err := e.ensurePosition(supplier)
	if err != nil {
		return err
	}

	if err := debitAccount(supplierAcc, normalized, amount); err != nil {
		return err
	}
	creditAccount(vaultAcc, normalized, amount)

	pool.GrossLiquidity = new(big.Int).Add(pool.GrossLiquidity, amount)
	pool.AvailableLiquidity = new(big.Int).Add(pool.AvailableLiquidity, amount)
	if err := checkPoolInvariant(pool); err != nil {
		return err
	}
	position.SetSupplied(normalized, new(big.Int).Add(position.SuppliedBalance(normalized), amount))

	if err := e.state.PutAccount(supplier, supplierAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}

	e.emit(newAmountEvent(EventTypeSupply, supplier, normalized, amount))
	return nil
}

// Withdraw releases previously supplied liquidity back to the supplier,
// shrinking both pool counters. Funds currently borrowed out cannot be
// withdrawn.
func (e *Engine) Withdraw(supplier crypto.Address, token string, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}
	if !e.registry.IsLending(token) {
		return ErrUnsupportedToken
	}
	normalized := normalizeToken(token)

	pool, err := e.ensurePool(normalized)
	if err != nil {
		return err
	}
	position, err := e.ensurePosition(supplier)
	if err != nil {
		return err
	}
	if position.SuppliedBalance(normalized).Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if pool.AvailableLiquidity.Cmp(amount) < 0 {
		return ErrInsufficientLiquidity
	}

	supplierAcc, err := e.ensureAccount(supplier)
	if err != nil {
		return err
	}
	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return err
	}
	if err := debitAccount(vaultAcc, normalized, amount); err != nil {
		return ErrInsufficientLiquidity
	}
	creditAccount(supplierAcc, normalized, amount)

	pool.GrossLiquidity = new(big.Int).Sub(pool.GrossLiquidity, amount)
	pool.AvailableLiquidity = new(big.Int).Sub(pool.AvailableLiquidity, amount)
	if err := checkPoolInvariant(pool); err != nil {
		return err
	}
	position.SetSupplied(normalized, new(big.Int).Sub(position.SuppliedBalance(normalized), amount))

	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(supplier, supplierAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}

	e.emit(newAmountEvent(EventTypeWithdraw, supplier, normalized, amount))
	return nil
}

// DepositCollateral locks collateral for the user inside the reserve vault.
func (e *Engine) DepositCollateral(user crypto.Address, token string, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}
	if !e.registry.IsCollateral(token) {
		return ErrUnsupportedToken
	}
	normalized := normalizeToken(token)

	userAcc, err := e.ensureAccount(user)
	if err != nil {
		return err
	}
	reserveAcc, err := e.ensureAccount(e.reserveVault)
	if err != nil {
		return err
	}
	position, err := e.ensurePosition(user)
	if err != nil {
		return err
	}

	if err := debitAccount(userAcc, normalized, amount); err != nil {
		return err
	}
	creditAccount(reserveAcc, normalized, amount)
	position.SetCollateral(normalized, new(big.Int).Add(position.CollateralBalance(normalized), amount))

	if err := e.state.PutAccount(user, userAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.reserveVault, reserveAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}

	e.emit(newAmountEvent(EventTypeCollateralDeposited, user, normalized, amount))
	return nil
}

// WithdrawCollateral releases pledged collateral back to the user, provided
// the remaining collateral value still covers the health floor against the
// account's total debt. The check runs before any balance mutation.
func (e *Engine) WithdrawCollateral(user crypto.Address, token string, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}
	if !e.registry.IsCollateral(token) {
		return ErrUnsupportedToken
	}
	normalized := normalizeToken(token)

	position, err := e.ensurePosition(user)
	if err != nil {
		return err
	}
	balance := position.CollateralBalance(normalized)
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}

	pass := newValuationPass(e.oracle)
	totalDebt, err := pass.valueLoans(position.Loans)
	if err != nil {
		return err
	}
	projected := position.Clone()
	projected.SetCollateral(normalized, new(big.Int).Sub(balance, amount))
	remainingValue, err := pass.valueCollateral(projected, e.registry.CollateralTokens())
	if err != nil {
		return err
	}
	if !e.params.withdrawalHealthy(remainingValue, totalDebt) {
		return ErrHealthCheckFailed
	}

	userAcc, err := e.ensureAccount(user)
	if err != nil {
		return err
	}
	reserveAcc, err := e.ensureAccount(e.reserveVault)
	if err != nil {
		return err
	}
	if err := debitAccount(reserveAcc, normalized, amount); err != nil {
		return err
	}
	creditAccount(userAcc, normalized, amount)
	position.SetCollateral(normalized, new(big.Int).Sub(balance, amount))

	if err := e.state.PutAccount(e.reserveVault, reserveAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(user, userAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}

	e.emit(newAmountEvent(EventTypeCollateralWithdrawn, user, normalized, amount))
	return nil
}

// Borrow opens a new loan against the user's collateral, drawing from the
// token pool's available liquidity. The issued loan identifier is returned.
func (e *Engine) Borrow(borrower crypto.Address, token string, amount *big.Int, term Term) (uint64, error) {
	release, err := e.begin()
	if err != nil {
		return 0, err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return 0, err
	}
	if !e.registry.IsLending(token) {
		return 0, ErrUnsupportedToken
	}
	if _, err := paymentsForTerm(term); err != nil {
		return 0, err
	}
	normalized := normalizeToken(token)

	pool, err := e.ensurePool(normalized)
	if err != nil {
		return 0, err
	}
	if pool.AvailableLiquidity.Cmp(amount) < 0 {
		return 0, ErrInsufficientLiquidity
	}

	position, err := e.ensurePosition(borrower)
	if err != nil {
		return 0, err
	}

	pass := newValuationPass(e.oracle)
	collateralValue, err := pass.valueCollateral(position, e.registry.CollateralTokens())
	if err != nil {
		return 0, err
	}
	price, err := pass.price(normalized)
	if err != nil {
		return 0, err
	}
	borrowValue := new(big.Int).Mul(price, amount)
	if borrowValue.Cmp(e.params.borrowLimit(collateralValue)) > 0 {
		return 0, ErrExceedsBorrowLimit
	}

	seq, err := e.state.LoanSequence()
	if err != nil {
		return 0, err
	}
	loanID, err := nextLoanID(seq)
	if err != nil {
		return 0, err
	}
	loan, err := issueLoan(loanID, borrower, normalized, amount, term, e.now())
	if err != nil {
		return 0, err
	}

	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return 0, err
	}
	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return 0, err
	}
	if err := debitAccount(vaultAcc, normalized, amount); err != nil {
		return 0, ErrInsufficientLiquidity
	}
	creditAccount(borrowerAcc, normalized, amount)

	pool.AvailableLiquidity = new(big.Int).Sub(pool.AvailableLiquidity, amount)
	if err := checkPoolInvariant(pool); err != nil {
		return 0, err
	}
	position.Loans = append(position.Loans, loan)

	if err := e.state.PutLoanSequence(loanID); err != nil {
		return 0, err
	}
	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return 0, err
	}
	if err := e.state.PutAccount(borrower, borrowerAcc); err != nil {
		return 0, err
	}
	if err := e.state.PutPosition(position); err != nil {
		return 0, err
	}
	if err := e.state.PutPool(pool); err != nil {
		return 0, err
	}

	e.emit(newLoanEvent(EventTypeBorrow, borrower, normalized, amount, loanID))
	return loanID, nil
}

// Repay settles a loan in full: principal plus interest accrued since the
// last payment at the pool's current utilization tier. The payment must
// cover the total due; anything less leaves the loan untouched. Interest is
// split into the borrower cashback and the treasury cut, and the principal
// returns to the pool's available liquidity.
func (e *Engine) Repay(borrower crypto.Address, loanID uint64, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}

	position, err := e.ensurePosition(borrower)
	if err != nil {
		return err
	}
	idx := loanIndexByID(position.Loans, loanID)
	if idx < 0 {
		return ErrNoActiveLoan
	}
	loan := position.Loans[idx]

	pool, err := e.ensurePool(loan.Token)
	if err != nil {
		return err
	}
	utilization := UtilizationPercent(pool)
	netInterest := e.interestModel.AccruedInterest(loan, utilization, e.now())
	cashback, treasuryCut := e.params.interestSplit(netInterest)
	totalDue := new(big.Int).Add(loan.Principal, netInterest)
	if amount.Cmp(totalDue) < 0 {
		return ErrInsufficientRepayment
	}

	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return err
	}
	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return err
	}
	treasuryAcc, err := e.ensureAccount(e.treasury)
	if err != nil {
		return err
	}

	if err := debitAccount(borrowerAcc, loan.Token, totalDue); err != nil {
		return err
	}
	creditAccount(vaultAcc, loan.Token, totalDue)
	if treasuryCut.Sign() > 0 {
		if err := debitAccount(vaultAcc, loan.Token, treasuryCut); err != nil {
			return err
		}
		creditAccount(treasuryAcc, loan.Token, treasuryCut)
	}
	if cashback.Sign() > 0 {
		if err := debitAccount(vaultAcc, loan.Token, cashback); err != nil {
			return err
		}
		creditAccount(borrowerAcc, loan.Token, cashback)
	}

	pool.AvailableLiquidity = new(big.Int).Add(pool.AvailableLiquidity, loan.Principal)
	if err := checkPoolInvariant(pool); err != nil {
		return err
	}
	token := loan.Token
	position.Loans = removeLoanAt(position.Loans, idx)

	if err := e.state.PutAccount(borrower, borrowerAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.treasury, treasuryAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}

	e.emit(newLoanEvent(EventTypeRepay, borrower, token, totalDue, loanID))
	return nil
}

// PayInstallment settles one scheduled payment on a loan: the interest
// accrued since the last payment plus the next principal slice. The payment
// resets the accrual clock, so interest never double-counts elapsed time
// across installments. The loan closes when the final installment clears.
func (e *Engine) PayInstallment(borrower crypto.Address, loanID uint64, amount *big.Int) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()
	if err := validAmount(amount); err != nil {
		return err
	}

	position, err := e.ensurePosition(borrower)
	if err != nil {
		return err
	}
	idx := loanIndexByID(position.Loans, loanID)
	if idx < 0 {
		return ErrNoActiveLoan
	}
	loan := position.Loans[idx]

	pool, err := e.ensurePool(loan.Token)
	if err != nil {
		return err
	}
	utilization := UtilizationPercent(pool)
	netInterest := e.interestModel.AccruedInterest(loan, utilization, e.now())
	cashback, treasuryCut := e.params.interestSplit(netInterest)
	slice := installmentPrincipal(loan)
	due := new(big.Int).Add(slice, netInterest)
	if amount.Cmp(due) < 0 {
		return ErrInsufficientRepayment
	}

	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return err
	}
	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return err
	}
	treasuryAcc, err := e.ensureAccount(e.treasury)
	if err != nil {
		return err
	}

	if err := debitAccount(borrowerAcc, loan.Token, due); err != nil {
		return err
	}
	creditAccount(vaultAcc, loan.Token, due)
	if treasuryCut.Sign() > 0 {
		if err := debitAccount(vaultAcc, loan.Token, treasuryCut); err != nil {
			return err
		}
		creditAccount(treasuryAcc, loan.Token, treasuryCut)
	}
	if cashback.Sign() > 0 {
		if err := debitAccount(vaultAcc, loan.Token, cashback); err != nil {
			return err
		}
		creditAccount(borrowerAcc, loan.Token, cashback)
	}

	pool.AvailableLiquidity = new(big.Int).Add(pool.AvailableLiquidity, slice)
	if err := checkPoolInvariant(pool); err != nil {
		return err
	}

	loan.Principal = new(big.Int).Sub(loan.Principal, slice)
	loan.RemainingPayments--
	loan.LastPaymentTime = e.now()
	token := loan.Token
	if loan.RemainingPayments == 0 || loan.Principal.Sign() == 0 {
		position.Loans = removeLoanAt(position.Loans, idx)
	}

	if err := e.state.PutAccount(borrower, borrowerAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.treasury, treasuryAcc); err != nil {
		return err
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}
	if err := e.state.PutPool(pool); err != nil {
		return err
	}

	e.emit(newLoanEvent(EventTypeInstallment, borrower, token, due, loanID))
	return nil
}

// Liquidate seizes collateral from an underwater position. The liquidator
// funds the full principal of every open loan in its own denomination; in
// exchange the engine transfers collateral worth the repaid debt plus the
// liquidation bonus, split pro-rata across the borrower's collateral tokens
// and capped at what the position holds.
func (e *Engine) Liquidate(liquidator, borrower crypto.Address) error {
	release, err := e.begin()
	if err != nil {
		return err
	}
	defer release()

	position, err := e.ensurePosition(borrower)
	if err != nil {
		return err
	}

	pass := newValuationPass(e.oracle)
	collateralValue, err := pass.valueCollateral(position, e.registry.CollateralTokens())
	if err != nil {
		return err
	}
	totalDebt, err := pass.valueLoans(position.Loans)
	if err != nil {
		return err
	}
	if !e.params.liquidatable(collateralValue, totalDebt) {
		return ErrNotLiquidatable
	}

	target := e.params.seizureTarget(totalDebt, collateralValue)
	plan, err := planSeizure(pass, position, e.registry.CollateralTokens(), collateralValue, target)
	if err != nil {
		return err
	}

	// Aggregate principal owed per token, preserving loan order.
	repayTokens := make([]string, 0, len(position.Loans))
	repayByToken := make(map[string]*big.Int)
	for _, loan := range position.Loans {
		if loan == nil || loan.Principal == nil || loan.Principal.Sign() == 0 {
			continue
		}
		if _, ok := repayByToken[loan.Token]; !ok {
			repayTokens = append(repayTokens, loan.Token)
			repayByToken[loan.Token] = big.NewInt(0)
		}
		repayByToken[loan.Token] = new(big.Int).Add(repayByToken[loan.Token], loan.Principal)
	}

	liquidatorAcc, err := e.ensureAccount(liquidator)
	if err != nil {
		return err
	}
	for _, token := range repayTokens {
		if liquidatorAcc.Balance(token).Cmp(repayByToken[token]) < 0 {
			return ErrInsufficientBalance
		}
	}

	vaultAcc, err := e.ensureAccount(e.vaultAddress)
	if err != nil {
		return err
	}
	reserveAcc, err := e.ensureAccount(e.reserveVault)
	if err != nil {
		return err
	}
	pools := make([]*Pool, 0, len(repayTokens))
	for _, token := range repayTokens {
		pool, err := e.ensurePool(token)
		if err != nil {
			return err
		}
		pools = append(pools, pool)
	}

	for i, token := range repayTokens {
		principal := repayByToken[token]
		if err := debitAccount(liquidatorAcc, token, principal); err != nil {
			return err
		}
		creditAccount(vaultAcc, token, principal)
		pools[i].AvailableLiquidity = new(big.Int).Add(pools[i].AvailableLiquidity, principal)
		if err := checkPoolInvariant(pools[i]); err != nil {
			return err
		}
	}

	for _, entry := range plan {
		if err := debitAccount(reserveAcc, entry.token, entry.amount); err != nil {
			return err
		}
		creditAccount(liquidatorAcc, entry.token, entry.amount)
		remaining := new(big.Int).Sub(position.CollateralBalance(entry.token), entry.amount)
		position.SetCollateral(entry.token, remaining)
	}
	position.Loans = nil

	if err := e.state.PutAccount(liquidator, liquidatorAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.vaultAddress, vaultAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.reserveVault, reserveAcc); err != nil {
		return err
	}
	for _, pool := range pools {
		if err := e.state.PutPool(pool); err != nil {
			return err
		}
	}
	if err := e.state.PutPosition(position); err != nil {
		return err
	}

	for _, entry := range plan {
		e.emit(newLiquidationEvent(liquidator, borrower, entry.token, entry.amount))
	}
	return nil
}
