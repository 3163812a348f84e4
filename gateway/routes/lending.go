package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lendvault/crypto"
	"lendvault/native/common"
	"lendvault/native/lending"
)

const requestLimit = 1 << 20 // 1 MiB

// lendingRoutes wires HTTP handlers to the lending engine.
type lendingRoutes struct {
	engine *lending.Engine
	oracle *lending.ManualOracle
}

func newLendingRoutes(engine *lending.Engine, oracle *lending.ManualOracle) *lendingRoutes {
	return &lendingRoutes{engine: engine, oracle: oracle}
}

func (lr *lendingRoutes) mount(r chi.Router) {
	r.Post("/supply", lr.supply)
	r.Post("/withdraw", lr.withdraw)
	r.Post("/collateral/deposit", lr.depositCollateral)
	r.Post("/collateral/withdraw", lr.withdrawCollateral)
	r.Post("/borrow", lr.borrow)
	r.Post("/repay", lr.repay)
	r.Post("/installment", lr.payInstallment)
	r.Post("/liquidate", lr.liquidate)
	r.Get("/pools/{token}", lr.poolSnapshot)
	r.Get("/positions/{address}", lr.positionSnapshot)
	r.Get("/risk/{address}", lr.riskSummary)
}

func (lr *lendingRoutes) mountAdmin(r chi.Router) {
	r.Post("/prices", lr.setPrice)
	r.Post("/tokens", lr.registerToken)
}

type amountRequest struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}

type borrowRequest struct {
	Address  string `json:"address"`
	Token    string `json:"token"`
	Amount   string `json:"amount"`
	TermDays uint32 `json:"termDays"`
}

type loanPaymentRequest struct {
	Address string `json:"address"`
	LoanID  uint64 `json:"loanId"`
	Amount  string `json:"amount"`
}

type liquidateRequest struct {
	Liquidator string `json:"liquidator"`
	Borrower   string `json:"borrower"`
}

type priceRequest struct {
	Token string `json:"token"`
	Price string `json:"price"`
}

type tokenRequest struct {
	Token string `json:"token"`
	Kind  string `json:"kind"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type borrowResponse struct {
	Status string `json:"status"`
	LoanID uint64 `json:"loanId"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, requestLimit)
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseAddress(raw string) (crypto.Address, error) {
	addr, err := crypto.DecodeAddress(strings.TrimSpace(raw))
	if err != nil {
		return crypto.Address{}, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	return addr, nil
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// writeEngineError maps engine failures onto HTTP statuses: malformed input
// is a 400, a missing loan is a 404, state-dependent rejections are 409 and
// collaborator outages are 503.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lending.ErrInvalidAmount),
		errors.Is(err, lending.ErrInvalidTerm),
		errors.Is(err, lending.ErrUnsupportedToken),
		errors.Is(err, lending.ErrAlreadyRegistered):
		status = http.StatusBadRequest
	case errors.Is(err, lending.ErrNoActiveLoan):
		status = http.StatusNotFound
	case errors.Is(err, lending.ErrInsufficientBalance),
		errors.Is(err, lending.ErrInsufficientLiquidity),
		errors.Is(err, lending.ErrExceedsBorrowLimit),
		errors.Is(err, lending.ErrInsufficientRepayment),
		errors.Is(err, lending.ErrNotLiquidatable),
		errors.Is(err, lending.ErrHealthCheckFailed):
		status = http.StatusConflict
	case errors.Is(err, lending.ErrPriceUnavailable),
		errors.Is(err, common.ErrReentrantCall),
		errors.Is(err, common.ErrModulePaused):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (lr *lendingRoutes) amountOp(w http.ResponseWriter, r *http.Request, op func(crypto.Address, string, *big.Int) error) {
	var req amountRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := op(addr, req.Token, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (lr *lendingRoutes) supply(w http.ResponseWriter, r *http.Request) {
	lr.amountOp(w, r, lr.engine.Supply)
}

func (lr *lendingRoutes) withdraw(w http.ResponseWriter, r *http.Request) {
	lr.amountOp(w, r, lr.engine.Withdraw)
}

func (lr *lendingRoutes) depositCollateral(w http.ResponseWriter, r *http.Request) {
	lr.amountOp(w, r, lr.engine.DepositCollateral)
}

func (lr *lendingRoutes) withdrawCollateral(w http.ResponseWriter, r *http.Request) {
	lr.amountOp(w, r, lr.engine.WithdrawCollateral)
}

func (lr *lendingRoutes) borrow(w http.ResponseWriter, r *http.Request) {
	var req borrowRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	loanID, err := lr.engine.Borrow(addr, req.Token, amount, lending.Term(req.TermDays))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowResponse{Status: "ok", LoanID: loanID})
}

func (lr *lendingRoutes) loanPaymentOp(w http.ResponseWriter, r *http.Request, op func(crypto.Address, uint64, *big.Int) error) {
	var req loanPaymentRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	addr, err := parseAddress(req.Address)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := op(addr, req.LoanID, amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (lr *lendingRoutes) repay(w http.ResponseWriter, r *http.Request) {
	lr.loanPaymentOp(w, r, lr.engine.Repay)
}

func (lr *lendingRoutes) payInstallment(w http.ResponseWriter, r *http.Request) {
	lr.loanPaymentOp(w, r, lr.engine.PayInstallment)
}

func (lr *lendingRoutes) liquidate(w http.ResponseWriter, r *http.Request) {
	var req liquidateRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	liquidator, err := parseAddress(req.Liquidator)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	borrower, err := parseAddress(req.Borrower)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := lr.engine.Liquidate(liquidator, borrower); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (lr *lendingRoutes) poolSnapshot(w http.ResponseWriter, r *http.Request) {
	view, err := lr.engine.PoolSnapshot(chi.URLParam(r, "token"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (lr *lendingRoutes) positionSnapshot(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	view, err := lr.engine.PositionSnapshot(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (lr *lendingRoutes) riskSummary(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddress(chi.URLParam(r, "address"))
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	view, err := lr.engine.RiskSummary(addr)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (lr *lendingRoutes) setPrice(w http.ResponseWriter, r *http.Request) {
	if lr.oracle == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "price overrides not supported"})
		return
	}
	var req priceRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	lr.oracle.SetPrice(req.Token, price)
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (lr *lendingRoutes) registerToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	var err error
	switch strings.ToLower(strings.TrimSpace(req.Kind)) {
	case "collateral":
		err = lr.engine.AddCollateralToken(req.Token)
	case "lending":
		err = lr.engine.AddLendingToken(req.Token)
	default:
		writeBadRequest(w, fmt.Errorf("unknown token kind %q", req.Kind))
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
