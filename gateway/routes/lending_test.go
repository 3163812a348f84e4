package routes

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"lendvault/core/types"
	"lendvault/crypto"
	"lendvault/native/lending"
	"lendvault/storage/memory"
)

type gatewayFixture struct {
	handler http.Handler
	store   *memory.Store
	oracle  *lending.ManualOracle
}

func testAddr(fill byte) crypto.Address {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	return crypto.NewAddress(crypto.AccountPrefix, raw)
}

func moduleAddr(fill byte) crypto.Address {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	return crypto.NewAddress(crypto.ModulePrefix, raw)
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()
	store := memory.NewStore()
	oracle := lending.NewManualOracle()
	engine := lending.NewEngine(moduleAddr(0x01), moduleAddr(0x02), moduleAddr(0x03), lending.DefaultRiskParameters())
	engine.SetState(store)
	engine.SetOracle(oracle)
	require.NoError(t, engine.AddLendingToken("ZUSD"))
	require.NoError(t, engine.AddCollateralToken("NVC"))
	oracle.SetPrice("ZUSD", big.NewInt(1))
	oracle.SetPrice("NVC", big.NewInt(10))

	handler, err := New(Config{Engine: engine, Oracle: oracle})
	require.NoError(t, err)
	return &gatewayFixture{handler: handler, store: store, oracle: oracle}
}

func (fx *gatewayFixture) fund(t *testing.T, addr crypto.Address, token string, amount int64) {
	t.Helper()
	account := &types.Account{}
	account.SetBalance(token, big.NewInt(amount))
	require.NoError(t, fx.store.PutAccount(addr, account))
}

func (fx *gatewayFixture) post(t *testing.T, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func (fx *gatewayFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func TestGatewaySupplyBorrowFlow(t *testing.T) {
	fx := newGatewayFixture(t)
	supplier := testAddr(0x10)
	borrower := testAddr(0x20)
	fx.fund(t, supplier, "ZUSD", 1_000)
	fx.fund(t, borrower, "NVC", 100)

	rec := fx.post(t, "/v1/supply", amountRequest{Address: supplier.String(), Token: "ZUSD", Amount: "1000"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.post(t, "/v1/collateral/deposit", amountRequest{Address: borrower.String(), Token: "NVC", Amount: "100"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.post(t, "/v1/borrow", borrowRequest{Address: borrower.String(), Token: "ZUSD", Amount: "750", TermDays: 90})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var borrowed borrowResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &borrowed))
	require.Equal(t, uint64(1), borrowed.LoanID)

	rec = fx.get(t, "/v1/pools/ZUSD")
	require.Equal(t, http.StatusOK, rec.Code)
	var pool lending.PoolView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pool))
	require.Equal(t, uint64(75), pool.UtilizationPercent)
	require.Equal(t, uint64(14), pool.APRPercent)

	rec = fx.get(t, "/v1/positions/"+borrower.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var position lending.PositionView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &position))
	require.Len(t, position.Loans, 1)

	rec = fx.post(t, "/v1/repay", loanPaymentRequest{Address: borrower.String(), LoanID: borrowed.LoanID, Amount: "750"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGatewayErrorMapping(t *testing.T) {
	fx := newGatewayFixture(t)
	borrower := testAddr(0x20)

	rec := fx.post(t, "/v1/supply", amountRequest{Address: "not-bech32", Token: "ZUSD", Amount: "10"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.post(t, "/v1/supply", amountRequest{Address: borrower.String(), Token: "ZUSD", Amount: "ten"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.post(t, "/v1/supply", amountRequest{Address: borrower.String(), Token: "DOGE", Amount: "10"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.post(t, "/v1/repay", loanPaymentRequest{Address: borrower.String(), LoanID: 9, Amount: "10"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	fx.fund(t, borrower, "ZUSD", 5)
	rec = fx.post(t, "/v1/supply", amountRequest{Address: borrower.String(), Token: "ZUSD", Amount: "10"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = fx.post(t, "/v1/liquidate", liquidateRequest{Liquidator: testAddr(0x30).String(), Borrower: borrower.String()})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestGatewayAdminEndpoints(t *testing.T) {
	fx := newGatewayFixture(t)

	rec := fx.post(t, "/v1/admin/tokens", tokenRequest{Token: "GOLD", Kind: "collateral"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.post(t, "/v1/admin/tokens", tokenRequest{Token: "GOLD", Kind: "collateral"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.post(t, "/v1/admin/tokens", tokenRequest{Token: "GOLD", Kind: "stable"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = fx.post(t, "/v1/admin/prices", priceRequest{Token: "GOLD", Price: "40"})
	require.Equal(t, http.StatusOK, rec.Code)
	price, err := fx.oracle.GetPrice("GOLD")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(40), price)
}

func TestGatewayHealthz(t *testing.T) {
	fx := newGatewayFixture(t)
	rec := fx.get(t, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestGatewayPriceOutageIs503(t *testing.T) {
	fx := newGatewayFixture(t)
	borrower := testAddr(0x20)
	fx.oracle.SetPrice("NVC", nil)

	rec := fx.get(t, "/v1/risk/"+borrower.String())
	require.Equal(t, http.StatusOK, rec.Code, "empty position values to zero without the oracle")

	fx.fund(t, borrower, "NVC", 100)
	rec = fx.post(t, "/v1/collateral/deposit", amountRequest{Address: borrower.String(), Token: "NVC", Amount: "100"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = fx.get(t, "/v1/risk/"+borrower.String())
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
