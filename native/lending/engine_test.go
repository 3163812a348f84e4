package lending

import (
	"math/big"
	"testing"

	"lendvault/core/events"
	"lendvault/core/types"
	"lendvault/crypto"
)

type mockEngineState struct {
	pools     map[string]*Pool
	positions map[string]*Position
	accounts  map[string]*types.Account
	loanSeq   uint64
}

func newMockEngineState() *mockEngineState {
	return &mockEngineState{
		pools:     make(map[string]*Pool),
		positions: make(map[string]*Position),
		accounts:  make(map[string]*types.Account),
	}
}

func (m *mockEngineState) GetPool(token string) (*Pool, error) {
	return m.pools[token].Clone(), nil
}

func (m *mockEngineState) PutPool(pool *Pool) error {
	m.pools[pool.Token] = pool.Clone()
	return nil
}

func (m *mockEngineState) GetPosition(addr crypto.Address) (*Position, error) {
	return m.positions[addr.String()].Clone(), nil
}

func (m *mockEngineState) PutPosition(position *Position) error {
	m.positions[position.Address.String()] = position.Clone()
	return nil
}

func (m *mockEngineState) GetAccount(addr crypto.Address) (*types.Account, error) {
	return m.accounts[addr.String()].Clone(), nil
}

func (m *mockEngineState) PutAccount(addr crypto.Address, account *types.Account) error {
	m.accounts[addr.String()] = account.Clone()
	return nil
}

func (m *mockEngineState) LoanSequence() (uint64, error) { return m.loanSeq, nil }

func (m *mockEngineState) PutLoanSequence(seq uint64) error {
	m.loanSeq = seq
	return nil
}

func (m *mockEngineState) fund(addr crypto.Address, token string, amount int64) {
	acc := m.accounts[addr.String()]
	if acc == nil {
		acc = &types.Account{}
	}
	acc.SetBalance(token, big.NewInt(amount))
	m.accounts[addr.String()] = acc
}

func (m *mockEngineState) balance(addr crypto.Address, token string) *big.Int {
	return m.accounts[addr.String()].Balance(token)
}

func testAddress(prefix crypto.AddressPrefix, fill byte) crypto.Address {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = fill
	}
	return crypto.NewAddress(prefix, raw)
}

type testFixture struct {
	engine   *Engine
	state    *mockEngineState
	oracle   *ManualOracle
	recorder *events.Recorder
	now      uint64
	vault    crypto.Address
	reserve  crypto.Address
	treasury crypto.Address
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	fx := &testFixture{
		state:    newMockEngineState(),
		oracle:   NewManualOracle(),
		recorder: &events.Recorder{},
		now:      1_700_000_000,
		vault:    testAddress(crypto.ModulePrefix, 0x01),
		reserve:  testAddress(crypto.ModulePrefix, 0x02),
		treasury: testAddress(crypto.ModulePrefix, 0x03),
	}
	fx.engine = NewEngine(fx.vault, fx.reserve, fx.treasury, DefaultRiskParameters())
	fx.engine.SetState(fx.state)
	fx.engine.SetOracle(fx.oracle)
	fx.engine.SetEmitter(fx.recorder)
	fx.engine.SetClock(func() uint64 { return fx.now })
	if err := fx.engine.AddLendingToken("ZUSD"); err != nil {
		t.Fatalf("register lending token: %v", err)
	}
	if err := fx.engine.AddCollateralToken("NVC"); err != nil {
		t.Fatalf("register collateral token: %v", err)
	}
	fx.oracle.SetPrice("ZUSD", big.NewInt(1))
	fx.oracle.SetPrice("NVC", big.NewInt(10))
	return fx
}

func (fx *testFixture) advance(seconds uint64) { fx.now += seconds }

func (fx *testFixture) mustSupply(t *testing.T, supplier crypto.Address, token string, amount int64) {
	t.Helper()
	if err := fx.engine.Supply(supplier, token, big.NewInt(amount)); err != nil {
		t.Fatalf("supply: %v", err)
	}
}

func (fx *testFixture) mustDepositCollateral(t *testing.T, user crypto.Address, token string, amount int64) {
	t.Helper()
	if err := fx.engine.DepositCollateral(user, token, big.NewInt(amount)); err != nil {
		t.Fatalf("deposit collateral: %v", err)
	}
}

func (fx *testFixture) mustBorrow(t *testing.T, borrower crypto.Address, token string, amount int64, term Term) uint64 {
	t.Helper()
	loanID, err := fx.engine.Borrow(borrower, token, big.NewInt(amount), term)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	return loanID
}

func (fx *testFixture) lastEvent(t *testing.T) protocolEvent {
	t.Helper()
	captured := fx.recorder.Events()
	if len(captured) == 0 {
		t.Fatalf("expected at least one event")
	}
	evt, ok := captured[len(captured)-1].(protocolEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", captured[len(captured)-1])
	}
	return evt
}
