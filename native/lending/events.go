package lending

import (
	"math/big"
	"strconv"

	"lendvault/core/types"
	"lendvault/crypto"
)

const (
	EventTypeSupply              = "lending.supply"
	EventTypeWithdraw            = "lending.withdraw"
	EventTypeCollateralDeposited = "lending.collateral.deposited"
	EventTypeCollateralWithdrawn = "lending.collateral.withdrawn"
	EventTypeBorrow              = "lending.borrow"
	EventTypeRepay               = "lending.repay"
	EventTypeInstallment         = "lending.installment"
	EventTypeLiquidate           = "lending.liquidate"
)

// protocolEvent adapts the canonical payload onto the events.Emitter
// interface.
type protocolEvent struct {
	evt *types.Event
}

// EventType implements events.Event.
func (p protocolEvent) EventType() string {
	if p.evt == nil {
		return ""
	}
	return p.evt.Type
}

// Attributes exposes the structured payload for indexers and metrics.
func (p protocolEvent) Attributes() map[string]string {
	if p.evt == nil {
		return nil
	}
	return p.evt.Attributes
}

func newAmountEvent(eventType string, actor crypto.Address, token string, amount *big.Int) *types.Event {
	attrs := map[string]string{
		"actor": actor.String(),
		"token": normalizeToken(token),
	}
	if amount != nil {
		attrs["amount"] = amount.String()
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

func newLoanEvent(eventType string, actor crypto.Address, token string, amount *big.Int, loanID uint64) *types.Event {
	evt := newAmountEvent(eventType, actor, token, amount)
	evt.Attributes["loanId"] = strconv.FormatUint(loanID, 10)
	return evt
}

func newLiquidationEvent(liquidator, borrower crypto.Address, token string, amount *big.Int) *types.Event {
	evt := newAmountEvent(EventTypeLiquidate, liquidator, token, amount)
	evt.Attributes["borrower"] = borrower.String()
	return evt
}
