package lending

import (
	"math/big"

	"lendvault/crypto"
)

// Term is the enumerated duration class of a loan, expressed in days.
type Term uint32

const (
	TermSevenDays  Term = 7
	TermThirtyDays Term = 30
	TermNinetyDays Term = 90
	TermHalfYear   Term = 180
	TermFullYear   Term = 360
)

// Loan captures a single outstanding borrow. Interest is never folded into
// Principal; it is recomputed on demand from LastPaymentTime, so every
// settlement that charges interest must reset that timestamp.
type Loan struct {
	// ID is the globally unique, monotonically increasing loan identifier.
	// It is the only durable handle: positions inside the owning collection
	// are reshuffled on removal.
	ID uint64
	// Borrower owns the loan.
	Borrower crypto.Address
	// Token is the principal denomination.
	Token string
	// Principal is the outstanding borrowed amount, positive while open.
	Principal *big.Int
	// Term is the duration class the loan was issued under.
	Term Term
	// RemainingPayments counts the installments left on the schedule.
	RemainingPayments uint32
	// StartTime is the unix timestamp of issuance.
	StartTime uint64
	// LastPaymentTime is the unix timestamp interest accrues from.
	LastPaymentTime uint64
}

// Clone returns a deep copy of the loan.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	clone := *l
	if l.Principal != nil {
		clone.Principal = new(big.Int).Set(l.Principal)
	}
	return &clone
}

// Pool tracks the liquidity counters for a single lending token.
// AvailableLiquidity never exceeds GrossLiquidity: supply and withdraw move
// both counters, borrow and repay move only the available side.
type Pool struct {
	Token              string
	GrossLiquidity     *big.Int
	AvailableLiquidity *big.Int
}

// Clone returns a deep copy of the pool.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	clone := &Pool{Token: p.Token}
	if p.GrossLiquidity != nil {
		clone.GrossLiquidity = new(big.Int).Set(p.GrossLiquidity)
	}
	if p.AvailableLiquidity != nil {
		clone.AvailableLiquidity = new(big.Int).Set(p.AvailableLiquidity)
	}
	return clone
}

// Position maintains the lending state for an individual participant: the
// liquidity supplied per token, the collateral pledged per token and the
// open loans the account owes.
type Position struct {
	Address    crypto.Address
	Supplied   map[string]*big.Int
	Collateral map[string]*big.Int
	Loans      []*Loan
}

// SuppliedBalance returns the supplied liquidity for the token, treating
// missing entries as zero.
func (p *Position) SuppliedBalance(token string) *big.Int {
	if p == nil || p.Supplied == nil {
		return big.NewInt(0)
	}
	if bal, ok := p.Supplied[token]; ok && bal != nil {
		return bal
	}
	return big.NewInt(0)
}

// SetSupplied records the supplied liquidity for the token.
func (p *Position) SetSupplied(token string, amount *big.Int) {
	if p == nil {
		return
	}
	if p.Supplied == nil {
		p.Supplied = make(map[string]*big.Int)
	}
	p.Supplied[token] = new(big.Int).Set(amount)
}

// CollateralBalance returns the pledged amount for the token, treating
// missing entries as zero.
func (p *Position) CollateralBalance(token string) *big.Int {
	if p == nil || p.Collateral == nil {
		return big.NewInt(0)
	}
	if bal, ok := p.Collateral[token]; ok && bal != nil {
		return bal
	}
	return big.NewInt(0)
}

// SetCollateral records the pledged amount for the token.
func (p *Position) SetCollateral(token string, amount *big.Int) {
	if p == nil {
		return
	}
	if p.Collateral == nil {
		p.Collateral = make(map[string]*big.Int)
	}
	p.Collateral[token] = new(big.Int).Set(amount)
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := &Position{Address: p.Address}
	if p.Supplied != nil {
		clone.Supplied = make(map[string]*big.Int, len(p.Supplied))
		for token, bal := range p.Supplied {
			if bal == nil {
				continue
			}
			clone.Supplied[token] = new(big.Int).Set(bal)
		}
	}
	if p.Collateral != nil {
		clone.Collateral = make(map[string]*big.Int, len(p.Collateral))
		for token, bal := range p.Collateral {
			if bal == nil {
				continue
			}
			clone.Collateral[token] = new(big.Int).Set(bal)
		}
	}
	if p.Loans != nil {
		clone.Loans = make([]*Loan, 0, len(p.Loans))
		for _, loan := range p.Loans {
			clone.Loans = append(clone.Loans, loan.Clone())
		}
	}
	return clone
}
