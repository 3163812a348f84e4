package types

import "math/big"

// Account tracks the spendable token balances held by an address. Custody of
// the underlying assets lives with the transfer collaborator; the account
// record is the ledger view the lending core settles against.
type Account struct {
	Balances map[string]*big.Int `json:"balances"`
}

// Balance returns the recorded balance for the given token symbol, treating
// missing entries as zero.
func (a *Account) Balance(token string) *big.Int {
	if a == nil || a.Balances == nil {
		return big.NewInt(0)
	}
	if bal, ok := a.Balances[token]; ok && bal != nil {
		return bal
	}
	return big.NewInt(0)
}

// SetBalance records the balance for the given token symbol.
func (a *Account) SetBalance(token string, amount *big.Int) {
	if a == nil {
		return
	}
	if a.Balances == nil {
		a.Balances = make(map[string]*big.Int)
	}
	a.Balances[token] = new(big.Int).Set(amount)
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := &Account{Balances: make(map[string]*big.Int, len(a.Balances))}
	for token, bal := range a.Balances {
		if bal == nil {
			continue
		}
		clone.Balances[token] = new(big.Int).Set(bal)
	}
	return clone
}
