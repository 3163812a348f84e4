// Package memory provides the in-process state store backing the lending
// engine. All reads hand out deep copies, so callers mutate private working
// sets and nothing becomes visible until it is written back.
package memory

import (
	"sync"

	"lendvault/core/types"
	"lendvault/crypto"
	"lendvault/native/lending"
)

// Store keeps pools, positions, accounts and the loan sequence in memory.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	pools     map[string]*lending.Pool
	positions map[string]*lending.Position
	accounts  map[string]*types.Account
	loanSeq   uint64
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		pools:     make(map[string]*lending.Pool),
		positions: make(map[string]*lending.Position),
		accounts:  make(map[string]*types.Account),
	}
}

// GetPool returns a copy of the pool for the token, or nil when absent.
func (s *Store) GetPool(token string) (*lending.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pools[token].Clone(), nil
}

// PutPool stores a copy of the pool keyed by its token.
func (s *Store) PutPool(pool *lending.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[pool.Token] = pool.Clone()
	return nil
}

// GetPosition returns a copy of the position for the address, or nil when
// absent.
func (s *Store) GetPosition(addr crypto.Address) (*lending.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions[addr.String()].Clone(), nil
}

// PutPosition stores a copy of the position keyed by its address.
func (s *Store) PutPosition(position *lending.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[position.Address.String()] = position.Clone()
	return nil
}

// GetAccount returns a copy of the account for the address, or nil when
// absent.
func (s *Store) GetAccount(addr crypto.Address) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[addr.String()].Clone(), nil
}

// PutAccount stores a copy of the account keyed by the address.
func (s *Store) PutAccount(addr crypto.Address, account *types.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[addr.String()] = account.Clone()
	return nil
}

// LoanSequence returns the last issued loan identifier.
func (s *Store) LoanSequence() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loanSeq, nil
}

// PutLoanSequence advances the loan identifier sequence.
func (s *Store) PutLoanSequence(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loanSeq = seq
	return nil
}
