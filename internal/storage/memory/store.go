package memory

import (
	"sync"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Store is the in-memory implementation of interfaces.LedgerStore. It is the
// default authoritative backend and is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	balances   map[models.Address]uint64
	allowances map[models.AllowancePair]uint64
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		balances:   make(map[models.Address]uint64),
		allowances: make(map[models.AllowancePair]uint64),
	}
}

// Balance returns the balance of an account; unseen accounts hold zero.
func (s *Store) Balance(addr models.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[addr], nil
}

// Allowance returns the remaining allowance of a pair; unseen pairs hold zero.
func (s *Store) Allowance(owner, spender models.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowances[models.AllowancePair{Owner: owner, Spender: spender}], nil
}

// Balances returns a copy of every nonzero balance so callers cannot mutate
// internal state.
func (s *Store) Balances() (map[models.Address]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[models.Address]uint64, len(s.balances))
	for addr, bal := range s.balances {
		if bal != 0 {
			copied[addr] = bal
		}
	}
	return copied, nil
}

// Apply writes every entry of the change under one lock section.
func (s *Store) Apply(change models.StateChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for addr, bal := range change.Balances {
		if bal == 0 {
			delete(s.balances, addr)
			continue
		}
		s.balances[addr] = bal
	}
	for pair, amount := range change.Allowances {
		if amount == 0 {
			delete(s.allowances, pair)
			continue
		}
		s.allowances[pair] = amount
	}
	return nil
}

// Compile-time check: Store implements the LedgerStore interface.
var _ interfaces.LedgerStore = (*Store)(nil)
