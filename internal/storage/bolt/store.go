package bolt

import (
	"encoding/binary"
	"fmt"

	"github.com/boltdb/bolt"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

const (
	balancesBucket   = "balances"
	allowancesBucket = "allowances"
)

// Store keeps the ledger state in a BoltDB file so the snapshot survives
// process restarts. Keys are raw addresses (owner‖spender for allowances),
// values are big-endian uint64 amounts. Semantics match the memory store:
// unseen keys read zero and Apply is atomic (one bolt transaction).
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and its buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{balancesBucket, allowancesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Balance returns the balance of an account; unseen accounts hold zero.
func (s *Store) Balance(addr models.Address) (uint64, error) {
	var bal uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		bal = getAmount(tx.Bucket([]byte(balancesBucket)), addr[:])
		return nil
	})
	return bal, err
}

// Allowance returns the remaining allowance of a pair; unseen pairs hold zero.
func (s *Store) Allowance(owner, spender models.Address) (uint64, error) {
	var amount uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		amount = getAmount(tx.Bucket([]byte(allowancesBucket)), allowanceKey(owner, spender))
		return nil
	})
	return amount, err
}

// Balances returns every stored nonzero balance.
func (s *Store) Balances() (map[models.Address]uint64, error) {
	balances := make(map[models.Address]uint64)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(balancesBucket)).ForEach(func(k, v []byte) error {
			if len(k) != models.AddressLength || len(v) != 8 {
				return fmt.Errorf("corrupt balance record, key %x", k)
			}
			var addr models.Address
			copy(addr[:], k)
			balances[addr] = binary.BigEndian.Uint64(v)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// Apply writes every entry of the change in one transaction.
func (s *Store) Apply(change models.StateChange) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		balances := tx.Bucket([]byte(balancesBucket))
		for addr, bal := range change.Balances {
			if err := putAmount(balances, addr[:], bal); err != nil {
				return err
			}
		}

		allowances := tx.Bucket([]byte(allowancesBucket))
		for pair, amount := range change.Allowances {
			if err := putAmount(allowances, allowanceKey(pair.Owner, pair.Spender), amount); err != nil {
				return err
			}
		}
		return nil
	})
}

func allowanceKey(owner, spender models.Address) []byte {
	key := make([]byte, 0, models.AddressLength*2)
	key = append(key, owner[:]...)
	key = append(key, spender[:]...)
	return key
}

func getAmount(b *bolt.Bucket, key []byte) uint64 {
	raw := b.Get(key)
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

func putAmount(b *bolt.Bucket, key []byte, amount uint64) error {
	if amount == 0 {
		return b.Delete(key)
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], amount)
	return b.Put(key, raw[:])
}

// Compile-time check: Store implements the LedgerStore interface.
var _ interfaces.LedgerStore = (*Store)(nil)
