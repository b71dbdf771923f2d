package interfaces

import (
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// LedgerStore holds the authoritative balance and allowance state. Unseen
// accounts and pairs read as zero. Implementations must be safe for
// concurrent use; the ledger layers its own per-account serialization on top.
type LedgerStore interface {
	// Balance returns the balance of an account.
	Balance(addr models.Address) (uint64, error)

	// Allowance returns the remaining amount spender may move on owner's behalf.
	Allowance(owner, spender models.Address) (uint64, error)

	// Balances returns a copy of every nonzero balance, keyed by account.
	Balances() (map[models.Address]uint64, error)

	// Apply writes every entry in the change atomically: after an error no
	// entry of the change is visible.
	Apply(change models.StateChange) error
}
