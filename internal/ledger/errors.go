package ledger

import "errors"

// Every error below is a rejection of an attempted mutation. Ledger state is
// unchanged whenever one of them is returned.
var (
	// ErrInvalidHolder rejects construction with the reserved zero address
	// as the initial holder.
	ErrInvalidHolder = errors.New("initial holder must not be the zero address")

	// ErrInvalidRecipient rejects transfers to the reserved zero address.
	ErrInvalidRecipient = errors.New("recipient must not be the zero address")

	// ErrInvalidSender rejects delegated transfers from the reserved zero address.
	ErrInvalidSender = errors.New("sender must not be the zero address")

	// ErrInvalidSpender rejects approvals of the reserved zero address.
	ErrInvalidSpender = errors.New("spender must not be the zero address")

	// ErrInsufficientBalance rejects transfers exceeding the sender's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance rejects delegated transfers exceeding the
	// spender's remaining allowance.
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

var (
	// ErrSupplyMismatch rejects construction over a store whose persisted
	// balances do not sum to the configured supply.
	ErrSupplyMismatch = errors.New("stored balances do not sum to the configured supply")

	// ErrNotificationFailed reports that a state change committed but its
	// notification could not be delivered. Unlike the rejections above, the
	// mutation is NOT rolled back; only the delivery failed.
	ErrNotificationFailed = errors.New("notification delivery failed")
)
