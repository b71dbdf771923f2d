package models

import "time"

// NotificationKind classifies a state-change notification.
type NotificationKind string

const (
	// KindTransfer covers direct transfers, delegated transfers, and the
	// creation notification (a transfer from the zero address).
	KindTransfer NotificationKind = "transfer"
	// KindApproval covers allowance grants.
	KindApproval NotificationKind = "approval"
)

// Notification is a single append-only record describing a committed state
// transition. Sequence numbers start at 1 and match commit order.
type Notification struct {
	ID         string           `json:"id"`
	Sequence   uint64           `json:"sequence"`
	Kind       NotificationKind `json:"kind"`
	From       Address          `json:"from"`
	To         Address          `json:"to"`
	Owner      Address          `json:"owner"`
	Spender    Address          `json:"spender"`
	Amount     uint64           `json:"amount"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// StateChange is an atomic batch of balance and allowance writes. A store
// applies all of it or none of it.
type StateChange struct {
	Balances   map[Address]uint64
	Allowances map[AllowancePair]uint64
}
