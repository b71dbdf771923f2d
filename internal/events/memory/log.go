package memory

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Log is the in-process append-only notification log. The ledger appends to
// it in commit order; hosts read it back for the events API and tests.
type Log struct {
	mu            sync.Mutex
	notifications []models.Notification
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{notifications: make([]models.Notification, 0)}
}

// Append records a notification. It never fails.
func (l *Log) Append(_ context.Context, n models.Notification) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.notifications = append(l.notifications, n)
	return nil
}

// All returns a copy of every recorded notification in append order.
func (l *Log) All() []models.Notification {
	l.mu.Lock()
	defer l.mu.Unlock()

	copied := make([]models.Notification, len(l.notifications))
	copy(copied, l.notifications)
	return copied
}

// Len returns the number of recorded notifications.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.notifications)
}

// Head returns the sequence number of the latest notification, or zero when
// the log is empty.
func (l *Log) Head() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.notifications) == 0 {
		return 0
	}
	return l.notifications[len(l.notifications)-1].Sequence
}

// LastSequence returns the sequence number of the latest notification.
func (l *Log) LastSequence(context.Context) (uint64, error) {
	return l.Head(), nil
}

// Compile-time check: Log implements the SequencedSink interface.
var _ interfaces.SequencedSink = (*Log)(nil)
