package interfaces

import (
	"context"

	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// NotificationSink receives committed state-change notifications in commit
// order. Append is called synchronously from the ledger, so implementations
// that do slow I/O should buffer internally.
type NotificationSink interface {
	Append(ctx context.Context, n models.Notification) error
}

// SequencedSink is implemented by sinks that can report the highest sequence
// number they have recorded. The ledger uses it to resume numbering when it
// is constructed over a store that already holds state.
type SequencedSink interface {
	NotificationSink
	LastSequence(ctx context.Context) (uint64, error)
}
