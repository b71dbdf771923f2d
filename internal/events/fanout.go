package events

import (
	"context"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Fanout delivers each notification to several sinks in order. The first
// failing sink aborts the remaining deliveries and its error is returned.
type Fanout struct {
	sinks []interfaces.NotificationSink
}

// NewFanout composes the given sinks into one.
func NewFanout(sinks ...interfaces.NotificationSink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Append forwards the notification to every sink.
func (f *Fanout) Append(ctx context.Context, n models.Notification) error {
	for _, sink := range f.sinks {
		if err := sink.Append(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// LastSequence returns the highest sequence any composed sink has recorded.
// Sinks that cannot report one (Kafka) are skipped.
func (f *Fanout) LastSequence(ctx context.Context) (uint64, error) {
	var head uint64
	for _, sink := range f.sinks {
		sequenced, ok := sink.(interfaces.SequencedSink)
		if !ok {
			continue
		}
		seq, err := sequenced.LastSequence(ctx)
		if err != nil {
			return 0, err
		}
		if seq > head {
			head = seq
		}
	}
	return head, nil
}

// Compile-time check: Fanout implements the SequencedSink interface.
var _ interfaces.SequencedSink = (*Fanout)(nil)
