package postgres

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Store persists the notification log in Postgres. Expected schema:
//
//	CREATE TABLE notifications (
//	    id          TEXT PRIMARY KEY,
//	    sequence    BIGINT NOT NULL UNIQUE,
//	    kind        TEXT NOT NULL,
//	    from_addr   TEXT NOT NULL,
//	    to_addr     TEXT NOT NULL,
//	    owner_addr  TEXT NOT NULL,
//	    spender_addr TEXT NOT NULL,
//	    amount      NUMERIC NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL
//	);
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append inserts the notification.
func (s *Store) Append(ctx context.Context, n models.Notification) error {
	const query = `INSERT INTO notifications
		(id, sequence, kind, from_addr, to_addr, owner_addr, spender_addr, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// database/sql has no uint64 support, so the amount travels as a string.
	_, err := s.db.ExecContext(ctx, query,
		n.ID, int64(n.Sequence), string(n.Kind),
		n.From.String(), n.To.String(), n.Owner.String(), n.Spender.String(),
		strconv.FormatUint(n.Amount, 10), n.OccurredAt,
	)
	return err
}

// LastSequence returns the highest persisted sequence number, or zero when
// the table is empty.
func (s *Store) LastSequence(ctx context.Context) (uint64, error) {
	const query = `SELECT COALESCE(MAX(sequence), 0) FROM notifications`

	var sequence int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&sequence); err != nil {
		return 0, err
	}
	return uint64(sequence), nil
}

// ListNotifications returns the persisted log in sequence order.
func (s *Store) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	const query = `SELECT id, sequence, kind, from_addr, to_addr, owner_addr, spender_addr, amount, occurred_at
		FROM notifications ORDER BY sequence`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n                        models.Notification
			sequence                 int64
			kind, amount             string
			from, to, owner, spender string
		)
		err := rows.Scan(&n.ID, &sequence, &kind, &from, &to, &owner, &spender, &amount, &n.OccurredAt)
		if err != nil {
			return nil, err
		}

		n.Sequence = uint64(sequence)
		n.Kind = models.NotificationKind(kind)
		if n.Amount, err = strconv.ParseUint(amount, 10, 64); err != nil {
			return nil, err
		}
		if n.From, err = models.ParseAddress(from); err != nil {
			return nil, err
		}
		if n.To, err = models.ParseAddress(to); err != nil {
			return nil, err
		}
		if n.Owner, err = models.ParseAddress(owner); err != nil {
			return nil, err
		}
		if n.Spender, err = models.ParseAddress(spender); err != nil {
			return nil, err
		}

		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// Compile-time check: Store implements the SequencedSink interface.
var _ interfaces.SequencedSink = (*Store)(nil)
