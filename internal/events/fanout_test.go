package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/token-ledger-system/internal/events/memory"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

type failingSink struct {
	err error
}

func (s *failingSink) Append(context.Context, models.Notification) error {
	return s.err
}

func TestFanoutDeliversToAllSinks(t *testing.T) {
	first := memory.NewLog()
	second := memory.NewLog()
	fanout := NewFanout(first, second)

	err := fanout.Append(context.Background(), models.Notification{Sequence: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 1, second.Len())
}

func TestFanoutStopsOnFirstError(t *testing.T) {
	boom := errors.New("broker down")
	first := memory.NewLog()
	last := memory.NewLog()
	fanout := NewFanout(first, &failingSink{err: boom}, last)

	err := fanout.Append(context.Background(), models.Notification{Sequence: 1})
	assert.ErrorIs(t, err, boom)

	// Sinks before the failure saw the notification, ones after did not.
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, 0, last.Len())
}
