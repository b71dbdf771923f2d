package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

func TestLog(t *testing.T) {
	log := NewLog()
	ctx := context.Background()

	assert.Equal(t, 0, log.Len())
	assert.Equal(t, uint64(0), log.Head())
	assert.Empty(t, log.All())

	require.NoError(t, log.Append(ctx, models.Notification{Sequence: 1, Kind: models.KindTransfer}))
	require.NoError(t, log.Append(ctx, models.Notification{Sequence: 2, Kind: models.KindApproval}))

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, uint64(2), log.Head())

	all := log.All()
	require.Len(t, all, 2)
	assert.Equal(t, models.KindTransfer, all[0].Kind)
	assert.Equal(t, models.KindApproval, all[1].Kind)
}

func TestLogAllReturnsCopy(t *testing.T) {
	log := NewLog()
	require.NoError(t, log.Append(context.Background(), models.Notification{Sequence: 1}))

	all := log.All()
	all[0].Sequence = 99

	assert.Equal(t, uint64(1), log.All()[0].Sequence)
}
