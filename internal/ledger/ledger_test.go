package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventlog "github.com/sheikh-saqib/token-ledger-system/internal/events/memory"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
	boltstore "github.com/sheikh-saqib/token-ledger-system/internal/storage/bolt"
	"github.com/sheikh-saqib/token-ledger-system/internal/storage/memory"
)

func addr(b byte) models.Address {
	var a models.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func newTestLedger(t *testing.T, supply uint64, holder models.Address) (*TokenLedger, *eventlog.Log) {
	t.Helper()

	log := eventlog.NewLog()
	l, err := New(memory.NewStore(), log, Config{
		Name:          "Test Token",
		Symbol:        "TEST",
		Decimals:      18,
		InitialSupply: supply,
		InitialHolder: holder,
	})
	require.NoError(t, err)
	return l, log
}

func balanceOf(t *testing.T, l *TokenLedger, a models.Address) uint64 {
	t.Helper()
	bal, err := l.BalanceOf(a)
	require.NoError(t, err)
	return bal
}

func allowanceOf(t *testing.T, l *TokenLedger, owner, spender models.Address) uint64 {
	t.Helper()
	allowance, err := l.Allowance(owner, spender)
	require.NoError(t, err)
	return allowance
}

// assertConservation checks that the sum of all balances equals the supply.
func assertConservation(t *testing.T, l *TokenLedger) {
	t.Helper()

	balances, err := l.Balances()
	require.NoError(t, err)

	var sum uint64
	for _, bal := range balances {
		sum += bal
	}
	assert.Equal(t, l.TotalSupply(), sum)
}

func TestNew(t *testing.T) {
	a := addr(0x11)
	l, log := newTestLedger(t, 1_000_000, a)

	assert.Equal(t, "Test Token", l.Name())
	assert.Equal(t, "TEST", l.Symbol())
	assert.Equal(t, uint8(18), l.Decimals())
	assert.Equal(t, uint64(1_000_000), l.TotalSupply())
	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assertConservation(t, l)

	notifications := log.All()
	require.Len(t, notifications, 1)
	assert.Equal(t, uint64(1), notifications[0].Sequence)
	assert.Equal(t, models.KindTransfer, notifications[0].Kind)
	assert.Equal(t, models.ZeroAddress, notifications[0].From)
	assert.Equal(t, a, notifications[0].To)
	assert.Equal(t, uint64(1_000_000), notifications[0].Amount)
	assert.NotEmpty(t, notifications[0].ID)
}

func TestNewRejectsZeroHolder(t *testing.T) {
	_, err := New(memory.NewStore(), eventlog.NewLog(), Config{
		InitialSupply: 100,
		InitialHolder: models.ZeroAddress,
	})
	assert.ErrorIs(t, err, ErrInvalidHolder)
}

func TestTransfer(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Transfer(context.Background(), a, b, 100)
	require.NoError(t, err)

	assert.Equal(t, uint64(999_900), balanceOf(t, l, a))
	assert.Equal(t, uint64(100), balanceOf(t, l, b))
	assertConservation(t, l)

	notifications := log.All()
	require.Len(t, notifications, 2)
	assert.Equal(t, uint64(2), notifications[1].Sequence)
	assert.Equal(t, models.KindTransfer, notifications[1].Kind)
	assert.Equal(t, a, notifications[1].From)
	assert.Equal(t, b, notifications[1].To)
	assert.Equal(t, uint64(100), notifications[1].Amount)
}

func TestTransferInsufficientBalance(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Transfer(context.Background(), a, b, 2_000_000)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assert.Equal(t, uint64(0), balanceOf(t, l, b))
	assert.Equal(t, 1, log.Len())
}

func TestTransferInvalidRecipient(t *testing.T) {
	a := addr(0x11)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Transfer(context.Background(), a, models.ZeroAddress, 100)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assert.Equal(t, 1, log.Len())
}

func TestTransferToSelf(t *testing.T) {
	a := addr(0x11)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Transfer(context.Background(), a, a, 500)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assertConservation(t, l)
	assert.Equal(t, 2, log.Len())

	// Still bounded by the pre-transfer balance.
	err = l.Transfer(context.Background(), a, a, 1_000_001)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransferZeroAmount(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Transfer(context.Background(), a, b, 0)
	require.NoError(t, err)

	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assert.Equal(t, uint64(0), balanceOf(t, l, b))

	notifications := log.All()
	require.Len(t, notifications, 2)
	assert.Equal(t, uint64(0), notifications[1].Amount)
}

func TestTransferOutOfUnseenAccount(t *testing.T) {
	l, _ := newTestLedger(t, 1_000_000, addr(0x11))

	// Unseen accounts hold zero, so only a zero-amount transfer succeeds.
	err := l.Transfer(context.Background(), addr(0x99), addr(0x22), 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = l.Transfer(context.Background(), addr(0x99), addr(0x22), 0)
	assert.NoError(t, err)
}

func TestApprove(t *testing.T) {
	a, c := addr(0x11), addr(0x33)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Approve(context.Background(), a, c, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), allowanceOf(t, l, a, c))

	notifications := log.All()
	require.Len(t, notifications, 2)
	assert.Equal(t, models.KindApproval, notifications[1].Kind)
	assert.Equal(t, a, notifications[1].Owner)
	assert.Equal(t, c, notifications[1].Spender)
	assert.Equal(t, uint64(1000), notifications[1].Amount)

	// Approvals do not move balances.
	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assertConservation(t, l)
}

func TestApproveIsAbsoluteNotAdditive(t *testing.T) {
	a, c := addr(0x11), addr(0x33)
	l, _ := newTestLedger(t, 1_000_000, a)

	require.NoError(t, l.Approve(context.Background(), a, c, 700))
	require.NoError(t, l.Approve(context.Background(), a, c, 42))
	assert.Equal(t, uint64(42), allowanceOf(t, l, a, c))
}

func TestApproveInvalidSpender(t *testing.T) {
	a := addr(0x11)
	l, log := newTestLedger(t, 1_000_000, a)

	err := l.Approve(context.Background(), a, models.ZeroAddress, 1000)
	assert.ErrorIs(t, err, ErrInvalidSpender)
	assert.Equal(t, 1, log.Len())
}

func TestTransferFrom(t *testing.T) {
	a, c, d := addr(0x11), addr(0x33), addr(0x44)
	l, log := newTestLedger(t, 1_000_000, a)

	require.NoError(t, l.Approve(context.Background(), a, c, 1000))
	require.NoError(t, l.TransferFrom(context.Background(), c, a, d, 300))

	assert.Equal(t, uint64(999_700), balanceOf(t, l, a))
	assert.Equal(t, uint64(300), balanceOf(t, l, d))
	assert.Equal(t, uint64(700), allowanceOf(t, l, a, c))
	assertConservation(t, l)

	// The delegated transfer emits a transfer notification, not a fresh approval.
	notifications := log.All()
	require.Len(t, notifications, 3)
	assert.Equal(t, models.KindTransfer, notifications[2].Kind)
	assert.Equal(t, a, notifications[2].From)
	assert.Equal(t, d, notifications[2].To)
	assert.Equal(t, uint64(300), notifications[2].Amount)
}

func TestTransferFromInsufficientAllowance(t *testing.T) {
	a, c, d := addr(0x11), addr(0x33), addr(0x44)
	l, _ := newTestLedger(t, 1_000_000, a)

	require.NoError(t, l.Approve(context.Background(), a, c, 1000))

	err := l.TransferFrom(context.Background(), c, a, d, 2000)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	assert.Equal(t, uint64(1_000_000), balanceOf(t, l, a))
	assert.Equal(t, uint64(0), balanceOf(t, l, d))
	assert.Equal(t, uint64(1000), allowanceOf(t, l, a, c))
}

func TestTransferFromOnlyDecrementsOnePair(t *testing.T) {
	a, b, c, d := addr(0x11), addr(0x22), addr(0x33), addr(0x44)
	l, _ := newTestLedger(t, 1_000_000, a)

	require.NoError(t, l.Approve(context.Background(), a, c, 1000))
	require.NoError(t, l.Approve(context.Background(), a, d, 500))
	require.NoError(t, l.Transfer(context.Background(), a, b, 100))
	require.NoError(t, l.Approve(context.Background(), b, c, 80))

	require.NoError(t, l.TransferFrom(context.Background(), c, a, d, 250))

	assert.Equal(t, uint64(750), allowanceOf(t, l, a, c))
	assert.Equal(t, uint64(500), allowanceOf(t, l, a, d))
	assert.Equal(t, uint64(80), allowanceOf(t, l, b, c))
}

func TestTransferFromPreconditionOrder(t *testing.T) {
	a, c, d := addr(0x11), addr(0x33), addr(0x44)
	l, _ := newTestLedger(t, 100, a)
	ctx := context.Background()

	// Recipient check comes first, even when the sender is invalid too.
	err := l.TransferFrom(ctx, c, models.ZeroAddress, models.ZeroAddress, 10)
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	err = l.TransferFrom(ctx, c, models.ZeroAddress, d, 10)
	assert.ErrorIs(t, err, ErrInvalidSender)

	// Balance check precedes the allowance check: no allowance exists here
	// either, but the balance failure is the one reported.
	err = l.TransferFrom(ctx, c, a, d, 200)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestNotificationOrderMatchesCommits(t *testing.T) {
	a, b, c := addr(0x11), addr(0x22), addr(0x33)
	l, log := newTestLedger(t, 1_000_000, a)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, a, b, 10))
	require.NoError(t, l.Approve(ctx, a, c, 50))
	require.NoError(t, l.TransferFrom(ctx, c, a, b, 25))

	notifications := log.All()
	require.Len(t, notifications, 4)
	for i, n := range notifications {
		assert.Equal(t, uint64(i+1), n.Sequence)
	}
	assert.Equal(t, models.KindTransfer, notifications[0].Kind)
	assert.Equal(t, models.KindTransfer, notifications[1].Kind)
	assert.Equal(t, models.KindApproval, notifications[2].Kind)
	assert.Equal(t, models.KindTransfer, notifications[3].Kind)
}

func TestResumeFromExistingState(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	store := memory.NewStore()
	log := eventlog.NewLog()
	cfg := Config{
		Name:          "Test Token",
		Symbol:        "TEST",
		Decimals:      18,
		InitialSupply: 1_000_000,
		InitialHolder: a,
	}

	l, err := New(store, log, cfg)
	require.NoError(t, err)
	require.NoError(t, l.Transfer(context.Background(), a, b, 100))
	require.Equal(t, 2, log.Len())

	// Constructing again over the same store keeps the balances, seeds
	// nothing, and picks up numbering where the sink left off.
	resumed, err := New(store, log, cfg)
	require.NoError(t, err)

	assert.Equal(t, uint64(999_900), balanceOf(t, resumed, a))
	assert.Equal(t, uint64(100), balanceOf(t, resumed, b))
	assertConservation(t, resumed)
	assert.Equal(t, 2, log.Len())

	require.NoError(t, resumed.Transfer(context.Background(), a, b, 1))
	assert.Equal(t, uint64(3), log.Head())
}

func TestRestartOnBoltKeepsConservation(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	path := filepath.Join(t.TempDir(), "ledger.db")
	cfg := Config{
		Name:          "Test Token",
		Symbol:        "TEST",
		Decimals:      18,
		InitialSupply: 1_000_000,
		InitialHolder: a,
	}

	store, err := boltstore.Open(path)
	require.NoError(t, err)

	l, err := New(store, eventlog.NewLog(), cfg)
	require.NoError(t, err)
	require.NoError(t, l.Transfer(context.Background(), a, b, 100))
	require.NoError(t, store.Close())

	store, err = boltstore.Open(path)
	require.NoError(t, err)
	defer store.Close()

	log := eventlog.NewLog()
	l, err = New(store, log, cfg)
	require.NoError(t, err)

	assert.Equal(t, uint64(999_900), balanceOf(t, l, a))
	assert.Equal(t, uint64(100), balanceOf(t, l, b))
	assertConservation(t, l)
	assert.Equal(t, 0, log.Len())
}

func TestResumeRejectsSupplyMismatch(t *testing.T) {
	a := addr(0x11)
	store := memory.NewStore()
	require.NoError(t, store.Apply(models.StateChange{
		Balances: map[models.Address]uint64{a: 500},
	}))

	_, err := New(store, eventlog.NewLog(), Config{
		InitialSupply: 1000,
		InitialHolder: a,
	})
	assert.ErrorIs(t, err, ErrSupplyMismatch)
}

// flakySink fails deliveries on demand.
type flakySink struct {
	fail bool
}

func (s *flakySink) Append(ctx context.Context, n models.Notification) error {
	if s.fail {
		return errors.New("broker unavailable")
	}
	return nil
}

func TestCommittedStateSurvivesSinkFailure(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	sink := &flakySink{}

	l, err := New(memory.NewStore(), sink, Config{
		InitialSupply: 1_000_000,
		InitialHolder: a,
	})
	require.NoError(t, err)

	sink.fail = true
	err = l.Transfer(context.Background(), a, b, 100)
	assert.ErrorIs(t, err, ErrNotificationFailed)

	// Delivery failed after the state change committed, so the balances moved.
	assert.Equal(t, uint64(999_900), balanceOf(t, l, a))
	assert.Equal(t, uint64(100), balanceOf(t, l, b))
	assertConservation(t, l)
}

func TestConcurrentTransfers(t *testing.T) {
	a, b, c := addr(0x11), addr(0x22), addr(0x33)
	l, log := newTestLedger(t, 1_000_000, a)
	ctx := context.Background()

	require.NoError(t, l.Transfer(ctx, a, b, 100_000))
	require.NoError(t, l.Transfer(ctx, a, c, 100_000))

	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		from, to := b, c
		if w%2 == 0 {
			from, to = c, b
		}
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				// Rejections are fine under contention; partial application is not.
				_ = l.Transfer(ctx, from, to, 1)
			}
		}()
	}
	wg.Wait()

	assertConservation(t, l)
	assert.Equal(t, uint64(800_000), balanceOf(t, l, a))
	assert.Equal(t, uint64(200_000), balanceOf(t, l, b)+balanceOf(t, l, c))

	// Sequences are dense and strictly increasing regardless of interleaving.
	for i, n := range log.All() {
		require.Equal(t, uint64(i+1), n.Sequence)
	}
}
