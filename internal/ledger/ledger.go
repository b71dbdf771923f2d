package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sheikh-saqib/token-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/token-ledger-system/internal/models"
)

// Config carries the construction parameters of a token ledger.
type Config struct {
	Name          string
	Symbol        string
	Decimals      uint8
	InitialSupply uint64
	InitialHolder models.Address
}

// TokenLedger tracks ownership of a fixed-supply divisible asset. It owns the
// balance and allowance state exclusively: all mutation goes through Transfer,
// Approve, and TransferFrom, each of which validates fully before writing and
// emits a notification on success.
//
// Operations touching the same account are serialized against each other via
// per-account mutexes; operations on disjoint accounts proceed independently.
type TokenLedger struct {
	store interfaces.LedgerStore
	sink  interfaces.NotificationSink

	name        string
	symbol      string
	decimals    uint8
	totalSupply uint64

	muMap map[models.Address]*sync.Mutex // per-account locks
	mapMu sync.Mutex                     // protects muMap itself

	commitMu sync.Mutex // serializes state writes + sequence assignment + sink append
	seq      uint64
}

// New constructs the ledger. On a fresh store it credits the entire supply to
// the initial holder and emits a creation notification (a transfer from the
// zero address). On a store that already holds state (a persistent backend
// after a restart) it keeps the stored balances, emits nothing, and resumes
// notification numbering from the sink when the sink can report its head; a
// stored supply that does not sum to the configured one is an error. The
// zero address is rejected as initial holder.
func New(store interfaces.LedgerStore, sink interfaces.NotificationSink, cfg Config) (*TokenLedger, error) {
	if cfg.InitialHolder.IsZero() {
		return nil, ErrInvalidHolder
	}

	l := &TokenLedger{
		store:       store,
		sink:        sink,
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		decimals:    cfg.Decimals,
		totalSupply: cfg.InitialSupply,
		muMap:       make(map[models.Address]*sync.Mutex),
	}

	existing, err := store.Balances()
	if err != nil {
		return nil, fmt.Errorf("reading stored balances: %w", err)
	}

	if len(existing) > 0 {
		var sum uint64
		for _, bal := range existing {
			sum += bal
		}
		if sum != cfg.InitialSupply {
			return nil, fmt.Errorf("%w: stored %d, configured %d", ErrSupplyMismatch, sum, cfg.InitialSupply)
		}

		if sequenced, ok := sink.(interfaces.SequencedSink); ok {
			head, err := sequenced.LastSequence(context.Background())
			if err != nil {
				return nil, fmt.Errorf("restoring notification sequence: %w", err)
			}
			l.seq = head
		}
		return l, nil
	}

	err = l.commit(context.Background(),
		models.StateChange{
			Balances: map[models.Address]uint64{cfg.InitialHolder: cfg.InitialSupply},
		},
		models.Notification{
			Kind:   models.KindTransfer,
			From:   models.ZeroAddress,
			To:     cfg.InitialHolder,
			Amount: cfg.InitialSupply,
		})
	if err != nil {
		return nil, fmt.Errorf("seeding initial supply: %w", err)
	}

	return l, nil
}

// Name returns the immutable display name.
func (l *TokenLedger) Name() string { return l.name }

// Symbol returns the immutable display symbol.
func (l *TokenLedger) Symbol() string { return l.symbol }

// Decimals returns the display decimal count.
func (l *TokenLedger) Decimals() uint8 { return l.decimals }

// TotalSupply returns the fixed total supply.
func (l *TokenLedger) TotalSupply() uint64 { return l.totalSupply }

// BalanceOf returns the balance of an account; unseen accounts hold zero.
func (l *TokenLedger) BalanceOf(addr models.Address) (uint64, error) {
	unlock := l.lockAccounts(addr)
	defer unlock()
	return l.store.Balance(addr)
}

// Allowance returns what spender may still move on owner's behalf; unseen
// pairs hold zero.
func (l *TokenLedger) Allowance(owner, spender models.Address) (uint64, error) {
	unlock := l.lockAccounts(owner)
	defer unlock()
	return l.store.Allowance(owner, spender)
}

// Balances returns a snapshot of every nonzero balance.
func (l *TokenLedger) Balances() (map[models.Address]uint64, error) {
	return l.store.Balances()
}

// Transfer moves amount from caller to recipient. A zero amount and a
// self-transfer are both valid; either way the notification is still emitted.
func (l *TokenLedger) Transfer(ctx context.Context, caller, to models.Address, amount uint64) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}

	unlock := l.lockAccounts(caller, to)
	defer unlock()

	fromBal, err := l.store.Balance(caller)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ErrInsufficientBalance
	}

	balances := map[models.Address]uint64{}
	if caller == to {
		// Symmetric debit+credit nets out against the pre-transfer balance.
		balances[caller] = fromBal
	} else {
		toBal, err := l.store.Balance(to)
		if err != nil {
			return err
		}
		balances[caller] = fromBal - amount
		balances[to] = toBal + amount
	}

	return l.commit(ctx, models.StateChange{Balances: balances}, models.Notification{
		Kind:   models.KindTransfer,
		From:   caller,
		To:     to,
		Amount: amount,
	})
}

// Approve sets the allowance of spender over caller's balance. The value is
// absolute, not additive: each call fully replaces the prior allowance, so
// two concurrent approvals are last-write-wins. Callers adjusting a nonzero
// allowance must re-read it first.
func (l *TokenLedger) Approve(ctx context.Context, caller, spender models.Address, amount uint64) error {
	if spender.IsZero() {
		return ErrInvalidSpender
	}

	unlock := l.lockAccounts(caller)
	defer unlock()

	change := models.StateChange{
		Allowances: map[models.AllowancePair]uint64{
			{Owner: caller, Spender: spender}: amount,
		},
	}

	return l.commit(ctx, change, models.Notification{
		Kind:    models.KindApproval,
		Owner:   caller,
		Spender: spender,
		Amount:  amount,
	})
}

// TransferFrom moves amount out of the from account to the recipient on the
// strength of caller's allowance, which is decremented by amount. Checks run
// in a fixed order so the first failing precondition is the one reported.
func (l *TokenLedger) TransferFrom(ctx context.Context, caller, from, to models.Address, amount uint64) error {
	if to.IsZero() {
		return ErrInvalidRecipient
	}
	if from.IsZero() {
		return ErrInvalidSender
	}

	unlock := l.lockAccounts(from, to)
	defer unlock()

	fromBal, err := l.store.Balance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return ErrInsufficientBalance
	}

	allowance, err := l.store.Allowance(from, caller)
	if err != nil {
		return err
	}
	if allowance < amount {
		return ErrInsufficientAllowance
	}

	balances := map[models.Address]uint64{}
	if from == to {
		balances[from] = fromBal
	} else {
		toBal, err := l.store.Balance(to)
		if err != nil {
			return err
		}
		balances[from] = fromBal - amount
		balances[to] = toBal + amount
	}

	change := models.StateChange{
		Balances: balances,
		Allowances: map[models.AllowancePair]uint64{
			{Owner: from, Spender: caller}: allowance - amount,
		},
	}

	return l.commit(ctx, change, models.Notification{
		Kind:   models.KindTransfer,
		From:   from,
		To:     to,
		Amount: amount,
	})
}

func (l *TokenLedger) accountLock(addr models.Address) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[addr]; !exists {
		l.muMap[addr] = &sync.Mutex{}
	}
	return l.muMap[addr]
}

// lockAccounts locks the given accounts in address order to avoid deadlocks
// and returns a function releasing them in reverse order.
func (l *TokenLedger) lockAccounts(addrs ...models.Address) func() {
	unique := make([]models.Address, 0, len(addrs))
	for _, addr := range addrs {
		seen := false
		for _, u := range unique {
			if u == addr {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, addr)
		}
	}

	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})

	locks := make([]*sync.Mutex, len(unique))
	for i, addr := range unique {
		locks[i] = l.accountLock(addr)
		locks[i].Lock()
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// commit applies a fully validated state change and emits its notification
// under one critical section, so the notification log order always matches
// the order changes became visible. Called with the involved account locks
// held; validation has already passed, so a store failure leaves state
// untouched and nothing is emitted.
func (l *TokenLedger) commit(ctx context.Context, change models.StateChange, n models.Notification) error {
	l.commitMu.Lock()
	defer l.commitMu.Unlock()

	if err := l.store.Apply(change); err != nil {
		return err
	}

	l.seq++
	n.Sequence = l.seq
	n.ID = uuid.New().String()
	n.OccurredAt = time.Now().UTC()

	if err := l.sink.Append(ctx, n); err != nil {
		return fmt.Errorf("%w: sequence %d: %v", ErrNotificationFailed, n.Sequence, err)
	}
	return nil
}
