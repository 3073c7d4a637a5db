// Package memory is a transactional in-memory implementation of every
// repository. A transaction works on a private snapshot that replaces the
// committed state on Commit; only one transaction writes at a time.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is committed again.
var ErrTxDone = errors.New("memory: transaction already finished")

// errForeignTx is returned when a transaction from another store is used.
var errForeignTx = errors.New("memory: transaction belongs to another store")

// Stored records are never mutated in place; updates replace the pointer.
// Cloning the state therefore only copies the indexes.
type state struct {
	accounts      map[string]*domain.Account
	accountByCode map[string]string

	entries    map[string]*domain.JournalEntry
	entryByRef map[string]string
	entryOrder []string

	wallets   map[string]*domain.Wallet
	walletTxs []*domain.WalletTransaction

	movements     map[string]*domain.MoneyMovement
	movementByRef map[string]string
	polledAt      map[string]time.Time

	fees  []*domain.FeeConfiguration
	taxes []*domain.TaxTransaction
	tiers map[string]domain.TierLevel

	outbox []*domain.OutboxEvent
	audit  []*domain.AuditLog
}

func newState() *state {
	return &state{
		accounts:      map[string]*domain.Account{},
		accountByCode: map[string]string{},
		entries:       map[string]*domain.JournalEntry{},
		entryByRef:    map[string]string{},
		wallets:       map[string]*domain.Wallet{},
		movements:     map[string]*domain.MoneyMovement{},
		movementByRef: map[string]string{},
		polledAt:      map[string]time.Time{},
		tiers:         map[string]domain.TierLevel{},
	}
}

func (s *state) clone() *state {
	return &state{
		accounts:      maps.Clone(s.accounts),
		accountByCode: maps.Clone(s.accountByCode),
		entries:       maps.Clone(s.entries),
		entryByRef:    maps.Clone(s.entryByRef),
		entryOrder:    append([]string(nil), s.entryOrder...),
		wallets:       maps.Clone(s.wallets),
		walletTxs:     append([]*domain.WalletTransaction(nil), s.walletTxs...),
		movements:     maps.Clone(s.movements),
		movementByRef: maps.Clone(s.movementByRef),
		polledAt:      maps.Clone(s.polledAt),
		fees:          append([]*domain.FeeConfiguration(nil), s.fees...),
		taxes:         append([]*domain.TaxTransaction(nil), s.taxes...),
		tiers:         maps.Clone(s.tiers),
		outbox:        append([]*domain.OutboxEvent(nil), s.outbox...),
		audit:         append([]*domain.AuditLog(nil), s.audit...),
	}
}

// Store holds the committed state.
type Store struct {
	writer    chan struct{}
	mu        sync.RWMutex
	committed *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		writer:    make(chan struct{}, 1),
		committed: newState(),
	}
}

func (s *Store) acquire(ctx context.Context) error {
	select {
	case s.writer <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release() { <-s.writer }

// read runs fn against the committed state.
func (s *Store) read(fn func(st *state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.committed)
}

// write runs fn in its own short transaction.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	s.mu.RLock()
	st := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(st); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = st
	s.mu.Unlock()
	return nil
}

// stateOf returns the snapshot of an open transaction of this store.
func (s *Store) stateOf(tx usecase.Transaction) (*state, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}
	if t.done {
		return nil, ErrTxDone
	}
	return t.st, nil
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for the writer slot and snapshots the committed state.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.store.acquire(ctx); err != nil {
		return nil, err
	}

	m.store.mu.RLock()
	st := m.store.committed.clone()
	m.store.mu.RUnlock()

	return &Tx{store: m.store, st: st}, nil
}

// Tx is an open snapshot. It is not safe for concurrent use.
type Tx struct {
	store *Store
	st    *state
	done  bool
}

// Commit publishes the snapshot.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.done = true

	t.store.mu.Lock()
	t.store.committed = t.st
	t.store.mu.Unlock()

	t.store.release()
	return nil
}

// Rollback discards the snapshot. Rolling back a finished transaction is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.release()
	return nil
}
