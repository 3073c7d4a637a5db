package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository. Holding the
// transaction's writer slot is the row lock.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

func copyWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	return &c
}

// Create inserts a wallet.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	st.wallets[wallet.ID] = copyWallet(wallet)
	return nil
}

// GetByID returns a committed wallet.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	var out *domain.Wallet
	r.store.read(func(st *state) {
		if w, ok := st.wallets[id]; ok {
			out = copyWallet(w)
		}
	})
	if out == nil {
		return nil, domain.ErrWalletNotFound
	}
	return out, nil
}

// GetByIDForUpdate returns a wallet visible to tx.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	w, ok := st.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

// GetByIDsForUpdate returns the wallets visible to tx in id order.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Wallet, 0, len(ids))
	for _, id := range ids {
		if w, ok := st.wallets[id]; ok {
			out = append(out, copyWallet(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateBalance stores a new balance and version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	cur, ok := st.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w := copyWallet(cur)
	w.Balance = balance
	w.Version = version
	w.UpdatedAt = updatedAt
	at := updatedAt
	w.LastTransactionAt = &at
	st.wallets[id] = w
	return nil
}

// UpdateStatus stores a new status.
func (r *WalletRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.WalletStatus, updatedAt time.Time) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	cur, ok := st.wallets[id]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w := copyWallet(cur)
	w.Status = status
	w.UpdatedAt = updatedAt
	st.wallets[id] = w
	return nil
}

// ListByOwner returns an owner's wallets by creation time.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wallet, error) {
	var out []*domain.Wallet
	r.store.read(func(st *state) {
		for _, w := range st.wallets {
			if w.OwnerID == ownerID {
				out = append(out, copyWallet(w))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SumByLedgerAccount totals wallet balances per control account.
func (r *WalletRepository) SumByLedgerAccount(ctx context.Context) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{}
	r.store.read(func(st *state) {
		for _, w := range st.wallets {
			sums[w.LedgerAccountCode] = sums[w.LedgerAccountCode].Add(w.Balance)
		}
	})
	return sums, nil
}

// WalletTransactionRepository implements usecase.WalletTransactionRepository.
type WalletTransactionRepository struct {
	store *Store
}

// NewWalletTransactionRepository creates a new WalletTransactionRepository.
func NewWalletTransactionRepository(store *Store) *WalletTransactionRepository {
	return &WalletTransactionRepository{store: store}
}

// Create appends a wallet transaction.
func (r *WalletTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.WalletTransaction) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	c := *t
	st.walletTxs = append(st.walletTxs, &c)
	return nil
}

// ListByWallet returns a wallet's transactions, newest first.
func (r *WalletTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	var out []*domain.WalletTransaction
	r.store.read(func(st *state) {
		for i := len(st.walletTxs) - 1; i >= 0; i-- {
			if t := st.walletTxs[i]; t.WalletID == walletID {
				c := *t
				out = append(out, &c)
			}
		}
	})
	return page(out, limit, offset), nil
}
