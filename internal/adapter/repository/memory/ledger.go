package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// AccountRepository implements usecase.LedgerAccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

// Create inserts an account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.accountByCode[account.Code]; ok {
		return domain.ErrDuplicateAccountCode
	}
	st.accounts[account.ID] = copyAccount(account)
	st.accountByCode[account.Code] = account.ID
	return nil
}

// GetByID returns an account by id.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var out *domain.Account
	r.store.read(func(st *state) {
		if a, ok := st.accounts[id]; ok {
			out = copyAccount(a)
		}
	})
	if out == nil {
		return nil, domain.ErrAccountNotFound
	}
	return out, nil
}

// GetByCode returns an account by code.
func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	var out *domain.Account
	r.store.read(func(st *state) {
		if id, ok := st.accountByCode[code]; ok {
			out = copyAccount(st.accounts[id])
		}
	})
	if out == nil {
		return nil, domain.ErrAccountNotFound
	}
	return out, nil
}

// GetByCodesTx returns the accounts with the given codes that exist.
func (r *AccountRepository) GetByCodesTx(ctx context.Context, tx usecase.Transaction, codes []string) ([]*domain.Account, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Account, 0, len(codes))
	for _, code := range codes {
		if id, ok := st.accountByCode[code]; ok {
			out = append(out, copyAccount(st.accounts[id]))
		}
	}
	return out, nil
}

// GetByIDsTx returns the accounts with the given ids that exist.
func (r *AccountRepository) GetByIDsTx(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		if a, ok := st.accounts[id]; ok {
			out = append(out, copyAccount(a))
		}
	}
	return out, nil
}

// UpdateName renames an account.
func (r *AccountRepository) UpdateName(ctx context.Context, tx usecase.Transaction, code, name string, updatedAt time.Time) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	id, ok := st.accountByCode[code]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a := copyAccount(st.accounts[id])
	a.Name = name
	a.UpdatedAt = updatedAt
	st.accounts[id] = a
	return nil
}

// List returns accounts ordered by code.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	var all []*domain.Account
	r.store.read(func(st *state) {
		all = make([]*domain.Account, 0, len(st.accounts))
		for _, a := range st.accounts {
			all = append(all, copyAccount(a))
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	store *Store
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(store *Store) *JournalRepository {
	return &JournalRepository{store: store}
}

func copyEntry(e *domain.JournalEntry) *domain.JournalEntry {
	c := *e
	c.Lines = append([]domain.JournalLine(nil), e.Lines...)
	return &c
}

// Create inserts an entry with its lines.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.entryByRef[entry.Reference]; ok {
		return domain.ErrDuplicateReference
	}
	st.entries[entry.ID] = copyEntry(entry)
	st.entryByRef[entry.Reference] = entry.ID
	st.entryOrder = append(st.entryOrder, entry.ID)
	return nil
}

// GetByReference returns a committed entry.
func (r *JournalRepository) GetByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	var out *domain.JournalEntry
	r.store.read(func(st *state) {
		out = entryByRef(st, reference)
	})
	if out == nil {
		return nil, domain.ErrEntryNotFound
	}
	return out, nil
}

// GetByReferenceTx returns an entry visible to tx.
func (r *JournalRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, reference string) (*domain.JournalEntry, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	out := entryByRef(st, reference)
	if out == nil {
		return nil, domain.ErrEntryNotFound
	}
	return out, nil
}

func entryByRef(st *state, reference string) *domain.JournalEntry {
	id, ok := st.entryByRef[reference]
	if !ok {
		return nil
	}
	return copyEntry(st.entries[id])
}

// AccountTotals sums debit and credit lines per account.
func (r *JournalRepository) AccountTotals(ctx context.Context) ([]usecase.AccountTotals, error) {
	totals := map[string]*usecase.AccountTotals{}
	r.store.read(func(st *state) {
		for _, id := range st.entryOrder {
			for _, l := range st.entries[id].Lines {
				t, ok := totals[l.AccountID]
				if !ok {
					t = &usecase.AccountTotals{AccountID: l.AccountID}
					totals[l.AccountID] = t
				}
				if l.Side == domain.SideDebit {
					t.Debits = t.Debits.Add(l.Amount)
				} else {
					t.Credits = t.Credits.Add(l.Amount)
				}
			}
		}
	})

	out := make([]usecase.AccountTotals, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

// CheckConsistency sums every debit and credit line.
func (r *JournalRepository) CheckConsistency(ctx context.Context) (debits, credits decimal.Decimal, err error) {
	r.store.read(func(st *state) {
		for _, id := range st.entryOrder {
			d, c := st.entries[id].Totals()
			debits = debits.Add(d)
			credits = credits.Add(c)
		}
	})
	return debits, credits, nil
}

// EntryCount returns the number of committed journal entries.
func (r *JournalRepository) EntryCount() int {
	var n int
	r.store.read(func(st *state) { n = len(st.entryOrder) })
	return n
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
