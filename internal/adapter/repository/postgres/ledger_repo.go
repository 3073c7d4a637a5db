package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/postgres/generated"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// LedgerAccountRepository implements usecase.LedgerAccountRepository.
type LedgerAccountRepository struct {
	queries *generated.Queries
}

// NewLedgerAccountRepository creates a new LedgerAccountRepository.
func NewLedgerAccountRepository(db generated.DBTX) *LedgerAccountRepository {
	return &LedgerAccountRepository{queries: generated.New(db)}
}

// Create inserts a chart-of-accounts row.
func (r *LedgerAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := queriesFor(tx).CreateLedgerAccount(ctx, generated.CreateLedgerAccountParams{
		ID:         account.ID,
		Code:       account.Code,
		Name:       account.Name,
		Type:       string(account.Type),
		NormalSide: string(account.NormalSide),
		CreatedAt:  timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:  timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAccountCode
	}
	return err
}

// GetByID retrieves an account by ID.
func (r *LedgerAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetLedgerAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByCode retrieves an account by its chart code.
func (r *LedgerAccountRepository) GetByCode(ctx context.Context, code string) (*domain.Account, error) {
	row, err := r.queries.GetLedgerAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByCodesTx retrieves accounts by code inside tx.
func (r *LedgerAccountRepository) GetByCodesTx(ctx context.Context, tx usecase.Transaction, codes []string) ([]*domain.Account, error) {
	rows, err := queriesFor(tx).GetLedgerAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// GetByIDsTx retrieves accounts by ID inside tx.
func (r *LedgerAccountRepository) GetByIDsTx(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	rows, err := queriesFor(tx).GetLedgerAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// UpdateName renames an account. Code, type and normal side are immutable.
func (r *LedgerAccountRepository) UpdateName(ctx context.Context, tx usecase.Transaction, code, name string, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateLedgerAccountName(ctx, generated.UpdateLedgerAccountNameParams{
		Code:      code,
		Name:      name,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// List lists accounts ordered by code.
func (r *LedgerAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListLedgerAccounts(ctx, generated.ListLedgerAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.LedgerAccount) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}
	return accounts
}

func rowToAccount(row generated.LedgerAccount) *domain.Account {
	return &domain.Account{
		ID:         row.ID,
		Code:       row.Code,
		Name:       row.Name,
		Type:       domain.AccountType(row.Type),
		NormalSide: domain.Side(row.NormalSide),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	queries *generated.Queries
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{queries: generated.New(db)}
}

// Create writes the entry header and its lines in tx.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	q := queriesFor(tx)

	err := q.CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
		ID:          entry.ID,
		Reference:   entry.Reference,
		Description: entry.Description,
		PostedAt:    timeToPgTimestamptz(entry.PostedAt),
		CreatedAt:   timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return err
	}

	for i, l := range entry.Lines {
		err := q.CreateJournalLine(ctx, generated.CreateJournalLineParams{
			ID:          l.ID,
			EntryID:     entry.ID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        string(l.Side),
			Amount:      decimalToNumeric(l.Amount),
			Memo:        l.Memo,
			Position:    int32(i),
		})
		if err != nil {
			return fmt.Errorf("journal line %d: %w", i, err)
		}
	}

	return nil
}

// GetByReference loads an entry with its lines.
func (r *JournalRepository) GetByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, r.queries, reference)
}

// GetByReferenceTx loads an entry inside tx.
func (r *JournalRepository) GetByReferenceTx(ctx context.Context, tx usecase.Transaction, reference string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, queriesFor(tx), reference)
}

func loadEntry(ctx context.Context, q *generated.Queries, reference string) (*domain.JournalEntry, error) {
	row, err := q.GetJournalEntryByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	lines, err := q.GetJournalLinesByEntry(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	entry := &domain.JournalEntry{
		ID:          row.ID,
		Reference:   row.Reference,
		Description: row.Description,
		PostedAt:    row.PostedAt.Time,
		CreatedAt:   row.CreatedAt.Time,
		Lines:       make([]domain.JournalLine, 0, len(lines)),
	}
	for _, l := range lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			ID:          l.ID,
			EntryID:     l.EntryID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        domain.Side(l.Side),
			Amount:      numericToDecimal(l.Amount),
			Memo:        l.Memo,
			Position:    int(l.Position),
		})
	}

	return entry, nil
}

// AccountTotals sums journal lines per account.
func (r *JournalRepository) AccountTotals(ctx context.Context) ([]usecase.AccountTotals, error) {
	rows, err := r.queries.SumJournalLinesByAccount(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.AccountTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.AccountTotals{
			AccountID: row.AccountID,
			Debits:    numericToDecimal(row.Debits),
			Credits:   numericToDecimal(row.Credits),
		})
	}

	return out, nil
}

// CheckConsistency returns total debits and credits across every journal line.
func (r *JournalRepository) CheckConsistency(ctx context.Context) (debits, credits decimal.Decimal, err error) {
	result, err := r.queries.CheckJournalConsistency(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(result.TotalDebits), numericToDecimal(result.TotalCredits), nil
}
