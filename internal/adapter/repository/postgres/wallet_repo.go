package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/postgres/generated"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// Create inserts a wallet in tx.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	return queriesFor(tx).CreateWallet(ctx, generated.CreateWalletParams{
		ID:                wallet.ID,
		OwnerID:           wallet.OwnerID,
		Kind:              string(wallet.Kind),
		Name:              wallet.Name,
		LedgerAccountCode: wallet.LedgerAccountCode,
		Balance:           decimalToNumeric(wallet.Balance),
		AllowOverdraft:    wallet.AllowOverdraft,
		Status:            string(wallet.Status),
		Version:           wallet.Version,
		CreatedAt:         timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(wallet.UpdatedAt),
	})
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDForUpdate retrieves a wallet by ID with a FOR UPDATE lock.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Wallet, error) {
	row, err := queriesFor(tx).GetWalletByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByIDsForUpdate locks wallets in ID order.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	rows, err := queriesFor(tx).GetWalletsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// UpdateBalance writes a new balance and version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		Version:   version,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// UpdateStatus changes a wallet's status.
func (r *WalletRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.WalletStatus, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateWalletStatus(ctx, generated.UpdateWalletStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// ListByOwner lists an owner's wallets.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWalletsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// SumByLedgerAccount totals wallet balances per control account code.
func (r *WalletRepository) SumByLedgerAccount(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := r.queries.SumWalletsByLedgerAccount(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.LedgerAccountCode] = numericToDecimal(row.Total)
	}

	return out, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:                row.ID,
		OwnerID:           row.OwnerID,
		Kind:              domain.WalletKind(row.Kind),
		Name:              row.Name,
		LedgerAccountCode: row.LedgerAccountCode,
		Balance:           numericToDecimal(row.Balance),
		AllowOverdraft:    row.AllowOverdraft,
		Status:            domain.WalletStatus(row.Status),
		Version:           row.Version,
		LastTransactionAt: timestamptzPtr(row.LastTransactionAt),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}

// WalletTransactionRepository implements usecase.WalletTransactionRepository.
type WalletTransactionRepository struct {
	queries *generated.Queries
}

// NewWalletTransactionRepository creates a new WalletTransactionRepository.
func NewWalletTransactionRepository(db generated.DBTX) *WalletTransactionRepository {
	return &WalletTransactionRepository{queries: generated.New(db)}
}

// Create records a balance change in tx.
func (r *WalletTransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.WalletTransaction) error {
	return queriesFor(tx).CreateWalletTransaction(ctx, generated.CreateWalletTransactionParams{
		ID:              t.ID,
		WalletID:        t.WalletID,
		MovementID:      t.MovementID,
		Reference:       t.Reference,
		Description:     t.Description,
		Direction:       string(t.Direction),
		Amount:          decimalToNumeric(t.Amount),
		PreviousBalance: decimalToNumeric(t.PreviousBalance),
		CurrentBalance:  decimalToNumeric(t.CurrentBalance),
		WalletVersion:   t.WalletVersion,
		CreatedAt:       timeToPgTimestamptz(t.CreatedAt),
	})
}

// ListByWallet returns a wallet's history, newest first.
func (r *WalletTransactionRepository) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	rows, err := r.queries.ListWalletTransactions(ctx, generated.ListWalletTransactionsParams{
		WalletID: walletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*domain.WalletTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.WalletTransaction{
			ID:              row.ID,
			WalletID:        row.WalletID,
			MovementID:      row.MovementID,
			Reference:       row.Reference,
			Description:     row.Description,
			Direction:       domain.Side(row.Direction),
			Amount:          numericToDecimal(row.Amount),
			PreviousBalance: numericToDecimal(row.PreviousBalance),
			CurrentBalance:  numericToDecimal(row.CurrentBalance),
			WalletVersion:   row.WalletVersion,
			CreatedAt:       row.CreatedAt.Time,
		})
	}

	return out, nil
}
