package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

// WalletUseCase manages wallets and floats.
type WalletUseCase struct {
	txManager TransactionManager
	wallets   WalletRepository
	walletTxs WalletTransactionRepository
	audit     AuditRepository
	idGen     IDGenerator
	balance   *BalanceService
	ledger    *LedgerUseCase
	chart     ChartOfAccounts
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(
	txManager TransactionManager,
	wallets WalletRepository,
	walletTxs WalletTransactionRepository,
	audit AuditRepository,
	idGen IDGenerator,
	balance *BalanceService,
	ledger *LedgerUseCase,
	chart ChartOfAccounts,
) *WalletUseCase {
	return &WalletUseCase{
		txManager: txManager,
		wallets:   wallets,
		walletTxs: walletTxs,
		audit:     audit,
		idGen:     idGen,
		balance:   balance,
		ledger:    ledger,
		chart:     chart,
	}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	OwnerID        string
	Kind           domain.WalletKind
	Name           string
	AllowOverdraft bool
	// LedgerAccountCode overrides the control account derived from Kind.
	LedgerAccountCode string
}

// CreateWallet opens an empty active wallet rolled up into its control account.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.RequireIdentifier("owner id", input.OwnerID); err != nil {
		return nil, err
	}
	if !input.Kind.IsValid() {
		return nil, domain.ErrInvalidWalletKind
	}
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.LedgerAccountCode)
	if code == "" {
		var err error
		if code, err = uc.chart.WalletControl(input.Kind); err != nil {
			return nil, err
		}
	}
	if _, err := uc.ledger.GetAccount(ctx, code); err != nil {
		return nil, fmt.Errorf("wallet control account %s: %w", code, err)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:                uc.idGen.Generate(),
		OwnerID:           input.OwnerID,
		Kind:              input.Kind,
		Name:              input.Name,
		LedgerAccountCode: code,
		Balance:           decimal.Zero,
		AllowOverdraft:    input.AllowOverdraft,
		Status:            domain.WalletStatusActive,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.wallets.Create(txCtx, tx, wallet); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.audit, uc.idGen, auditRecord{
		action:       domain.AuditActionWalletCreate,
		resourceType: domain.AggregateTypeWallet,
		resourceID:   wallet.ID,
		after:        wallet,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}
	return wallet, nil
}

// GetWallet returns a wallet by id.
func (uc *WalletUseCase) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return uc.wallets.GetByID(ctx, id)
}

// ListWallets returns the wallets of an owner.
func (uc *WalletUseCase) ListWallets(ctx context.Context, ownerID string) ([]*domain.Wallet, error) {
	if err := domain.RequireIdentifier("owner id", ownerID); err != nil {
		return nil, err
	}
	return uc.wallets.ListByOwner(ctx, ownerID)
}

// ListWalletTransactions returns the balance history of a wallet, newest first.
func (uc *WalletUseCase) ListWalletTransactions(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error) {
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	if _, err := uc.wallets.GetByID(ctx, walletID); err != nil {
		return nil, err
	}
	return uc.walletTxs.ListByWallet(ctx, walletID, limit, offset)
}

// FundWalletInput represents a bank deposit credited to a wallet.
type FundWalletInput struct {
	WalletID    string
	Amount      decimal.Decimal
	Reference   string
	Description string
}

// FundWallet credits a wallet with money received at the bank and posts
// Dr Bank / Cr wallet control.
func (uc *WalletUseCase) FundWallet(ctx context.Context, input FundWalletInput) (*domain.WalletTransaction, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	reference := input.Reference
	if reference == "" {
		reference = "FUND-" + uc.idGen.Generate()
	} else if err := domain.ValidateReference(reference); err != nil {
		return nil, err
	}
	description := input.Description
	if description == "" {
		description = "wallet funding"
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallets, err := uc.balance.LockWallets(txCtx, tx, input.WalletID)
	if err != nil {
		return nil, err
	}
	wallet := wallets[input.WalletID]
	before := *wallet

	wtx, err := uc.balance.Credit(txCtx, tx, wallet.ID, input.Amount, BalanceContext{
		Reference:   reference,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	if _, err := uc.ledger.PostJournalEntryTx(txCtx, tx, PostJournalEntryInput{
		Reference:   reference,
		Description: description,
		Lines: []JournalLineInput{
			{AccountCode: uc.chart.Bank, Side: domain.SideDebit, Amount: input.Amount, Memo: "bank"},
			{AccountCode: wallet.LedgerAccountCode, Side: domain.SideCredit, Amount: input.Amount, Memo: "wallet"},
		},
	}); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.audit, uc.idGen, auditRecord{
		action:       domain.AuditActionWalletFund,
		resourceType: domain.AggregateTypeWallet,
		resourceID:   wallet.ID,
		before:       before,
		after:        wtx,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("wallet_id", wallet.ID).
		Str("reference", reference).
		Str("amount", input.Amount.String()).
		Msg("wallet funded")
	return wtx, nil
}

// SetStatus activates, deactivates or suspends a wallet.
func (uc *WalletUseCase) SetStatus(ctx context.Context, walletID string, status domain.WalletStatus) (*domain.Wallet, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidWalletStatus
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallet, err := uc.wallets.GetByIDForUpdate(txCtx, tx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet.Status == status {
		return wallet, nil
	}
	before := *wallet

	now := time.Now().UTC()
	if err := uc.wallets.UpdateStatus(txCtx, tx, walletID, status, now); err != nil {
		return nil, err
	}
	wallet.Status = status
	wallet.UpdatedAt = now

	if err := writeAudit(txCtx, tx, uc.audit, uc.idGen, auditRecord{
		action:       domain.AuditActionWalletStatus,
		resourceType: domain.AggregateTypeWallet,
		resourceID:   wallet.ID,
		before:       before,
		after:        wallet,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}
	return wallet, nil
}
