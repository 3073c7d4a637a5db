package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// BalanceService applies atomic debits and credits to wallets and floats.
// Every method that mutates runs inside the caller's transaction.
type BalanceService struct {
	walletRepo   WalletRepository
	walletTxRepo WalletTransactionRepository
	idGen        IDGenerator
	metrics      *metrics.Metrics
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(
	walletRepo WalletRepository,
	walletTxRepo WalletTransactionRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *BalanceService {
	return &BalanceService{
		walletRepo:   walletRepo,
		walletTxRepo: walletTxRepo,
		idGen:        idGen,
		metrics:      metrics,
	}
}

// BalanceContext describes why a balance changes.
type BalanceContext struct {
	MovementID  string
	Reference   string
	Description string
	// Compensation marks refunds and their mirror debits, which must land
	// even when the wallet has since been deactivated.
	Compensation bool
}

// DebitCheck is the outcome of a pre-debit check.
type DebitCheck struct {
	Allowed bool
	Reason  error
}

// CanDebit reports whether wallet may be debited by amount.
func (s *BalanceService) CanDebit(wallet *domain.Wallet, amount decimal.Decimal) DebitCheck {
	if !amount.IsPositive() {
		return DebitCheck{Reason: domain.ErrInvalidAmount}
	}
	if err := wallet.ValidateDebit(amount); err != nil {
		return DebitCheck{Reason: err}
	}
	return DebitCheck{Allowed: true}
}

// LockWallets locks the given wallets in sorted id order.
func (s *BalanceService) LockWallets(ctx context.Context, tx Transaction, ids ...string) (map[string]*domain.Wallet, error) {
	sorted := uniqueSorted(ids)
	wallets, err := s.walletRepo.GetByIDsForUpdate(ctx, tx, sorted)
	if err != nil {
		return nil, err
	}
	if len(wallets) != len(sorted) {
		return nil, domain.ErrWalletNotFound
	}
	out := make(map[string]*domain.Wallet, len(wallets))
	for _, w := range wallets {
		out[w.ID] = w
	}
	return out, nil
}

// Debit locks the wallet, re-checks it and debits amount.
func (s *BalanceService) Debit(ctx context.Context, tx Transaction, walletID string, amount decimal.Decimal, bc BalanceContext) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}

	if bc.Compensation {
		if !wallet.AllowOverdraft && wallet.Balance.LessThan(amount) {
			s.count("debit", "rejected")
			return nil, fmt.Errorf("%w: wallet %s", domain.ErrInsufficientFunds, walletID)
		}
	} else if check := s.CanDebit(wallet, amount); !check.Allowed {
		s.count("debit", "rejected")
		return nil, fmt.Errorf("%w: wallet %s", check.Reason, walletID)
	}

	newBalance := wallet.ApplyDebit(amount)
	if newBalance.IsNegative() && !wallet.AllowOverdraft {
		logger.Critical(ctx).
			Str("wallet_id", walletID).
			Str("balance", newBalance.String()).
			Msg("negative balance on non-overdraft wallet")
		if s.metrics != nil {
			s.metrics.InvariantViolations.WithLabelValues("debit").Inc()
		}
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrNegativeBalance, walletID)
	}

	return s.apply(ctx, tx, wallet, domain.SideDebit, amount, newBalance, bc)
}

// Credit locks the wallet and credits amount.
func (s *BalanceService) Credit(ctx context.Context, tx Transaction, walletID string, amount decimal.Decimal, bc BalanceContext) (*domain.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, err
	}

	if err := wallet.ValidateCredit(bc.Compensation); err != nil {
		s.count("credit", "rejected")
		return nil, fmt.Errorf("%w: wallet %s", err, walletID)
	}

	return s.apply(ctx, tx, wallet, domain.SideCredit, amount, wallet.ApplyCredit(amount), bc)
}

func (s *BalanceService) apply(
	ctx context.Context,
	tx Transaction,
	wallet *domain.Wallet,
	side domain.Side,
	amount, newBalance decimal.Decimal,
	bc BalanceContext,
) (*domain.WalletTransaction, error) {
	now := time.Now().UTC()
	version := wallet.Version + 1

	if err := s.walletRepo.UpdateBalance(ctx, tx, wallet.ID, newBalance, version, now); err != nil {
		return nil, err
	}

	wt := &domain.WalletTransaction{
		ID:              s.idGen.Generate(),
		WalletID:        wallet.ID,
		MovementID:      bc.MovementID,
		Reference:       bc.Reference,
		Description:     bc.Description,
		Direction:       side,
		Amount:          amount,
		PreviousBalance: wallet.Balance,
		CurrentBalance:  newBalance,
		WalletVersion:   version,
		CreatedAt:       now,
	}
	if err := s.walletTxRepo.Create(ctx, tx, wt); err != nil {
		return nil, err
	}

	wallet.Balance = newBalance
	wallet.Version = version
	wallet.LastTransactionAt = &now
	wallet.UpdatedAt = now

	s.count(string(side), "applied")
	return wt, nil
}

func (s *BalanceService) count(op, status string) {
	if s.metrics != nil {
		s.metrics.WalletOperations.WithLabelValues(op, status).Inc()
	}
}

// sortedIDs returns non-empty ids sorted for lock ordering.
func sortedIDs(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
