package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

// ReconciliationUseCase compares the ledger with the wallet balances that
// roll up into it.
type ReconciliationUseCase struct {
	ledger  *LedgerUseCase
	wallets WalletRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(ledger *LedgerUseCase, wallets WalletRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{ledger: ledger, wallets: wallets}
}

// ReconciliationResult compares one control account with its wallets.
type ReconciliationResult struct {
	AccountCode   string
	LedgerBalance decimal.Decimal
	WalletBalance decimal.Decimal
	Difference    decimal.Decimal
	IsReconciled  bool
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	LedgerConsistent bool
	TotalDebits      decimal.Decimal
	TotalCredits     decimal.Decimal
	Accounts         []ReconciliationResult
	Discrepancies    int
	CheckedAt        time.Time
}

// Reconciled reports whether the ledger balances and every control account
// matches its wallets.
func (r *ReconciliationReport) Reconciled() bool {
	return r.LedgerConsistent && r.Discrepancies == 0
}

// Report checks ledger consistency and compares each wallet control
// account's ledger balance with the sum of the wallets mapped onto it.
func (uc *ReconciliationUseCase) Report(ctx context.Context) (*ReconciliationReport, error) {
	tb, err := uc.ledger.GetTrialBalance(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := uc.wallets.SumByLedgerAccount(ctx)
	if err != nil {
		return nil, err
	}

	ledgerBalances := make(map[string]decimal.Decimal, len(tb.Balances))
	for _, b := range tb.Balances {
		ledgerBalances[b.Account.Code] = b.Balance
	}

	codes := make([]string, 0, len(sums))
	for code := range sums {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	report := &ReconciliationReport{
		LedgerConsistent: tb.Balanced(),
		TotalDebits:      tb.Totals.Debits,
		TotalCredits:     tb.Totals.Credits,
		Accounts:         make([]ReconciliationResult, 0, len(codes)),
		CheckedAt:        time.Now().UTC(),
	}
	for _, code := range codes {
		ledger := ledgerBalances[code]
		wallets := sums[code]
		diff := ledger.Sub(wallets)
		res := ReconciliationResult{
			AccountCode:   code,
			LedgerBalance: ledger,
			WalletBalance: wallets,
			Difference:    diff,
			IsReconciled:  diff.IsZero(),
		}
		if !res.IsReconciled {
			report.Discrepancies++
			logger.Critical(ctx).
				Str("account_code", code).
				Str("ledger", ledger.String()).
				Str("wallets", wallets.String()).
				Msg("control account does not match wallet balances")
		}
		report.Accounts = append(report.Accounts, res)
	}

	return report, nil
}
