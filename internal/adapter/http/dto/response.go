package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LedgerAccountResponse represents a chart-of-accounts entry.
type LedgerAccountResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	NormalSide string    `json:"normal_side"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// LedgerAccountFromDomain converts a domain account to a response.
func LedgerAccountFromDomain(a *domain.Account) *LedgerAccountResponse {
	return &LedgerAccountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		NormalSide: string(a.NormalSide),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// LedgerAccountsFromDomain converts domain accounts to responses.
func LedgerAccountsFromDomain(accounts []*domain.Account) []*LedgerAccountResponse {
	result := make([]*LedgerAccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = LedgerAccountFromDomain(a)
	}
	return result
}

// JournalLineResponse is one posted line.
type JournalLineResponse struct {
	AccountCode string `json:"account_code"`
	Side        string `json:"side"`
	Amount      string `json:"amount"`
	Memo        string `json:"memo,omitempty"`
}

// JournalEntryResponse represents a posted journal entry.
type JournalEntryResponse struct {
	ID          string                `json:"id"`
	Reference   string                `json:"reference"`
	Description string                `json:"description,omitempty"`
	PostedAt    time.Time             `json:"posted_at"`
	Lines       []JournalLineResponse `json:"lines"`
}

// JournalEntryFromDomain converts a domain entry to a response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			AccountCode: l.AccountCode,
			Side:        string(l.Side),
			Amount:      money(l.Amount),
			Memo:        l.Memo,
		}
	}
	return &JournalEntryResponse{
		ID:          e.ID,
		Reference:   e.Reference,
		Description: e.Description,
		PostedAt:    e.PostedAt,
		Lines:       lines,
	}
}

// AccountBalanceResponse is one trial balance row.
type AccountBalanceResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Debits  string `json:"debits"`
	Credits string `json:"credits"`
	Balance string `json:"balance"`
}

// TrialBalanceResponse represents the trial balance.
type TrialBalanceResponse struct {
	Accounts     []AccountBalanceResponse `json:"accounts"`
	TotalDebits  string                   `json:"total_debits"`
	TotalCredits string                   `json:"total_credits"`
	Balanced     bool                     `json:"balanced"`
	GeneratedAt  time.Time                `json:"generated_at"`
}

// TrialBalanceFromDomain converts a trial balance to a response.
func TrialBalanceFromDomain(tb *domain.TrialBalance) *TrialBalanceResponse {
	rows := make([]AccountBalanceResponse, len(tb.Balances))
	for i, b := range tb.Balances {
		rows[i] = AccountBalanceResponse{
			Code:    b.Account.Code,
			Name:    b.Account.Name,
			Type:    string(b.Account.Type),
			Debits:  money(b.Debits),
			Credits: money(b.Credits),
			Balance: money(b.Balance),
		}
	}
	return &TrialBalanceResponse{
		Accounts:     rows,
		TotalDebits:  money(tb.Totals.Debits),
		TotalCredits: money(tb.Totals.Credits),
		Balanced:     tb.Balanced(),
		GeneratedAt:  tb.GeneratedAt,
	}
}

// ReconciliationAccountResponse compares one control account with its wallets.
type ReconciliationAccountResponse struct {
	AccountCode   string `json:"account_code"`
	LedgerBalance string `json:"ledger_balance"`
	WalletBalance string `json:"wallet_balance"`
	Difference    string `json:"difference"`
	Reconciled    bool   `json:"reconciled"`
}

// ReconciliationResponse represents the reconciliation report.
type ReconciliationResponse struct {
	Reconciled       bool                            `json:"reconciled"`
	LedgerConsistent bool                            `json:"ledger_consistent"`
	TotalDebits      string                          `json:"total_debits"`
	TotalCredits     string                          `json:"total_credits"`
	Discrepancies    int                             `json:"discrepancies"`
	Accounts         []ReconciliationAccountResponse `json:"accounts"`
	CheckedAt        time.Time                       `json:"checked_at"`
}

// ReconciliationFromReport converts a report to a response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	rows := make([]ReconciliationAccountResponse, len(r.Accounts))
	for i, a := range r.Accounts {
		rows[i] = ReconciliationAccountResponse{
			AccountCode:   a.AccountCode,
			LedgerBalance: money(a.LedgerBalance),
			WalletBalance: money(a.WalletBalance),
			Difference:    money(a.Difference),
			Reconciled:    a.IsReconciled,
		}
	}
	return &ReconciliationResponse{
		Reconciled:       r.Reconciled(),
		LedgerConsistent: r.LedgerConsistent,
		TotalDebits:      money(r.TotalDebits),
		TotalCredits:     money(r.TotalCredits),
		Discrepancies:    r.Discrepancies,
		Accounts:         rows,
		CheckedAt:        r.CheckedAt,
	}
}

// WalletResponse represents a wallet.
type WalletResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	Kind              string     `json:"kind"`
	Name              string     `json:"name,omitempty"`
	LedgerAccountCode string     `json:"ledger_account_code"`
	Balance           string     `json:"balance"`
	Currency          string     `json:"currency"`
	AllowOverdraft    bool       `json:"allow_overdraft"`
	Status            string     `json:"status"`
	Version           int64      `json:"version"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// WalletFromDomain converts a wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:                w.ID,
		OwnerID:           w.OwnerID,
		Kind:              string(w.Kind),
		Name:              w.Name,
		LedgerAccountCode: w.LedgerAccountCode,
		Balance:           money(w.Balance),
		Currency:          domain.Currency,
		AllowOverdraft:    w.AllowOverdraft,
		Status:            string(w.Status),
		Version:           w.Version,
		LastTransactionAt: w.LastTransactionAt,
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

// WalletsFromDomain converts wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// WalletTransactionResponse represents one balance change.
type WalletTransactionResponse struct {
	ID              string    `json:"id"`
	MovementID      string    `json:"movement_id,omitempty"`
	Reference       string    `json:"reference"`
	Description     string    `json:"description,omitempty"`
	Direction       string    `json:"direction"`
	Amount          string    `json:"amount"`
	PreviousBalance string    `json:"previous_balance"`
	CurrentBalance  string    `json:"current_balance"`
	CreatedAt       time.Time `json:"created_at"`
}

// WalletTransactionsFromDomain converts wallet transactions to responses.
func WalletTransactionsFromDomain(txs []*domain.WalletTransaction) []*WalletTransactionResponse {
	result := make([]*WalletTransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = &WalletTransactionResponse{
			ID:              t.ID,
			MovementID:      t.MovementID,
			Reference:       t.Reference,
			Description:     t.Description,
			Direction:       string(t.Direction),
			Amount:          money(t.Amount),
			PreviousBalance: money(t.PreviousBalance),
			CurrentBalance:  money(t.CurrentBalance),
			CreatedAt:       t.CreatedAt,
		}
	}
	return result
}

// FeeQuoteResponse is a priced fee.
type FeeQuoteResponse struct {
	SupplierCode       string             `json:"supplier_code"`
	ServiceType        string             `json:"service_type"`
	TierLevel          string             `json:"tier_level"`
	AmountMinor        int64              `json:"amount_minor"`
	SupplierCostMinor  int64              `json:"supplier_cost_minor"`
	PlatformFeeMinor   int64              `json:"platform_fee_minor"`
	TotalFeeMinor      int64              `json:"total_fee_minor"`
	TotalVATMinor      int64              `json:"total_vat_minor"`
	TotalUserPaysMinor int64              `json:"total_user_pays_minor"`
	Display            FeeDisplayResponse `json:"display"`
}

// FeeDisplayResponse carries rand-formatted amounts for clients.
type FeeDisplayResponse struct {
	Amount        string `json:"amount"`
	SupplierCost  string `json:"supplier_cost"`
	PlatformFee   string `json:"platform_fee"`
	VAT           string `json:"vat"`
	TotalFee      string `json:"total_fee"`
	TotalUserPays string `json:"total_user_pays"`
}

// FeeQuoteFromDomain converts a fee breakdown to a response.
func FeeQuoteFromDomain(b *domain.FeeBreakdown) *FeeQuoteResponse {
	return &FeeQuoteResponse{
		SupplierCode:       b.SupplierCode,
		ServiceType:        b.ServiceType,
		TierLevel:          string(b.TierLevel),
		AmountMinor:        b.AmountMinor,
		SupplierCostMinor:  b.SupplierCost.InclusiveMinor,
		PlatformFeeMinor:   b.PlatformFee.InclusiveMinor,
		TotalFeeMinor:      b.TotalFeeMinor,
		TotalVATMinor:      b.TotalVATMinor,
		TotalUserPaysMinor: b.TotalUserPaysMinor,
		Display:            FeeDisplayResponse(b.Display),
	}
}

// FeeConfigurationResponse represents a stored fee configuration.
type FeeConfigurationResponse struct {
	ID            string        `json:"id"`
	SupplierCode  string        `json:"supplier_code"`
	ServiceType   string        `json:"service_type"`
	TierLevel     string        `json:"tier_level"`
	SupplierCost  FeeLegRequest `json:"supplier_cost"`
	PlatformFee   FeeLegRequest `json:"platform_fee"`
	EffectiveFrom time.Time     `json:"effective_from"`
	EffectiveTo   *time.Time    `json:"effective_to,omitempty"`
}

// FeeConfigurationFromDomain converts a fee configuration to a response.
func FeeConfigurationFromDomain(c *domain.FeeConfiguration) *FeeConfigurationResponse {
	return &FeeConfigurationResponse{
		ID:            c.ID,
		SupplierCode:  c.SupplierCode,
		ServiceType:   c.ServiceType,
		TierLevel:     string(c.TierLevel),
		SupplierCost:  feeLegFromDomain(c.SupplierCost),
		PlatformFee:   feeLegFromDomain(c.PlatformFee),
		EffectiveFrom: c.EffectiveFrom,
		EffectiveTo:   c.EffectiveTo,
	}
}

func feeLegFromDomain(c domain.FeeLegConfig) FeeLegRequest {
	return FeeLegRequest{
		Type:               string(c.Type),
		FixedMinor:         c.FixedMinor,
		RateBasisPoints:    c.RateBasisPoints,
		VATRateBasisPoints: c.VATRateBasisPoints,
		VATInclusive:       c.VATInclusive,
	}
}

// MovementResponse is the envelope every money-moving call returns.
type MovementResponse struct {
	Reference         string     `json:"reference"`
	Rail              string     `json:"rail"`
	Status            string     `json:"status"`
	Reason            string     `json:"reason,omitempty"`
	Amount            string     `json:"amount"`
	Fee               string     `json:"fee"`
	Currency          string     `json:"currency"`
	ExternalReference string     `json:"external_reference,omitempty"`
	VoucherCode       string     `json:"voucher_code,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	AlreadyProcessed  bool       `json:"already_processed"`
	CreatedAt         time.Time  `json:"created_at"`
}

// MovementFromDomain converts a movement to a response.
func MovementFromDomain(m *domain.MoneyMovement, alreadyProcessed bool) *MovementResponse {
	return &MovementResponse{
		Reference:         m.MerchantTransactionID,
		Rail:              string(m.Rail),
		Status:            string(m.Status),
		Reason:            m.StatusReason,
		Amount:            money(m.Amount),
		Fee:               money(m.Fee),
		Currency:          m.Currency,
		ExternalReference: m.ExternalReference,
		VoucherCode:       m.VoucherCode,
		ExpiresAt:         m.ExpiresAt,
		AlreadyProcessed:  alreadyProcessed,
		CreatedAt:         m.CreatedAt,
	}
}

// MovementFromResult converts an orchestrator result to a response.
func MovementFromResult(r *usecase.MovementResult) *MovementResponse {
	return MovementFromDomain(r.Movement, r.AlreadyProcessed)
}

// SettlementFromResult converts a settlement result to a response.
func SettlementFromResult(r *usecase.SettlementResult) *MovementResponse {
	resp := MovementFromDomain(r.Movement, r.AlreadyProcessed)
	if resp.Reason == "" {
		resp.Reason = r.Reason
	}
	return resp
}

// MovementStatusResponse is the status query view.
type MovementStatusResponse struct {
	Reference   string     `json:"reference"`
	Rail        string     `json:"rail"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Amount      string     `json:"amount"`
	Fee         string     `json:"fee"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// MovementStatusFromView converts a status view to a response.
func MovementStatusFromView(v *domain.MovementStatusView) *MovementStatusResponse {
	return &MovementStatusResponse{
		Reference:   v.Reference,
		Rail:        string(v.Rail),
		Status:      string(v.Status),
		Reason:      v.Reason,
		Amount:      money(v.Amount),
		Fee:         money(v.Fee),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		CompletedAt: v.CompletedAt,
		ExpiresAt:   v.ExpiresAt,
	}
}

// TaxTransactionResponse represents a VAT record.
type TaxTransactionResponse struct {
	Reference       string    `json:"reference"`
	TaxType         string    `json:"tax_type"`
	BaseMinor       int64     `json:"base_minor"`
	TaxMinor        int64     `json:"tax_minor"`
	RateBasisPoints int64     `json:"rate_basis_points"`
	Direction       string    `json:"direction"`
	CreatedAt       time.Time `json:"created_at"`
}

// TaxTransactionsFromDomain converts tax rows to responses.
func TaxTransactionsFromDomain(rows []*domain.TaxTransaction) []*TaxTransactionResponse {
	result := make([]*TaxTransactionResponse, len(rows))
	for i, t := range rows {
		result[i] = &TaxTransactionResponse{
			Reference:       t.Reference,
			TaxType:         t.TaxType,
			BaseMinor:       t.BaseMinor,
			TaxMinor:        t.TaxMinor,
			RateBasisPoints: t.RateBasisPoints,
			Direction:       string(t.Direction),
			CreatedAt:       t.CreatedAt,
		}
	}
	return result
}

// SweepResponse summarises one sweep run.
type SweepResponse struct {
	Sweep     string `json:"sweep"`
	Scanned   int    `json:"scanned"`
	Applied   int    `json:"applied"`
	Refunded  int    `json:"refunded"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// SweepFromReport converts a sweep report to a response.
func SweepFromReport(sweep string, r *usecase.SweepReport) *SweepResponse {
	return &SweepResponse{
		Sweep:     sweep,
		Scanned:   r.Scanned,
		Applied:   r.Applied,
		Refunded:  r.Refunded,
		Unchanged: r.Unchanged,
		Failed:    r.Failed,
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
