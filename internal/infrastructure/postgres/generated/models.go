package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type AuditLog struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	RequestID    string             `json:"request_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type FeeConfiguration struct {
	ID                   string             `json:"id"`
	SupplierCode         string             `json:"supplier_code"`
	ServiceType          string             `json:"service_type"`
	TierLevel            string             `json:"tier_level"`
	SupplierFeeType      string             `json:"supplier_fee_type"`
	SupplierFixedMinor   int64              `json:"supplier_fixed_minor"`
	SupplierRateBp       int64              `json:"supplier_rate_bp"`
	SupplierVatBp        int64              `json:"supplier_vat_bp"`
	SupplierVatInclusive bool               `json:"supplier_vat_inclusive"`
	PlatformFeeType      string             `json:"platform_fee_type"`
	PlatformFixedMinor   int64              `json:"platform_fixed_minor"`
	PlatformRateBp       int64              `json:"platform_rate_bp"`
	PlatformVatBp        int64              `json:"platform_vat_bp"`
	PlatformVatInclusive bool               `json:"platform_vat_inclusive"`
	EffectiveFrom        pgtype.Timestamptz `json:"effective_from"`
	EffectiveTo          pgtype.Timestamptz `json:"effective_to"`
	CreatedAt            pgtype.Timestamptz `json:"created_at"`
}

type JournalEntry struct {
	ID          string             `json:"id"`
	Reference   string             `json:"reference"`
	Description string             `json:"description"`
	PostedAt    pgtype.Timestamptz `json:"posted_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type JournalLine struct {
	ID          string         `json:"id"`
	EntryID     string         `json:"entry_id"`
	AccountID   string         `json:"account_id"`
	AccountCode string         `json:"account_code"`
	Side        string         `json:"side"`
	Amount      pgtype.Numeric `json:"amount"`
	Memo        string         `json:"memo"`
	Position    int32          `json:"position"`
}

type LedgerAccount struct {
	ID         string             `json:"id"`
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	NormalSide string             `json:"normal_side"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

type MoneyMovement struct {
	ID                    string             `json:"id"`
	MerchantTransactionID string             `json:"merchant_transaction_id"`
	Rail                  string             `json:"rail"`
	Kind                  string             `json:"kind"`
	Direction             string             `json:"direction"`
	Status                string             `json:"status"`
	StatusReason          string             `json:"status_reason"`
	Amount                pgtype.Numeric     `json:"amount"`
	Fee                   pgtype.Numeric     `json:"fee"`
	FeeBreakdown          []byte             `json:"fee_breakdown"`
	Currency              string             `json:"currency"`
	UserID                string             `json:"user_id"`
	WalletID              string             `json:"wallet_id"`
	BeneficiaryWalletID   string             `json:"beneficiary_wallet_id"`
	ClearingAccountCode   string             `json:"clearing_account_code"`
	SettlementAccountCode string             `json:"settlement_account_code"`
	ExternalReference     string             `json:"external_reference"`
	VoucherCode           string             `json:"voucher_code"`
	ExpiresAt             pgtype.Timestamptz `json:"expires_at"`
	Debited               bool               `json:"debited"`
	BeneficiaryCredited   bool               `json:"beneficiary_credited"`
	RawRequest            []byte             `json:"raw_request"`
	RawResponse           []byte             `json:"raw_response"`
	Metadata              []byte             `json:"metadata"`
	Version               int64              `json:"version"`
	CreatedAt             pgtype.Timestamptz `json:"created_at"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
	CompletedAt           pgtype.Timestamptz `json:"completed_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	Attempts      int32              `json:"attempts"`
	LastError     string             `json:"last_error"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type TaxTransaction struct {
	ID              string             `json:"id"`
	MovementID      string             `json:"movement_id"`
	Reference       string             `json:"reference"`
	TaxType         string             `json:"tax_type"`
	BaseMinor       int64              `json:"base_minor"`
	TaxMinor        int64              `json:"tax_minor"`
	RateBasisPoints int64              `json:"rate_basis_points"`
	Direction       string             `json:"direction"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type UserTier struct {
	UserID    string             `json:"user_id"`
	TierLevel string             `json:"tier_level"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Wallet struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	Kind              string             `json:"kind"`
	Name              string             `json:"name"`
	LedgerAccountCode string             `json:"ledger_account_code"`
	Balance           pgtype.Numeric     `json:"balance"`
	AllowOverdraft    bool               `json:"allow_overdraft"`
	Status            string             `json:"status"`
	Version           int64              `json:"version"`
	LastTransactionAt pgtype.Timestamptz `json:"last_transaction_at"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

type WalletTransaction struct {
	ID              string             `json:"id"`
	WalletID        string             `json:"wallet_id"`
	MovementID      string             `json:"movement_id"`
	Reference       string             `json:"reference"`
	Description     string             `json:"description"`
	Direction       string             `json:"direction"`
	Amount          pgtype.Numeric     `json:"amount"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	CurrentBalance  pgtype.Numeric     `json:"current_balance"`
	WalletVersion   int64              `json:"wallet_version"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}
