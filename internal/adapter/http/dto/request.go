package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// CreateLedgerAccountRequest represents a request to add an account to the chart.
type CreateLedgerAccountRequest struct {
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=255"`
	Type       string `json:"type" validate:"required,oneof=asset liability equity revenue expense"`
	NormalSide string `json:"normal_side,omitempty" validate:"omitempty,oneof=debit credit"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLedgerAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Code:       r.Code,
		Name:       r.Name,
		Type:       domain.AccountType(r.Type),
		NormalSide: domain.Side(r.NormalSide),
	}
}

// RenameLedgerAccountRequest renames an account.
type RenameLedgerAccountRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// JournalLineRequest is one line of a manual journal entry.
type JournalLineRequest struct {
	AccountCode string          `json:"account_code" validate:"required"`
	Side        string          `json:"side" validate:"required,oneof=debit credit"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Memo        string          `json:"memo,omitempty" validate:"max=255"`
}

// PostJournalEntryRequest represents a manual journal posting.
type PostJournalEntryRequest struct {
	Reference   string               `json:"reference" validate:"required,max=100"`
	Description string               `json:"description,omitempty" validate:"max=500"`
	PostedAt    *time.Time           `json:"posted_at,omitempty"`
	Lines       []JournalLineRequest `json:"lines" validate:"required,min=2,dive"`
}

// ToUseCaseInput converts to use case input.
func (r *PostJournalEntryRequest) ToUseCaseInput() usecase.PostJournalEntryInput {
	lines := make([]usecase.JournalLineInput, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.JournalLineInput{
			AccountCode: l.AccountCode,
			Side:        domain.Side(l.Side),
			Amount:      l.Amount,
			Memo:        l.Memo,
		}
	}
	return usecase.PostJournalEntryInput{
		Reference:   r.Reference,
		Description: r.Description,
		PostedAt:    r.PostedAt,
		Lines:       lines,
	}
}

// CreateWalletRequest opens a wallet. OwnerID defaults to the caller.
type CreateWalletRequest struct {
	OwnerID           string `json:"owner_id,omitempty" validate:"max=100"`
	Kind              string `json:"kind" validate:"required,oneof=user supplier merchant client"`
	Name              string `json:"name,omitempty" validate:"max=255"`
	AllowOverdraft    bool   `json:"allow_overdraft,omitempty"`
	LedgerAccountCode string `json:"ledger_account_code,omitempty" validate:"max=20"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput(ownerID string) usecase.CreateWalletInput {
	if r.OwnerID != "" {
		ownerID = r.OwnerID
	}
	return usecase.CreateWalletInput{
		OwnerID:           ownerID,
		Kind:              domain.WalletKind(r.Kind),
		Name:              r.Name,
		AllowOverdraft:    r.AllowOverdraft,
		LedgerAccountCode: r.LedgerAccountCode,
	}
}

// FundWalletRequest credits a wallet from the bank account.
type FundWalletRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Reference   string          `json:"reference" validate:"required,max=100"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// WalletStatusRequest changes a wallet's status.
type WalletStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
}

// FeeQuoteRequest prices a transaction for the caller.
type FeeQuoteRequest struct {
	SupplierCode string          `json:"supplier_code" validate:"required,max=50"`
	ServiceType  string          `json:"service_type" validate:"required,max=50"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
}

// FeeLegRequest configures one fee leg.
type FeeLegRequest struct {
	Type               string `json:"type" validate:"required,oneof=fixed percentage hybrid"`
	FixedMinor         int64  `json:"fixed_minor" validate:"gte=0"`
	RateBasisPoints    int64  `json:"rate_basis_points" validate:"gte=0,lte=10000"`
	VATRateBasisPoints int64  `json:"vat_rate_basis_points" validate:"gte=0,lte=10000"`
	VATInclusive       bool   `json:"vat_inclusive"`
}

func (r FeeLegRequest) toDomain() domain.FeeLegConfig {
	return domain.FeeLegConfig{
		Type:               domain.FeeType(r.Type),
		FixedMinor:         r.FixedMinor,
		RateBasisPoints:    r.RateBasisPoints,
		VATRateBasisPoints: r.VATRateBasisPoints,
		VATInclusive:       r.VATInclusive,
	}
}

// ConfigureFeeRequest adds an effective-dated fee configuration.
type ConfigureFeeRequest struct {
	SupplierCode  string        `json:"supplier_code" validate:"required,max=50"`
	ServiceType   string        `json:"service_type" validate:"required,max=50"`
	TierLevel     string        `json:"tier_level" validate:"required,oneof=bronze silver gold platinum"`
	SupplierCost  FeeLegRequest `json:"supplier_cost"`
	PlatformFee   FeeLegRequest `json:"platform_fee"`
	EffectiveFrom time.Time     `json:"effective_from"`
	EffectiveTo   *time.Time    `json:"effective_to,omitempty"`
}

// ToDomain converts to a fee configuration.
func (r *ConfigureFeeRequest) ToDomain() domain.FeeConfiguration {
	return domain.FeeConfiguration{
		SupplierCode:  r.SupplierCode,
		ServiceType:   r.ServiceType,
		TierLevel:     domain.TierLevel(r.TierLevel),
		SupplierCost:  r.SupplierCost.toDomain(),
		PlatformFee:   r.PlatformFee.toDomain(),
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
	}
}

// SetTierRequest assigns a user's fee tier.
type SetTierRequest struct {
	Tier string `json:"tier" validate:"required,oneof=bronze silver gold platinum"`
}

// IssueVoucherRequest issues a voucher from the caller's wallet.
type IssueVoucherRequest struct {
	Reference     string          `json:"reference,omitempty" validate:"max=100"`
	WalletID      string          `json:"wallet_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	FloatWalletID string          `json:"float_wallet_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *IssueVoucherRequest) ToUseCaseInput(userID string) usecase.IssueVoucherInput {
	return usecase.IssueVoucherInput{
		Reference:     r.Reference,
		UserID:        userID,
		WalletID:      r.WalletID,
		Amount:        r.Amount,
		FloatWalletID: r.FloatWalletID,
	}
}

// RedeemVoucherRequest redeems a voucher into the caller's wallet.
type RedeemVoucherRequest struct {
	Code     string `json:"code" validate:"required,numeric,min=8,max=32"`
	WalletID string `json:"wallet_id" validate:"required"`
}

// PayShapRPPRequest pays out to a bank account or proxy.
type PayShapRPPRequest struct {
	Reference         string          `json:"reference,omitempty" validate:"max=100"`
	WalletID          string          `json:"wallet_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	BeneficiaryName   string          `json:"beneficiary_name" validate:"required,max=140"`
	BeneficiaryProxy  string          `json:"beneficiary_proxy,omitempty" validate:"max=100"`
	BeneficiaryBank   string          `json:"beneficiary_bank,omitempty" validate:"max=50"`
	BeneficiaryAcctNo string          `json:"beneficiary_account_number,omitempty" validate:"omitempty,numeric,max=20"`
	Narration         string          `json:"narration,omitempty" validate:"max=140"`
}

// ToUseCaseInput converts to use case input.
func (r *PayShapRPPRequest) ToUseCaseInput(userID string) usecase.InitiateRPPInput {
	return usecase.InitiateRPPInput{
		Reference:         r.Reference,
		UserID:            userID,
		WalletID:          r.WalletID,
		Amount:            r.Amount,
		BeneficiaryName:   r.BeneficiaryName,
		BeneficiaryProxy:  r.BeneficiaryProxy,
		BeneficiaryBank:   r.BeneficiaryBank,
		BeneficiaryAcctNo: r.BeneficiaryAcctNo,
		Narration:         r.Narration,
	}
}

// PayShapRTPRequest requests money from a payer.
type PayShapRTPRequest struct {
	Reference        string          `json:"reference,omitempty" validate:"max=100"`
	WalletID         string          `json:"wallet_id" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	PayerProxy       string          `json:"payer_proxy" validate:"required,max=100"`
	PayerName        string          `json:"payer_name,omitempty" validate:"max=140"`
	Narration        string          `json:"narration,omitempty" validate:"max=140"`
	ExpiresInMinutes int             `json:"expires_in_minutes,omitempty" validate:"gte=0,lte=10080"`
}

// ToUseCaseInput converts to use case input.
func (r *PayShapRTPRequest) ToUseCaseInput(userID string) usecase.InitiateRTPInput {
	return usecase.InitiateRTPInput{
		Reference:    r.Reference,
		UserID:       userID,
		WalletID:     r.WalletID,
		Amount:       r.Amount,
		PayerProxy:   r.PayerProxy,
		PayerName:    r.PayerName,
		Narration:    r.Narration,
		ExpiresAfter: time.Duration(r.ExpiresInMinutes) * time.Minute,
	}
}

// QRPayRequest pays a merchant QR code.
type QRPayRequest struct {
	Reference        string          `json:"reference,omitempty" validate:"max=100"`
	WalletID         string          `json:"wallet_id" validate:"required"`
	MerchantWalletID string          `json:"merchant_wallet_id" validate:"required"`
	QRCode           string          `json:"qr_code" validate:"required,max=1024"`
	Amount           decimal.Decimal `json:"amount" validate:"gt=0"`
	Tip              decimal.Decimal `json:"tip" validate:"gte=0"`
}

// ToUseCaseInput converts to use case input.
func (r *QRPayRequest) ToUseCaseInput(userID string) usecase.QRPayInput {
	return usecase.QRPayInput{
		Reference:        r.Reference,
		UserID:           userID,
		WalletID:         r.WalletID,
		MerchantWalletID: r.MerchantWalletID,
		QRCode:           r.QRCode,
		Amount:           r.Amount,
		Tip:              r.Tip,
	}
}

// DepositRequest starts a card or NFC deposit.
type DepositRequest struct {
	Reference  string          `json:"reference,omitempty" validate:"max=100"`
	WalletID   string          `json:"wallet_id" validate:"required"`
	Rail       string          `json:"rail" validate:"required,oneof=halodot_nfc peach_card"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Instrument map[string]any  `json:"instrument,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(userID string) usecase.InitiateDepositInput {
	return usecase.InitiateDepositInput{
		Reference:  r.Reference,
		UserID:     userID,
		WalletID:   r.WalletID,
		Rail:       domain.Rail(r.Rail),
		Amount:     r.Amount,
		Instrument: r.Instrument,
	}
}

// PaginationRequest represents pagination parameters.
type PaginationRequest struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
