package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// PayShapUseCase initiates PayShap Request-to-Pay and Rapid Payments.
type PayShapUseCase struct {
	deps      *MovementDeps
	rtpExpiry time.Duration
}

// NewPayShapUseCase creates a new PayShapUseCase.
func NewPayShapUseCase(deps *MovementDeps, rtpExpiry time.Duration) *PayShapUseCase {
	if rtpExpiry <= 0 {
		rtpExpiry = DefaultRTPExpiry
	}
	return &PayShapUseCase{deps: deps, rtpExpiry: rtpExpiry}
}

// InitiateRPPInput represents input for an outbound rapid payment.
type InitiateRPPInput struct {
	Reference         string
	UserID            string
	WalletID          string
	Amount            decimal.Decimal
	BeneficiaryName   string
	BeneficiaryProxy  string
	BeneficiaryBank   string
	BeneficiaryAcctNo string
	Narration         string
}

// InitiateRPP debits the payer and queues the payment for dispatch to the
// bank. A rejection later refunds principal and fee.
func (uc *PayShapUseCase) InitiateRPP(ctx context.Context, input InitiateRPPInput) (*MovementResult, error) {
	if err := domain.RequireIdentifier("beneficiary account or proxy", input.BeneficiaryProxy+input.BeneficiaryAcctNo); err != nil {
		return nil, err
	}
	fee, err := uc.deps.feeFor(ctx, input.UserID, SupplierStandardBank, ServicePayShapRPP, input.Amount)
	if err != nil {
		return nil, err
	}
	clearing, err := uc.deps.Chart.ClearingFor(domain.RailPayShapRPP)
	if err != nil {
		return nil, err
	}

	uetr := uuid.NewString()
	return uc.deps.initiateOutbound(ctx, outboundPlan{
		rail:        domain.RailPayShapRPP,
		kind:        domain.MovementKindGeneric,
		prefix:      prefixRPP,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      input.Amount,
		fee:         fee,
		clearing:    clearing,
		settlement:  uc.deps.Chart.Bank,
		externalRef: uetr,
		dispatch:    true,
		rawRequest: domain.JSON{
			"uetr":              uetr,
			"beneficiary_name":  input.BeneficiaryName,
			"beneficiary_proxy": input.BeneficiaryProxy,
			"beneficiary_bank":  input.BeneficiaryBank,
			"beneficiary_acct":  input.BeneficiaryAcctNo,
			"narration":         input.Narration,
		},
		description: "payshap rpp",
	})
}

// InitiateRTPInput represents input for an inbound request-to-pay.
type InitiateRTPInput struct {
	Reference    string
	UserID       string
	WalletID     string
	Amount       decimal.Decimal
	PayerProxy   string
	PayerName    string
	Narration    string
	ExpiresAfter time.Duration
}

// InitiateRTP records a request-to-pay and queues it for dispatch. Nothing
// moves until the payer's bank confirms.
func (uc *PayShapUseCase) InitiateRTP(ctx context.Context, input InitiateRTPInput) (*MovementResult, error) {
	if err := domain.RequireIdentifier("payer proxy", input.PayerProxy); err != nil {
		return nil, err
	}
	expiry := input.ExpiresAfter
	if expiry <= 0 {
		expiry = uc.rtpExpiry
	}
	expiresAt := time.Now().UTC().Add(expiry)

	uetr := uuid.NewString()
	return uc.deps.initiateInbound(ctx, inboundPlan{
		rail:        domain.RailPayShapRTP,
		prefix:      prefixRTP,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      input.Amount,
		externalRef: uetr,
		expiresAt:   &expiresAt,
		rawRequest: domain.JSON{
			"uetr":        uetr,
			"payer_proxy": input.PayerProxy,
			"payer_name":  input.PayerName,
			"narration":   input.Narration,
		},
	})
}
