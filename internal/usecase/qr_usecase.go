package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

// QRPaymentUseCase pays merchants by scanned Zapper QR code.
type QRPaymentUseCase struct {
	deps     *MovementDeps
	engine   *SettlementEngine
	registry RailRegistry
	tracker  StatusTracker
	expiry   time.Duration
}

// NewQRPaymentUseCase creates a new QRPaymentUseCase. Payments Zapper has not
// settled within expiry are expired and refunded by the expiry sweep.
func NewQRPaymentUseCase(deps *MovementDeps, engine *SettlementEngine, registry RailRegistry, expiry time.Duration) *QRPaymentUseCase {
	if expiry <= 0 {
		expiry = DefaultQRExpiry
	}
	return &QRPaymentUseCase{deps: deps, engine: engine, registry: registry, expiry: expiry}
}

// WithTracker polls payments Zapper accepted without settling.
func (uc *QRPaymentUseCase) WithTracker(t StatusTracker) *QRPaymentUseCase {
	uc.tracker = t
	return uc
}

// QRPayInput represents input for a QR payment.
type QRPayInput struct {
	Reference        string
	UserID           string
	WalletID         string
	MerchantWalletID string
	QRCode           string
	Amount           decimal.Decimal
	Tip              decimal.Decimal
}

// Pay debits the payer into Zapper clearing, calls Zapper after the commit
// and applies the answer. When Zapper cannot be reached the payment is
// handed to the outbox relay; a refusal refunds the payer.
func (uc *QRPaymentUseCase) Pay(ctx context.Context, input QRPayInput) (*MovementResult, error) {
	if err := domain.RequireIdentifier("qr code", input.QRCode); err != nil {
		return nil, err
	}
	if err := domain.RequireIdentifier("merchant wallet id", input.MerchantWalletID); err != nil {
		return nil, err
	}
	if input.Tip.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	amount := input.Amount.Add(input.Tip)

	fee, err := uc.deps.feeFor(ctx, input.UserID, SupplierZapper, ServiceQRPayment, amount)
	if err != nil {
		return nil, err
	}
	clearing, err := uc.deps.Chart.ClearingFor(domain.RailZapperQR)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().UTC().Add(uc.expiry)
	res, err := uc.deps.initiateOutbound(ctx, outboundPlan{
		rail:        domain.RailZapperQR,
		kind:        domain.MovementKindGeneric,
		prefix:      prefixQR,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      amount,
		fee:         fee,
		clearing:    clearing,
		beneficiary: input.MerchantWalletID,
		expiresAt:   &expiresAt,
		rawRequest: domain.JSON{
			"qr_code": input.QRCode,
			"tip":     input.Tip.String(),
		},
		description: "zapper qr payment",
	})
	if err != nil || res.AlreadyProcessed {
		return res, err
	}

	m := res.Movement
	log := logger.FromContext(ctx).With().Str("reference", m.MerchantTransactionID).Logger()

	client, err := uc.registry.Client(domain.RailZapperQR)
	if err != nil {
		log.Error().Err(err).Msg("zapper client unavailable")
		return uc.requeue(ctx, res, err)
	}
	resp, err := client.Initiate(ctx, railRequest(m))
	if errors.Is(err, domain.ErrRailRejected) {
		log.Warn().Err(err).Msg("zapper refused payment")
		refused, applyErr := uc.engine.ApplyOutcome(ctx, Outcome{
			MovementID: m.ID,
			Status:     domain.MovementStatusRejected,
			Reason:     err.Error(),
			Source:     SourceSync,
		})
		if applyErr != nil {
			log.Error().Err(applyErr).Msg("rejecting payment failed; left for expiry")
			return res, nil
		}
		return &MovementResult{Movement: refused.Movement}, nil
	}
	if err != nil {
		log.Warn().Err(err).Msg("zapper call failed")
		return uc.requeue(ctx, res, err)
	}

	settled, err := uc.engine.ApplyOutcome(ctx, outcomeFrom(m, resp, SourceSync))
	if err != nil {
		log.Error().Err(err).Msg("applying zapper outcome failed; payment left for recovery")
		return res, nil
	}
	if uc.tracker != nil {
		uc.tracker.Track(settled.Movement)
	}
	return &MovementResult{Movement: settled.Movement}, nil
}

// requeue queues a rail.dispatch event for a payment the synchronous call
// did not deliver. The payment stays initiated and expires if never settled.
func (uc *QRPaymentUseCase) requeue(ctx context.Context, res *MovementResult, cause error) (*MovementResult, error) {
	if err := uc.deps.queueDispatch(ctx, res.Movement, cause); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("reference", res.Movement.MerchantTransactionID).
			Msg("queueing zapper dispatch failed; payment left for expiry")
	}
	return res, nil
}
