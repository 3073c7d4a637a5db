package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// MovementDeps bundles the collaborators shared by money-movement use cases.
type MovementDeps struct {
	TxManager TransactionManager
	Movements MovementRepository
	Wallets   WalletRepository
	Taxes     TaxRepository
	Outbox    OutboxRepository
	Audit     AuditRepository
	IDGen     IDGenerator
	Ledger    *LedgerUseCase
	Balance   *BalanceService
	Fees      *FeeCalculator
	Chart     ChartOfAccounts
	Metrics   *metrics.Metrics
}

// MovementResult is the envelope returned by orchestrators.
type MovementResult struct {
	Movement         *domain.MoneyMovement
	AlreadyProcessed bool
}

// outboundPlan describes a movement that debits the payer up front.
type outboundPlan struct {
	rail        domain.Rail
	kind        domain.MovementKind
	prefix      string
	reference   string
	userID      string
	walletID    string
	amount      decimal.Decimal
	fee         *domain.FeeBreakdown
	clearing    string
	settlement  string
	beneficiary string
	// preCredit credits the beneficiary with the principal at initiation.
	preCredit   bool
	voucherCode string
	externalRef string
	expiresAt   *time.Time
	dispatch    bool
	rawRequest  domain.JSON
	metadata    domain.JSON
	description string
}

// inboundPlan describes a movement that credits the wallet on completion.
type inboundPlan struct {
	rail        domain.Rail
	prefix      string
	reference   string
	userID      string
	walletID    string
	amount      decimal.Decimal
	externalRef string
	voucherCode string
	expiresAt   *time.Time
	rawRequest  domain.JSON
	metadata    domain.JSON
}

func (d *MovementDeps) newReference(prefix, supplied string) (string, error) {
	if supplied == "" {
		return prefix + "-" + d.IDGen.Generate(), nil
	}
	if err := domain.ValidateReference(supplied); err != nil {
		return "", err
	}
	return supplied, nil
}

// existing returns the movement already recorded under reference, if any.
func (d *MovementDeps) existing(ctx context.Context, reference, userID string) (*MovementResult, error) {
	m, err := d.Movements.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, domain.ErrMovementNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if userID != "" && m.UserID != userID {
		return nil, domain.ErrNotMovementOwner
	}
	return &MovementResult{Movement: m, AlreadyProcessed: true}, nil
}

// feeTotal returns the total fee of b in rand.
func feeTotal(b *domain.FeeBreakdown) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return domain.MinorToDecimal(b.TotalFeeMinor)
}

// initiateOutbound debits the payer, records the movement and posts the
// initiation entry in one unit of work.
func (d *MovementDeps) initiateOutbound(ctx context.Context, p outboundPlan) (*MovementResult, error) {
	if err := domain.ValidateAmount(p.amount); err != nil {
		return nil, err
	}
	if err := domain.RequireIdentifier("wallet id", p.walletID); err != nil {
		return nil, err
	}

	reference, err := d.newReference(p.prefix, p.reference)
	if err != nil {
		return nil, err
	}
	if res, err := d.existing(ctx, reference, p.userID); err != nil || res != nil {
		return res, err
	}

	fee := feeTotal(p.fee)
	total := p.amount.Add(fee)

	payer, err := d.Wallets.GetByID(ctx, p.walletID)
	if err != nil {
		return nil, err
	}
	if p.userID != "" && payer.OwnerID != p.userID {
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrUnauthorized, p.walletID)
	}
	if check := d.Balance.CanDebit(payer, total); !check.Allowed {
		return nil, check.Reason
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := d.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	wallets, err := d.Balance.LockWallets(txCtx, tx, sortedIDs(p.walletID, p.beneficiary)...)
	if err != nil {
		return nil, err
	}
	payer = wallets[p.walletID]

	now := time.Now().UTC()
	m := &domain.MoneyMovement{
		ID:                    d.IDGen.Generate(),
		MerchantTransactionID: reference,
		Rail:                  p.rail,
		Kind:                  p.kind,
		Direction:             domain.DirectionOutbound,
		Status:                domain.MovementStatusInitiated,
		Amount:                p.amount,
		Fee:                   fee,
		FeeBreakdown:          p.fee,
		Currency:              domain.Currency,
		UserID:                p.userID,
		WalletID:              p.walletID,
		BeneficiaryWalletID:   p.beneficiary,
		ClearingAccountCode:   p.clearing,
		SettlementAccountCode: p.settlement,
		ExternalReference:     p.externalRef,
		VoucherCode:           p.voucherCode,
		ExpiresAt:             p.expiresAt,
		Debited:               true,
		RawRequest:            p.rawRequest,
		Metadata:              p.metadata,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	bc := BalanceContext{MovementID: m.ID, Reference: reference, Description: p.description}
	if _, err := d.Balance.Debit(txCtx, tx, p.walletID, total, bc); err != nil {
		return nil, err
	}

	if p.preCredit {
		ben := wallets[p.beneficiary]
		if ben == nil {
			return nil, domain.ErrWalletNotFound
		}
		if _, err := d.Balance.Credit(txCtx, tx, ben.ID, p.amount, bc); err != nil {
			return nil, err
		}
		m.BeneficiaryCredited = true
		m.ClearingAccountCode = ben.LedgerAccountCode
		m.SettlementAccountCode = ben.LedgerAccountCode
	}

	if err := d.Movements.Create(txCtx, tx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			_ = tx.Rollback(txCtx)
			return d.existing(ctx, reference, p.userID)
		}
		return nil, err
	}

	lines := []JournalLineInput{
		{AccountCode: payer.LedgerAccountCode, Side: domain.SideDebit, Amount: total, Memo: "payer"},
		{AccountCode: m.ClearingAccountCode, Side: domain.SideCredit, Amount: p.amount, Memo: "principal"},
	}
	feeLines, err := d.feeLines(p.fee)
	if err != nil {
		return nil, err
	}
	lines = append(lines, feeLines...)

	if _, err := d.Ledger.PostJournalEntryTx(txCtx, tx, PostJournalEntryInput{
		Reference:   reference,
		Description: p.description,
		Lines:       lines,
	}); err != nil {
		return nil, err
	}

	if err := d.recordTax(txCtx, tx, m, domain.TaxDirectionCharge); err != nil {
		return nil, err
	}

	if err := d.emitInitiated(txCtx, tx, m, p.dispatch); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, d.Audit, d.IDGen, auditRecord{
		action:       domain.AuditActionMovementCreate,
		resourceType: domain.AggregateTypeMovement,
		resourceID:   m.ID,
		after:        m,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	d.countInitiated(m)
	logger.FromContext(ctx).Info().
		Str("reference", reference).
		Str("rail", string(m.Rail)).
		Str("amount", m.Amount.String()).
		Str("fee", m.Fee.String()).
		Msg("outbound movement initiated")

	return &MovementResult{Movement: m}, nil
}

// initiateInbound records a movement whose money arrives later. Nothing is
// posted until the rail confirms.
func (d *MovementDeps) initiateInbound(ctx context.Context, p inboundPlan) (*MovementResult, error) {
	if err := domain.ValidateAmount(p.amount); err != nil {
		return nil, err
	}
	if err := domain.RequireIdentifier("wallet id", p.walletID); err != nil {
		return nil, err
	}

	reference, err := d.newReference(p.prefix, p.reference)
	if err != nil {
		return nil, err
	}
	if res, err := d.existing(ctx, reference, p.userID); err != nil || res != nil {
		return res, err
	}

	wallet, err := d.Wallets.GetByID(ctx, p.walletID)
	if err != nil {
		return nil, err
	}
	if p.userID != "" && wallet.OwnerID != p.userID {
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrUnauthorized, p.walletID)
	}
	if err := wallet.ValidateCredit(false); err != nil {
		return nil, err
	}

	clearing, err := d.Chart.ClearingFor(p.rail)
	if err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := d.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := time.Now().UTC()
	m := &domain.MoneyMovement{
		ID:                    d.IDGen.Generate(),
		MerchantTransactionID: reference,
		Rail:                  p.rail,
		Kind:                  domain.MovementKindTopUp,
		Direction:             domain.DirectionInbound,
		Status:                domain.MovementStatusInitiated,
		Amount:                p.amount,
		Fee:                   decimal.Zero,
		Currency:              domain.Currency,
		UserID:                p.userID,
		WalletID:              p.walletID,
		ClearingAccountCode:   clearing,
		SettlementAccountCode: d.Chart.Bank,
		ExternalReference:     p.externalRef,
		VoucherCode:           p.voucherCode,
		ExpiresAt:             p.expiresAt,
		RawRequest:            p.rawRequest,
		Metadata:              p.metadata,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := d.Movements.Create(txCtx, tx, m); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			_ = tx.Rollback(txCtx)
			return d.existing(ctx, reference, p.userID)
		}
		return nil, err
	}

	if err := d.emitInitiated(txCtx, tx, m, p.rail.SupportsPolling()); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, d.Audit, d.IDGen, auditRecord{
		action:       domain.AuditActionMovementCreate,
		resourceType: domain.AggregateTypeMovement,
		resourceID:   m.ID,
		after:        m,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	d.countInitiated(m)
	logger.FromContext(ctx).Info().
		Str("reference", reference).
		Str("rail", string(m.Rail)).
		Str("amount", m.Amount.String()).
		Msg("inbound movement initiated")

	return &MovementResult{Movement: m}, nil
}

// feeLines credits every positive fee leg to its ledger account.
func (d *MovementDeps) feeLines(b *domain.FeeBreakdown) ([]JournalLineInput, error) {
	legs := b.LedgerLegs()
	lines := make([]JournalLineInput, 0, len(legs))
	for _, leg := range legs {
		code, err := d.Chart.FeeAccount(leg.Kind)
		if err != nil {
			return nil, err
		}
		lines = append(lines, JournalLineInput{
			AccountCode: code,
			Side:        domain.SideCredit,
			Amount:      domain.MinorToDecimal(leg.AmountMinor),
			Memo:        string(leg.Kind),
		})
	}
	return lines, nil
}

// recordTax appends the platform VAT row of m, matching the VAT control
// posting. Supplier VAT stays inside the supplier payable and is the
// supplier's to declare. Fee-free movements carry none.
func (d *MovementDeps) recordTax(ctx context.Context, tx Transaction, m *domain.MoneyMovement, direction domain.TaxDirection) error {
	b := m.FeeBreakdown
	if b == nil || b.PlatformFee.VATMinor == 0 {
		return nil
	}
	reference := m.MerchantTransactionID
	if direction == domain.TaxDirectionReversal {
		reference += reversalSuffix
	}
	return d.Taxes.Create(ctx, tx, &domain.TaxTransaction{
		ID:              d.IDGen.Generate(),
		MovementID:      m.ID,
		Reference:       reference,
		TaxType:         domain.TaxTypeVAT,
		BaseMinor:       b.TaxableBase(),
		TaxMinor:        b.PlatformFee.VATMinor,
		RateBasisPoints: b.PlatformFee.VATRateBasisPoints,
		Direction:       direction,
		CreatedAt:       time.Now().UTC(),
	})
}

// queueDispatch hands m to the outbox relay after a synchronous rail call
// failed. The relay redelivers under the same merchant transaction id.
func (d *MovementDeps) queueDispatch(ctx context.Context, m *domain.MoneyMovement, cause error) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := d.TxManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	payload := domain.RailDispatchEvent{
		MovementID:            m.ID,
		MerchantTransactionID: m.MerchantTransactionID,
		Rail:                  string(m.Rail),
	}.Map()
	payload["retry_of"] = cause.Error()
	if err := d.Outbox.Create(txCtx, tx, &domain.OutboxEvent{
		ID:            d.IDGen.Generate(),
		AggregateID:   m.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeRailDispatch,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		return err
	}
	return tx.Commit(txCtx)
}

func (d *MovementDeps) emitInitiated(ctx context.Context, tx Transaction, m *domain.MoneyMovement, dispatch bool) error {
	now := time.Now().UTC()
	events := []*domain.OutboxEvent{{
		ID:            d.IDGen.Generate(),
		AggregateID:   m.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeMovementInitiated,
		Payload: map[string]any{
			"movement_id":             m.ID,
			"merchant_transaction_id": m.MerchantTransactionID,
			"rail":                    string(m.Rail),
			"amount":                  m.Amount.String(),
		},
		CreatedAt: now,
	}}
	if dispatch {
		events = append(events, &domain.OutboxEvent{
			ID:            d.IDGen.Generate(),
			AggregateID:   m.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeRailDispatch,
			Payload: domain.RailDispatchEvent{
				MovementID:            m.ID,
				MerchantTransactionID: m.MerchantTransactionID,
				Rail:                  string(m.Rail),
			}.Map(),
			CreatedAt: now,
		})
	}
	for _, e := range events {
		if err := d.Outbox.Create(ctx, tx, e); err != nil {
			return err
		}
	}
	return nil
}

func (d *MovementDeps) countInitiated(m *domain.MoneyMovement) {
	if d.Metrics == nil {
		return
	}
	d.Metrics.MovementsInitiated.WithLabelValues(string(m.Rail)).Inc()
	d.Metrics.MovementAmount.WithLabelValues(string(m.Rail)).Observe(m.Amount.InexactFloat64())
}

// feeFor prices amount for userID. The principal must convert to whole cents.
func (d *MovementDeps) feeFor(ctx context.Context, userID, supplier, service string, amount decimal.Decimal) (*domain.FeeBreakdown, error) {
	return d.Fees.QuoteFee(ctx, userID, supplier, service, amount)
}
