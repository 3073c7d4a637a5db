package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

// OutcomeSource tells where a status outcome came from.
type OutcomeSource string

const (
	SourceCallback OutcomeSource = "callback"
	SourcePoll     OutcomeSource = "poll"
	SourceSweep    OutcomeSource = "sweep"
	SourceDispatch OutcomeSource = "dispatch"
	SourceUser     OutcomeSource = "user"
	SourceSync     OutcomeSource = "sync"
)

// Outcome is a status report for one movement. One of MovementID,
// Reference or (Rail, ExternalReference) identifies the record.
type Outcome struct {
	MovementID        string
	Reference         string
	ExternalReference string
	Rail              domain.Rail
	Status            domain.MovementStatus
	RawCode           string
	Reason            string
	Amount            *decimal.Decimal
	// BeneficiaryWalletID names the wallet credited on completion when the
	// movement did not fix one at initiation (voucher redemption).
	BeneficiaryWalletID string
	Payload             domain.JSON
	Source              OutcomeSource
}

// SettlementResult reports what ApplyOutcome did.
type SettlementResult struct {
	Movement         *domain.MoneyMovement
	Applied          bool
	AlreadyProcessed bool
	Refunded         bool
	Reason           string
}

// SettlementEngine drives money movements through their state machine and
// applies the financial side effects of each transition exactly once.
type SettlementEngine struct {
	deps *MovementDeps
	now  func() time.Time
}

// NewSettlementEngine creates a new SettlementEngine.
func NewSettlementEngine(deps *MovementDeps) *SettlementEngine {
	return &SettlementEngine{deps: deps, now: time.Now}
}

// ApplyOutcome applies o to its movement in one unit of work. Outcomes for
// terminal records are acknowledged without side effects.
func (e *SettlementEngine) ApplyOutcome(ctx context.Context, o Outcome) (*SettlementResult, error) {
	if !o.Status.IsValid() {
		return nil, fmt.Errorf("%w: status %q", domain.ErrInvalidCallback, o.Status)
	}

	start := e.now()
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := e.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	m, err := e.lockMovement(txCtx, tx, o)
	if err != nil {
		return nil, err
	}

	res, err := e.applyLocked(txCtx, tx, m, o)
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		return res, nil
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	e.observe(res, start)
	return res, nil
}

// Cancel cancels a non-terminal movement on behalf of userID, refunding any
// debit. An empty userID skips the ownership check.
func (e *SettlementEngine) Cancel(ctx context.Context, reference, userID string) (*SettlementResult, error) {
	if err := domain.RequireIdentifier("reference", reference); err != nil {
		return nil, err
	}

	start := e.now()
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := e.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	m, err := e.deps.Movements.GetByReferenceForUpdate(txCtx, tx, reference)
	if err != nil {
		return nil, err
	}
	if userID != "" && m.UserID != userID {
		return nil, domain.ErrNotMovementOwner
	}
	if m.Status == domain.MovementStatusCompleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrCannotCancelCompleted, reference)
	}

	res, err := e.applyLocked(txCtx, tx, m, Outcome{
		Status: domain.MovementStatusCancelled,
		Reason: "cancelled by user",
		Source: SourceUser,
	})
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		return res, nil
	}

	if err := writeAudit(txCtx, tx, e.deps.Audit, e.deps.IDGen, auditRecord{
		action:       domain.AuditActionMovementCancel,
		resourceType: domain.AggregateTypeMovement,
		resourceID:   m.ID,
		after:        m.View(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	e.observe(res, start)
	return res, nil
}

func (e *SettlementEngine) lockMovement(ctx context.Context, tx Transaction, o Outcome) (*domain.MoneyMovement, error) {
	switch {
	case o.MovementID != "":
		return e.deps.Movements.GetByIDForUpdate(ctx, tx, o.MovementID)
	case o.Reference != "":
		return e.deps.Movements.GetByReferenceForUpdate(ctx, tx, o.Reference)
	case o.ExternalReference != "" && o.Rail != "":
		return e.deps.Movements.GetByExternalReferenceForUpdate(ctx, tx, o.Rail, o.ExternalReference)
	}
	return nil, fmt.Errorf("%w: outcome names no movement", domain.ErrMissingIdentifier)
}

// applyLocked applies o to m, which the caller has locked inside tx. The
// caller commits only when the result reports Applied.
func (e *SettlementEngine) applyLocked(ctx context.Context, tx Transaction, m *domain.MoneyMovement, o Outcome) (*SettlementResult, error) {
	log := logger.FromContext(ctx).With().
		Str("reference", m.MerchantTransactionID).
		Str("rail", string(m.Rail)).
		Str("source", string(o.Source)).
		Logger()

	if o.Rail != "" && o.Rail != m.Rail {
		log.Warn().Str("outcome_rail", string(o.Rail)).Msg("outcome from another rail rejected")
		return nil, fmt.Errorf("%w: %s outcome for %s movement %s", domain.ErrInvalidCallback, o.Rail, m.Rail, m.MerchantTransactionID)
	}

	res := &SettlementResult{Movement: m}

	if m.Status.IsTerminal() {
		res.AlreadyProcessed = true
		res.Reason = "movement already " + string(m.Status)
		if e.deps.Metrics != nil {
			e.deps.Metrics.DuplicateCallbacks.WithLabelValues(string(m.Rail)).Inc()
		}
		log.Info().Str("status", string(m.Status)).Msg("outcome for terminal movement ignored")
		return res, nil
	}
	if o.Status == m.Status {
		res.Reason = "status unchanged"
		return res, nil
	}
	if !domain.CanTransition(m.Status, o.Status) {
		res.Reason = fmt.Sprintf("transition %s -> %s not allowed", m.Status, o.Status)
		log.Warn().Str("from", string(m.Status)).Str("to", string(o.Status)).Msg("illegal transition ignored")
		return res, nil
	}

	before := m.View()
	now := e.now().UTC()

	switch {
	case o.Status == domain.MovementStatusCompleted:
		if err := e.complete(ctx, tx, m, o); err != nil {
			return nil, err
		}
	case o.Status.IsFailure():
		refunded, err := e.compensate(ctx, tx, AsRefundable(m))
		if err != nil {
			return nil, err
		}
		res.Refunded = refunded
	}

	if m.ExternalReference == "" && o.ExternalReference != "" {
		m.ExternalReference = o.ExternalReference
	}
	m.Status = o.Status
	m.StatusReason = o.Reason
	if m.StatusReason == "" && o.RawCode != "" {
		m.StatusReason = o.RawCode
	}
	m.UpdatedAt = now
	m.Version++
	if o.Status.IsTerminal() {
		m.CompletedAt = &now
	}
	if len(o.Payload) > 0 {
		if m.RawResponse == nil {
			m.RawResponse = domain.JSON{}
		}
		for k, v := range o.Payload {
			m.RawResponse[k] = v
		}
	}
	m.AppendMetadata(domain.JSON{
		"last_outcome": map[string]any{
			"source": string(o.Source),
			"status": string(o.Status),
			"code":   o.RawCode,
			"at":     now.Format(time.RFC3339Nano),
		},
	})

	if err := e.deps.Movements.Update(ctx, tx, m); err != nil {
		return nil, err
	}

	if m.Status.IsTerminal() {
		event := &domain.OutboxEvent{
			ID:            e.deps.IDGen.Generate(),
			AggregateID:   m.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeMovementSettled,
			Payload: domain.MovementSettledEvent{
				MovementID:            m.ID,
				MerchantTransactionID: m.MerchantTransactionID,
				Rail:                  string(m.Rail),
				Status:                string(m.Status),
				Amount:                m.Amount.String(),
				Refunded:              res.Refunded,
			}.Map(),
			CreatedAt: now,
		}
		if err := e.deps.Outbox.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	action := domain.AuditActionMovementSettle
	if res.Refunded {
		action = domain.AuditActionMovementRefund
	}
	if err := writeAudit(ctx, tx, e.deps.Audit, e.deps.IDGen, auditRecord{
		action:       action,
		resourceType: domain.AggregateTypeMovement,
		resourceID:   m.ID,
		before:       before,
		after:        m.View(),
	}); err != nil {
		return nil, err
	}

	res.Applied = true
	log.Info().
		Str("from", string(before.Status)).
		Str("to", string(m.Status)).
		Bool("refunded", res.Refunded).
		Msg("movement transitioned")
	return res, nil
}

// complete applies the money side of a completion.
func (e *SettlementEngine) complete(ctx context.Context, tx Transaction, m *domain.MoneyMovement, o Outcome) error {
	if m.Direction == domain.DirectionInbound {
		return e.completeInbound(ctx, tx, m, o)
	}
	return e.completeOutbound(ctx, tx, m, o)
}

// completeInbound credits the wallet and posts Dr settlement / Cr wallet control.
func (e *SettlementEngine) completeInbound(ctx context.Context, tx Transaction, m *domain.MoneyMovement, o Outcome) error {
	if o.Amount != nil && !o.Amount.Equal(m.Amount) {
		logger.Critical(ctx).
			Str("reference", m.MerchantTransactionID).
			Str("expected", m.Amount.String()).
			Str("reported", o.Amount.String()).
			Msg("settlement amount mismatch")
		if e.deps.Metrics != nil {
			e.deps.Metrics.InvariantViolations.WithLabelValues("settle_inbound").Inc()
		}
		return fmt.Errorf("%w: %s expected %s got %s", domain.ErrAmountMismatch, m.MerchantTransactionID, m.Amount, o.Amount)
	}

	wallets, err := e.deps.Balance.LockWallets(ctx, tx, m.WalletID)
	if err != nil {
		return err
	}
	wallet := wallets[m.WalletID]

	bc := BalanceContext{MovementID: m.ID, Reference: m.MerchantTransactionID, Description: "settlement " + string(m.Rail)}
	if _, err := e.deps.Balance.Credit(ctx, tx, wallet.ID, m.Amount, bc); err != nil {
		return err
	}

	_, err = e.deps.Ledger.PostJournalEntryTx(ctx, tx, PostJournalEntryInput{
		Reference:   m.MerchantTransactionID + settleSuffix,
		Description: "inbound settlement " + string(m.Rail),
		Lines: []JournalLineInput{
			{AccountCode: m.SettlementAccountCode, Side: domain.SideDebit, Amount: m.Amount, Memo: "settlement"},
			{AccountCode: wallet.LedgerAccountCode, Side: domain.SideCredit, Amount: m.Amount, Memo: "wallet"},
		},
	})
	return err
}

// completeOutbound moves the principal out of clearing. Beneficiaries
// credited at initiation need no further posting.
func (e *SettlementEngine) completeOutbound(ctx context.Context, tx Transaction, m *domain.MoneyMovement, o Outcome) error {
	if m.BeneficiaryCredited {
		return nil
	}

	if m.BeneficiaryWalletID == "" && o.BeneficiaryWalletID != "" {
		m.BeneficiaryWalletID = o.BeneficiaryWalletID
	}

	settlement := m.SettlementAccountCode
	if m.BeneficiaryWalletID != "" {
		wallets, err := e.deps.Balance.LockWallets(ctx, tx, m.BeneficiaryWalletID)
		if err != nil {
			return err
		}
		ben := wallets[m.BeneficiaryWalletID]
		bc := BalanceContext{MovementID: m.ID, Reference: m.MerchantTransactionID, Description: "settlement " + string(m.Rail)}
		if _, err := e.deps.Balance.Credit(ctx, tx, ben.ID, m.Amount, bc); err != nil {
			return err
		}
		m.BeneficiaryCredited = true
		settlement = ben.LedgerAccountCode
		m.SettlementAccountCode = settlement
	}
	if settlement == "" {
		return fmt.Errorf("%w: settlement account for %s", domain.ErrLedgerAccountNotConfigured, m.MerchantTransactionID)
	}

	_, err := e.deps.Ledger.PostJournalEntryTx(ctx, tx, PostJournalEntryInput{
		Reference:   m.MerchantTransactionID + settleSuffix,
		Description: "outbound settlement " + string(m.Rail),
		Lines: []JournalLineInput{
			{AccountCode: m.ClearingAccountCode, Side: domain.SideDebit, Amount: m.Amount, Memo: "clearing"},
			{AccountCode: settlement, Side: domain.SideCredit, Amount: m.Amount, Memo: "settlement"},
		},
	})
	return err
}

// compensate unwinds a failed movement: wallet refunds, a mirror journal
// entry and a VAT reversal row. It reports whether anything was refunded.
func (e *SettlementEngine) compensate(ctx context.Context, tx Transaction, r RefundableMovement) (bool, error) {
	m := r.Movement()
	if !m.Debited {
		return false, nil
	}

	adjustments := r.Adjustments()
	ids := make([]string, 0, len(adjustments))
	for _, a := range adjustments {
		ids = append(ids, a.WalletID)
	}
	if len(ids) > 0 {
		if _, err := e.deps.Balance.LockWallets(ctx, tx, sortedIDs(ids...)...); err != nil {
			return false, err
		}
	}

	for _, a := range adjustments {
		bc := BalanceContext{
			MovementID:   m.ID,
			Reference:    m.MerchantTransactionID + reversalSuffix,
			Description:  a.Memo,
			Compensation: true,
		}
		var err error
		switch a.Side {
		case domain.SideCredit:
			_, err = e.deps.Balance.Credit(ctx, tx, a.WalletID, a.Amount, bc)
		case domain.SideDebit:
			_, err = e.deps.Balance.Debit(ctx, tx, a.WalletID, a.Amount, bc)
		}
		if err != nil {
			return false, fmt.Errorf("compensate %s: %w", m.MerchantTransactionID, err)
		}
	}

	if r.ReversesJournal() {
		_, err := e.deps.Ledger.ReverseEntryTx(ctx, tx,
			m.MerchantTransactionID,
			m.MerchantTransactionID+reversalSuffix,
			"reversal of "+m.MerchantTransactionID,
		)
		if err != nil {
			return false, err
		}
	}

	if err := e.deps.recordTax(ctx, tx, m, domain.TaxDirectionReversal); err != nil {
		return false, err
	}

	m.AppendMetadata(r.Annotations())
	m.AppendMetadata(domain.JSON{"refunded_amount": m.TotalDebit().String()})

	return len(adjustments) > 0, nil
}

func (e *SettlementEngine) observe(res *SettlementResult, start time.Time) {
	mt := e.deps.Metrics
	if mt == nil || res.Movement == nil {
		return
	}
	m := res.Movement
	mt.SettlementDuration.Observe(e.now().Sub(start).Seconds())
	if m.Status.IsTerminal() {
		mt.MovementsSettled.WithLabelValues(string(m.Rail), string(m.Status)).Inc()
	}
	if res.Refunded {
		mt.MovementsRefunded.WithLabelValues(string(m.Rail), string(m.Kind)).Inc()
	}
}

// railRequest builds the rail call for m. The merchant transaction id is
// the dedupe key the rail honours on redelivery.
func railRequest(m *domain.MoneyMovement) RailRequest {
	return RailRequest{
		Rail:              m.Rail,
		Reference:         m.MerchantTransactionID,
		ExternalReference: m.ExternalReference,
		Direction:         m.Direction,
		Amount:            m.Amount,
		Currency:          m.Currency,
		UserID:            m.UserID,
		ExpiresAt:         m.ExpiresAt,
		Details:           m.RawRequest,
	}
}

// outcomeFrom maps a rail response for m onto an outcome.
func outcomeFrom(m *domain.MoneyMovement, resp *RailResponse, source OutcomeSource) Outcome {
	return Outcome{
		MovementID:        m.ID,
		ExternalReference: resp.ExternalReference,
		Rail:              m.Rail,
		Status:            domain.MapRailStatus(m.Rail, resp.StatusCode),
		RawCode:           resp.StatusCode,
		Reason:            resp.Reason,
		Amount:            resp.Amount,
		Payload:           resp.Raw,
		Source:            source,
	}
}

// isNotFound reports whether err means the movement does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrMovementNotFound)
}
