package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// LedgerUseCase is the double-entry ledger engine.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo LedgerAccountRepository
	journalRepo JournalRepository
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo LedgerAccountRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	metrics *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		metrics:     metrics,
	}
}

// CreateAccountInput represents input for creating a ledger account.
type CreateAccountInput struct {
	Code       string
	Name       string
	Type       domain.AccountType
	NormalSide domain.Side
}

// CreateAccount adds an account to the chart of accounts.
func (uc *LedgerUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountCode(input.Code); err != nil {
		return nil, err
	}
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAccountType, input.Type)
	}
	if !input.NormalSide.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidNormalSide, input.NormalSide)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	existing, err := uc.accountRepo.GetByCodesTx(txCtx, tx, []string{input.Code})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateAccountCode, input.Code)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:         uc.idGen.Generate(),
		Code:       input.Code,
		Name:       strings.TrimSpace(input.Name),
		Type:       input.Type,
		NormalSide: input.NormalSide,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := uc.accountRepo.Create(txCtx, tx, account); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountCreated,
		Payload: map[string]any{
			"account_id":  account.ID,
			"code":        account.Code,
			"type":        string(account.Type),
			"normal_side": string(account.NormalSide),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.auditRepo, uc.idGen, auditRecord{
		action:       domain.AuditActionAccountCreate,
		resourceType: domain.AggregateTypeAccount,
		resourceID:   account.ID,
		after:        account,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// EnsureChart creates every account of the chart that does not exist yet.
func (uc *LedgerUseCase) EnsureChart(ctx context.Context, chart ChartOfAccounts) error {
	for _, acct := range chart.Specs() {
		_, err := uc.CreateAccount(ctx, CreateAccountInput{
			Code:       acct.Code,
			Name:       acct.Name,
			Type:       acct.Type,
			NormalSide: acct.NormalSide,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicateAccountCode) {
			return fmt.Errorf("bootstrap account %s: %w", acct.Code, err)
		}
	}
	return nil
}

// RenameAccount changes an account's display name. Type and normal side are fixed.
func (uc *LedgerUseCase) RenameAccount(ctx context.Context, code, name string) (*domain.Account, error) {
	if err := domain.ValidateAccountName(name); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	accounts, err := uc.accountRepo.GetByCodesTx(txCtx, tx, []string{code})
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, code)
	}

	before := *accounts[0]
	account := accounts[0]
	account.Name = strings.TrimSpace(name)
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.UpdateName(txCtx, tx, code, account.Name, account.UpdatedAt); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   account.ID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeAccountRenamed,
		Payload: map[string]any{
			"account_id": account.ID,
			"code":       account.Code,
			"old_name":   before.Name,
			"name":       account.Name,
		},
		CreatedAt: account.UpdatedAt,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.auditRepo, uc.idGen, auditRecord{
		action:       domain.AuditActionAccountRename,
		resourceType: domain.AggregateTypeAccount,
		resourceID:   account.ID,
		before:       before,
		after:        account,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("code", code).
		Str("old_name", before.Name).
		Str("new_name", account.Name).
		Msg("ledger account renamed")

	return account, nil
}

// GetAccount retrieves an account by code.
func (uc *LedgerUseCase) GetAccount(ctx context.Context, code string) (*domain.Account, error) {
	return uc.accountRepo.GetByCode(ctx, code)
}

// ListAccounts lists the chart of accounts with pagination.
func (uc *LedgerUseCase) ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// JournalLineInput is one line of a journal entry to post. Either
// AccountID or AccountCode identifies the account.
type JournalLineInput struct {
	AccountID   string
	AccountCode string
	Side        domain.Side
	Amount      decimal.Decimal
	Memo        string
}

// PostJournalEntryInput represents input for posting a journal entry.
type PostJournalEntryInput struct {
	Reference   string
	Description string
	PostedAt    *time.Time
	Lines       []JournalLineInput
}

// PostJournalEntry posts a balanced entry in its own transaction.
func (uc *LedgerUseCase) PostJournalEntry(ctx context.Context, input PostJournalEntryInput) (*domain.JournalEntry, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	entry, err := uc.PostJournalEntryTx(txCtx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := writeAudit(txCtx, tx, uc.auditRepo, uc.idGen, auditRecord{
		action:       domain.AuditActionJournalPost,
		resourceType: domain.AggregateTypeJournal,
		resourceID:   entry.ID,
		after:        entry,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return entry, nil
}

// PostJournalEntryTx posts a balanced entry inside the caller's unit of
// work. Nothing is written unless every line resolves and the entry balances.
func (uc *LedgerUseCase) PostJournalEntryTx(ctx context.Context, tx Transaction, input PostJournalEntryInput) (*domain.JournalEntry, error) {
	now := time.Now().UTC()
	postedAt := now
	if input.PostedAt != nil {
		postedAt = input.PostedAt.UTC()
	}

	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		Reference:   input.Reference,
		Description: input.Description,
		PostedAt:    postedAt,
		CreatedAt:   now,
		Lines:       make([]domain.JournalLine, 0, len(input.Lines)),
	}
	for i, l := range input.Lines {
		entry.Lines = append(entry.Lines, domain.JournalLine{
			ID:          uc.idGen.Generate(),
			EntryID:     entry.ID,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        l.Side,
			Amount:      l.Amount,
			Memo:        l.Memo,
			Position:    i,
		})
	}

	if err := entry.Validate(); err != nil {
		if errors.Is(err, domain.ErrUnbalancedEntry) {
			debits, credits := entry.Totals()
			logger.Critical(ctx).
				Str("reference", entry.Reference).
				Str("debits", debits.String()).
				Str("credits", credits.String()).
				Msg("rejected unbalanced journal entry")
			if uc.metrics != nil {
				uc.metrics.InvariantViolations.WithLabelValues("post_journal_entry").Inc()
			}
		}
		return nil, err
	}

	if err := uc.resolveAccounts(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeJournal,
		EventType:     domain.EventTypeJournalPosted,
		Payload: map[string]any{
			"entry_id":  entry.ID,
			"reference": entry.Reference,
			"lines":     len(entry.Lines),
		},
		CreatedAt: now,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JournalEntriesPosted.Inc()
		uc.metrics.JournalLinesPosted.Add(float64(len(entry.Lines)))
	}

	return entry, nil
}

// resolveAccounts fills AccountID and AccountCode on every line.
func (uc *LedgerUseCase) resolveAccounts(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error {
	var codes, ids []string
	for _, l := range entry.Lines {
		if l.AccountID != "" {
			ids = append(ids, l.AccountID)
		} else {
			codes = append(codes, l.AccountCode)
		}
	}

	byCode := make(map[string]*domain.Account)
	byID := make(map[string]*domain.Account)

	if len(codes) > 0 {
		accounts, err := uc.accountRepo.GetByCodesTx(ctx, tx, uniqueSorted(codes))
		if err != nil {
			return err
		}
		for _, a := range accounts {
			byCode[a.Code] = a
		}
	}
	if len(ids) > 0 {
		accounts, err := uc.accountRepo.GetByIDsTx(ctx, tx, uniqueSorted(ids))
		if err != nil {
			return err
		}
		for _, a := range accounts {
			byID[a.ID] = a
		}
	}

	for i := range entry.Lines {
		l := &entry.Lines[i]
		var acc *domain.Account
		if l.AccountID != "" {
			acc = byID[l.AccountID]
		} else {
			acc = byCode[l.AccountCode]
		}
		if acc == nil {
			return fmt.Errorf("%w: line %d (%s%s)", domain.ErrAccountNotFound, i, l.AccountID, l.AccountCode)
		}
		l.AccountID = acc.ID
		l.AccountCode = acc.Code
	}
	return nil
}

// ReverseEntryTx posts the mirror of the entry posted under originalRef. The
// original entry is never modified.
func (uc *LedgerUseCase) ReverseEntryTx(ctx context.Context, tx Transaction, originalRef, reversalRef, description string) (*domain.JournalEntry, error) {
	original, err := uc.journalRepo.GetByReferenceTx(ctx, tx, originalRef)
	if err != nil {
		return nil, err
	}

	mirror := original.Reverse(reversalRef, description, time.Now().UTC())
	input := PostJournalEntryInput{
		Reference:   mirror.Reference,
		Description: mirror.Description,
		Lines:       make([]JournalLineInput, 0, len(mirror.Lines)),
	}
	for _, l := range mirror.Lines {
		input.Lines = append(input.Lines, JournalLineInput{
			AccountID: l.AccountID,
			Side:      l.Side,
			Amount:    l.Amount,
			Memo:      l.Memo,
		})
	}
	return uc.PostJournalEntryTx(ctx, tx, input)
}

// GetEntryByReference returns a posted entry, so callers can check before re-posting.
func (uc *LedgerUseCase) GetEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	return uc.journalRepo.GetByReference(ctx, reference)
}

// GetTrialBalance computes every account's balance under its normal-side
// sign convention.
func (uc *LedgerUseCase) GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	limit, offset, _ := domain.ValidatePagination(1000, 0)

	var accounts []*domain.Account
	for {
		page, err := uc.accountRepo.List(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, page...)
		if len(page) < limit {
			break
		}
		offset += limit
	}

	totals, err := uc.journalRepo.AccountTotals(ctx)
	if err != nil {
		return nil, err
	}
	totalsByAccount := make(map[string]AccountTotals, len(totals))
	for _, t := range totals {
		totalsByAccount[t.AccountID] = t
	}

	tb := &domain.TrialBalance{
		Balances:    make([]domain.AccountBalance, 0, len(accounts)),
		GeneratedAt: time.Now().UTC(),
	}
	for _, acc := range accounts {
		t := totalsByAccount[acc.ID]
		tb.Balances = append(tb.Balances, domain.AccountBalance{
			Account: acc,
			Debits:  t.Debits,
			Credits: t.Credits,
			Balance: acc.SignedBalance(t.Debits, t.Credits),
		})
		tb.Totals.Debits = tb.Totals.Debits.Add(t.Debits)
		tb.Totals.Credits = tb.Totals.Credits.Add(t.Credits)
		tb.Totals.Net = tb.Totals.Net.Add(t.Debits.Sub(t.Credits))
	}

	sort.Slice(tb.Balances, func(i, j int) bool {
		return tb.Balances[i].Account.Code < tb.Balances[j].Account.Code
	})

	if !tb.Balanced() {
		logger.Critical(ctx).
			Str("debits", tb.Totals.Debits.String()).
			Str("credits", tb.Totals.Credits.String()).
			Msg("trial balance does not net to zero")
	}

	return tb, nil
}

// CheckConsistency verifies that Σdebit lines equals Σcredit lines over the
// whole ledger.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	debits, credits, err := uc.journalRepo.CheckConsistency(ctx)
	if err != nil {
		return false, err
	}

	if !debits.Equal(credits) {
		logger.Critical(ctx).
			Str("debits", debits.String()).
			Str("credits", credits.String()).
			Msg("ledger inconsistency detected")
		if uc.metrics != nil {
			uc.metrics.InvariantViolations.WithLabelValues("check_consistency").Inc()
		}
		return false, fmt.Errorf("%w: debits=%s credits=%s", domain.ErrInconsistentLedger, debits, credits)
	}

	return true, nil
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
