package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is an immutable record of a single business event.
type JournalEntry struct {
	ID          string
	Reference   string
	Description string
	PostedAt    time.Time
	Lines       []JournalLine
	CreatedAt   time.Time
}

// JournalLine is one side of a journal entry against a single account.
type JournalLine struct {
	ID          string
	EntryID     string
	AccountID   string
	AccountCode string
	Side        Side
	Amount      decimal.Decimal
	Memo        string
	Position    int
}

// Totals returns the sum of debit and credit lines.
func (e *JournalEntry) Totals() (debits, credits decimal.Decimal) {
	for _, l := range e.Lines {
		switch l.Side {
		case SideDebit:
			debits = debits.Add(l.Amount)
		case SideCredit:
			credits = credits.Add(l.Amount)
		}
	}
	return debits, credits
}

// Validate checks the double-entry invariants of the entry.
func (e *JournalEntry) Validate() error {
	if err := ValidateReference(e.Reference); err != nil {
		return err
	}
	if len(e.Lines) < 2 {
		return ErrInsufficientLines
	}
	for _, l := range e.Lines {
		if !l.Side.IsValid() {
			return ErrInvalidLineSide
		}
		if !l.Amount.IsPositive() {
			return ErrInvalidLineAmount
		}
	}
	debits, credits := e.Totals()
	if !debits.Equal(credits) {
		return ErrUnbalancedEntry
	}
	return nil
}

// Reverse builds the compensating entry: same accounts and amounts, sides swapped.
func (e *JournalEntry) Reverse(reference, description string, postedAt time.Time) *JournalEntry {
	rev := &JournalEntry{
		Reference:   reference,
		Description: description,
		PostedAt:    postedAt,
		Lines:       make([]JournalLine, 0, len(e.Lines)),
	}
	for i, l := range e.Lines {
		rev.Lines = append(rev.Lines, JournalLine{
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Side:        l.Side.Opposite(),
			Amount:      l.Amount,
			Memo:        l.Memo,
			Position:    i,
		})
	}
	return rev
}

// AccountBalance is one row of a trial balance.
type AccountBalance struct {
	Account *Account
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Balance decimal.Decimal
}

// TrialBalanceTotals summarises a trial balance. Net is Σ(debits-credits)
// over every account and is zero for a consistent ledger.
type TrialBalanceTotals struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Net     decimal.Decimal
}

// TrialBalance lists every account's balance.
type TrialBalance struct {
	Balances    []AccountBalance
	Totals      TrialBalanceTotals
	GeneratedAt time.Time
}

// Balanced reports whether the trial balance nets to zero.
func (tb *TrialBalance) Balanced() bool {
	return tb.Totals.Net.IsZero() && tb.Totals.Debits.Equal(tb.Totals.Credits)
}
