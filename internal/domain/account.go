package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the accounting classification of a ledger account.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Side is either side of a double-entry posting.
type Side string

const (
	SideDebit  Side = "debit"
	SideCredit Side = "credit"
)

// IsValid reports whether s is debit or credit.
func (s Side) IsValid() bool {
	return s == SideDebit || s == SideCredit
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideDebit {
		return SideCredit
	}
	return SideDebit
}

// Account represents a ledger account in the chart of accounts.
type Account struct {
	ID         string
	Code       string
	Name       string
	Type       AccountType
	NormalSide Side
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SignedBalance converts raw debit and credit totals into a balance using
// the account's normal-side sign convention.
func (a *Account) SignedBalance(debits, credits decimal.Decimal) decimal.Decimal {
	net := debits.Sub(credits)
	if a.NormalSide == SideCredit {
		return net.Neg()
	}
	return net
}
