package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletKind identifies who a balance is held for.
type WalletKind string

const (
	WalletKindUser     WalletKind = "user"
	WalletKindSupplier WalletKind = "supplier"
	WalletKindMerchant WalletKind = "merchant"
	WalletKindClient   WalletKind = "client"
)

// IsValid reports whether k is a known wallet kind.
func (k WalletKind) IsValid() bool {
	switch k {
	case WalletKindUser, WalletKindSupplier, WalletKindMerchant, WalletKindClient:
		return true
	}
	return false
}

// WalletStatus controls whether a wallet may move money.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusInactive  WalletStatus = "inactive"
	WalletStatusSuspended WalletStatus = "suspended"
)

// IsValid reports whether s is a known wallet status.
func (s WalletStatus) IsValid() bool {
	switch s {
	case WalletStatusActive, WalletStatusInactive, WalletStatusSuspended:
		return true
	}
	return false
}

// Wallet is a balance-bearing user wallet or float account. Its balance
// rolls up into the ledger account identified by LedgerAccountCode.
type Wallet struct {
	ID                string
	OwnerID           string
	Kind              WalletKind
	Name              string
	LedgerAccountCode string
	Balance           decimal.Decimal
	AllowOverdraft    bool
	Status            WalletStatus
	Version           int64
	LastTransactionAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateDebit checks if the wallet can be debited by amount.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Status != WalletStatusActive {
		return ErrAccountInactive
	}
	if !w.AllowOverdraft && w.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks if the wallet can be credited. Compensating
// credits land regardless of status so refunds are never stranded.
func (w *Wallet) ValidateCredit(compensation bool) error {
	if !compensation && w.Status != WalletStatusActive {
		return ErrAccountInactive
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}

// WalletTransaction records a single balance change of a wallet.
type WalletTransaction struct {
	ID              string
	WalletID        string
	MovementID      string
	Reference       string
	Description     string
	Direction       Side
	Amount          decimal.Decimal
	PreviousBalance decimal.Decimal
	CurrentBalance  decimal.Decimal
	WalletVersion   int64
	CreatedAt       time.Time
}
