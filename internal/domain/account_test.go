package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_SignedBalance(t *testing.T) {
	tests := []struct {
		name     string
		side     Side
		debits   decimal.Decimal
		credits  decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "debit normal asset",
			side:     SideDebit,
			debits:   decimal.NewFromInt(150),
			credits:  decimal.NewFromInt(50),
			expected: decimal.NewFromInt(100),
		},
		{
			name:     "credit normal liability",
			side:     SideCredit,
			debits:   decimal.NewFromInt(50),
			credits:  decimal.NewFromInt(150),
			expected: decimal.NewFromInt(100),
		},
		{
			name:     "credit normal overdrawn",
			side:     SideCredit,
			debits:   decimal.NewFromInt(200),
			credits:  decimal.NewFromInt(150),
			expected: decimal.NewFromInt(-50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{NormalSide: tt.side}
			got := acc.SignedBalance(tt.debits, tt.credits)
			if !got.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestWallet_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		status      WalletStatus
		overdraft   bool
		expectError error
	}{
		{
			name:        "overdraft allowed - debit more than balance",
			balance:     decimal.NewFromInt(100),
			status:      WalletStatusActive,
			overdraft:   true,
			debitAmount: decimal.NewFromInt(150),
		},
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			status:      WalletStatusActive,
			debitAmount: decimal.NewFromInt(150),
			expectError: ErrInsufficientFunds,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			status:      WalletStatusActive,
			debitAmount: decimal.NewFromInt(100),
		},
		{
			name:        "suspended wallet",
			balance:     decimal.NewFromInt(100),
			status:      WalletStatusSuspended,
			debitAmount: decimal.NewFromInt(10),
			expectError: ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{
				Balance:        tt.balance,
				Status:         tt.status,
				AllowOverdraft: tt.overdraft,
			}

			err := w.ValidateDebit(tt.debitAmount)

			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected %v, got %v", tt.expectError, err)
			}
		})
	}
}

func TestWallet_ValidateCredit(t *testing.T) {
	w := &Wallet{Status: WalletStatusInactive}

	if err := w.ValidateCredit(false); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
	if err := w.ValidateCredit(true); err != nil {
		t.Errorf("compensating credit should land on inactive wallet, got %v", err)
	}
}

func TestWallet_ApplyDebitCredit(t *testing.T) {
	w := &Wallet{Balance: decimal.NewFromInt(100)}

	if got := w.ApplyDebit(decimal.NewFromInt(30)); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected balance 70, got %s", got)
	}
	if got := w.ApplyCredit(decimal.NewFromInt(30)); !got.Equal(decimal.NewFromInt(130)) {
		t.Errorf("expected balance 130, got %s", got)
	}
}
