package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

func TestWalletFromDomain(t *testing.T) {
	now := time.Now()
	w := &domain.Wallet{
		ID:                "w-1",
		OwnerID:           "user-1",
		Kind:              domain.WalletKindUser,
		LedgerAccountCode: "2100",
		Balance:           decimal.RequireFromString("123.4"),
		Status:            domain.WalletStatusActive,
		Version:           2,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	resp := WalletFromDomain(w)
	if resp.ID != "w-1" || resp.Balance != "123.40" || resp.Currency != "ZAR" || resp.Version != 2 {
		t.Fatalf("unexpected wallet response: %+v", resp)
	}
}

func TestMovementFromResult(t *testing.T) {
	m := &domain.MoneyMovement{
		MerchantTransactionID: "RPP-1",
		Rail:                  domain.RailPayShapRPP,
		Status:                domain.MovementStatusProcessing,
		Amount:                decimal.NewFromInt(100),
		Fee:                   decimal.RequireFromString("5.75"),
		Currency:              "ZAR",
	}

	resp := MovementFromResult(&usecase.MovementResult{Movement: m, AlreadyProcessed: true})
	if resp.Reference != "RPP-1" || resp.Amount != "100.00" || resp.Fee != "5.75" || !resp.AlreadyProcessed {
		t.Fatalf("unexpected movement response: %+v", resp)
	}

	settled := SettlementFromResult(&usecase.SettlementResult{Movement: m, Reason: "cancelled by user"})
	if settled.Reason != "cancelled by user" || settled.AlreadyProcessed {
		t.Fatalf("unexpected settlement response: %+v", settled)
	}
}

func TestTrialBalanceFromDomain(t *testing.T) {
	tb := &domain.TrialBalance{
		Balances: []domain.AccountBalance{
			{Account: &domain.Account{Code: "1000", Name: "Bank", Type: domain.AccountTypeAsset}, Debits: decimal.NewFromInt(10), Balance: decimal.NewFromInt(10)},
			{Account: &domain.Account{Code: "2100", Name: "User wallets", Type: domain.AccountTypeLiability}, Credits: decimal.NewFromInt(10), Balance: decimal.NewFromInt(10)},
		},
		Totals: domain.TrialBalanceTotals{Debits: decimal.NewFromInt(10), Credits: decimal.NewFromInt(10)},
	}

	resp := TrialBalanceFromDomain(tb)
	if !resp.Balanced || len(resp.Accounts) != 2 || resp.TotalDebits != "10.00" || resp.Accounts[1].Credits != "10.00" {
		t.Fatalf("unexpected trial balance response: %+v", resp)
	}
}

func TestFeeQuoteFromDomain(t *testing.T) {
	b := &domain.FeeBreakdown{
		SupplierCode:       "SBSA",
		ServiceType:        "payshap_rpp",
		TierLevel:          domain.TierGold,
		AmountMinor:        10000,
		PlatformFee:        domain.FeeLeg{InclusiveMinor: 300},
		TotalFeeMinor:      300,
		TotalUserPaysMinor: 10300,
		Display:            domain.FeeDisplay{TotalFee: "R3.00"},
	}

	resp := FeeQuoteFromDomain(b)
	if resp.TierLevel != "gold" || resp.PlatformFeeMinor != 300 || resp.Display.TotalFee != "R3.00" {
		t.Fatalf("unexpected fee quote response: %+v", resp)
	}
}
