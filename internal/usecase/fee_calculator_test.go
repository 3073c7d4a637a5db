package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
	"github.com/mymoolah/walletcore/internal/usecase/mocks"
)

func zapperConfig(tier domain.TierLevel) *domain.FeeConfiguration {
	return &domain.FeeConfiguration{
		ID:            "cfg-" + string(tier),
		SupplierCode:  usecase.SupplierZapper,
		ServiceType:   usecase.ServiceQRPayment,
		TierLevel:     tier,
		SupplierCost:  domain.FeeLegConfig{Type: domain.FeeTypeFixed, FixedMinor: 250},
		PlatformFee:   domain.FeeLegConfig{Type: domain.FeeTypeFixed, FixedMinor: 50, VATRateBasisPoints: 1500},
		EffectiveFrom: time.Now().Add(-time.Hour),
	}
}

func TestFeeCalculator_CalculateTierFees(t *testing.T) {
	ctrl := gomock.NewController(t)
	tiers := mocks.NewMockTierResolver(ctrl)
	tiers.EXPECT().GetUserTier(gomock.Any(), "user-1").Return(domain.TierBronze, nil)

	calc := usecase.NewFeeCalculator(mocks.NewMockFeeConfigRepository(zapperConfig(domain.TierBronze)), tiers, nil)
	b, err := calc.CalculateTierFees(context.Background(), "user-1", usecase.SupplierZapper, usecase.ServiceQRPayment, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.SupplierCost.InclusiveMinor != 250 {
		t.Fatalf("supplier cost = %d, want 250", b.SupplierCost.InclusiveMinor)
	}
	if b.PlatformFee.VATMinor != 8 {
		t.Fatalf("platform vat = %d, want 8", b.PlatformFee.VATMinor)
	}
	if b.TotalFeeMinor != 308 || b.TotalUserPaysMinor != 10308 {
		t.Fatalf("total fee %d user pays %d, want 308 and 10308", b.TotalFeeMinor, b.TotalUserPaysMinor)
	}
	if b.PlatformNetRevenueMinor != 50 {
		t.Fatalf("platform net revenue = %d, want 50", b.PlatformNetRevenueMinor)
	}
	if b.Display.TotalUserPays != "R103.08" {
		t.Fatalf("display = %q, want R103.08", b.Display.TotalUserPays)
	}
}

func TestFeeCalculator_TierLookupFailureUsesDefaultTier(t *testing.T) {
	ctrl := gomock.NewController(t)
	tiers := mocks.NewMockTierResolver(ctrl)
	tiers.EXPECT().GetUserTier(gomock.Any(), "user-1").Return(domain.TierLevel(""), errors.New("cache down"))

	repo := mocks.NewMockFeeConfigRepository(zapperConfig(domain.DefaultTier), zapperConfig(domain.TierGold))
	calc := usecase.NewFeeCalculator(repo, tiers, nil)

	b, err := calc.CalculateTierFees(context.Background(), "user-1", usecase.SupplierZapper, usecase.ServiceQRPayment, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TierLevel != domain.DefaultTier {
		t.Fatalf("tier = %s, want %s", b.TierLevel, domain.DefaultTier)
	}
}

func TestFeeCalculator_Errors(t *testing.T) {
	tests := []struct {
		name        string
		supplier    string
		service     string
		amount      int64
		expectedErr error
	}{
		{name: "unconfigured service", supplier: usecase.SupplierZapper, service: "bill_payment", amount: 100, expectedErr: domain.ErrFeeConfigurationNotFound},
		{name: "zero amount", supplier: usecase.SupplierZapper, service: usecase.ServiceQRPayment, amount: 0, expectedErr: domain.ErrInvalidAmount},
		{name: "negative amount", supplier: usecase.SupplierZapper, service: usecase.ServiceQRPayment, amount: -5, expectedErr: domain.ErrInvalidAmount},
		{name: "blank supplier", supplier: " ", service: usecase.ServiceQRPayment, amount: 100, expectedErr: domain.ErrMissingIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := usecase.NewFeeCalculator(mocks.NewMockFeeConfigRepository(zapperConfig(domain.TierBronze)), nil, nil)
			_, err := calc.CalculateTierFees(context.Background(), "", tt.supplier, tt.service, tt.amount)
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestFeeCalculator_RoundingSums(t *testing.T) {
	cfg := &domain.FeeConfiguration{
		ID:            "pct",
		SupplierCode:  usecase.SupplierStandardBank,
		ServiceType:   usecase.ServicePayShapRPP,
		TierLevel:     domain.TierBronze,
		SupplierCost:  domain.FeeLegConfig{Type: domain.FeeTypePercentage, RateBasisPoints: 37, VATRateBasisPoints: 1500},
		PlatformFee:   domain.FeeLegConfig{Type: domain.FeeTypeHybrid, FixedMinor: 99, RateBasisPoints: 113, VATRateBasisPoints: 1500},
		EffectiveFrom: time.Now().Add(-time.Hour),
	}
	calc := usecase.NewFeeCalculator(mocks.NewMockFeeConfigRepository(cfg), nil, nil)

	for amount := int64(1); amount <= 250000; amount += 997 {
		b, err := calc.CalculateTierFees(context.Background(), "", cfg.SupplierCode, cfg.ServiceType, amount)
		if err != nil {
			t.Fatalf("amount %d: %v", amount, err)
		}
		if b.TotalFeeMinor != b.SupplierCost.InclusiveMinor+b.PlatformFee.InclusiveMinor {
			t.Fatalf("amount %d: legs do not sum to total fee", amount)
		}
		if b.TotalVATMinor != b.SupplierCost.VATMinor+b.PlatformFee.VATMinor {
			t.Fatalf("amount %d: vat does not sum", amount)
		}
		if b.TotalUserPaysMinor != amount+b.TotalFeeMinor {
			t.Fatalf("amount %d: user pays %d", amount, b.TotalUserPaysMinor)
		}
		var ledger int64
		for _, leg := range b.LedgerLegs() {
			ledger += leg.AmountMinor
		}
		if ledger != b.TotalFeeMinor {
			t.Fatalf("amount %d: ledger legs %d, total fee %d", amount, ledger, b.TotalFeeMinor)
		}
	}
}

func TestFeeCalculator_QuoteFeeRejectsFractionalCents(t *testing.T) {
	calc := usecase.NewFeeCalculator(mocks.NewMockFeeConfigRepository(zapperConfig(domain.TierBronze)), nil, nil)
	_, err := calc.QuoteFee(context.Background(), "", usecase.SupplierZapper, usecase.ServiceQRPayment, zar("10.005"))
	if err == nil {
		t.Fatal("expected error for sub-cent amount")
	}
}

func TestNumericCodes(t *testing.T) {
	codes := usecase.NumericCodes{Digits: 16}
	pattern := regexp.MustCompile(`^[0-9]{16}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := codes.NewCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q is not 16 digits", code)
		}
		seen[code] = true
	}
	if len(seen) < 49 {
		t.Fatalf("expected distinct codes, got %d unique of 50", len(seen))
	}
}
