package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRoundDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, d, want int64
	}{
		{75, 10, 8},
		{74, 10, 7},
		{-75, 10, -8},
		{-74, 10, -7},
		{15, 2, 8},
		{14, 2, 7},
		{0, 7, 0},
		{75, -10, -8},
	}
	for _, tt := range tests {
		if got := RoundDiv(tt.n, tt.d); got != tt.want {
			t.Errorf("RoundDiv(%d, %d) = %d, want %d", tt.n, tt.d, got, tt.want)
		}
	}
}

func TestFeeLegConfig_Price(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    FeeLegConfig
		amount int64
		want   FeeLeg
	}{
		{
			name:   "fixed without vat",
			cfg:    FeeLegConfig{Type: FeeTypeFixed, FixedMinor: 250},
			amount: 10000,
			want:   FeeLeg{BaseMinor: 250, VATMinor: 0, InclusiveMinor: 250},
		},
		{
			name:   "fixed with 15% vat rounds half up",
			cfg:    FeeLegConfig{Type: FeeTypeFixed, FixedMinor: 50, VATRateBasisPoints: 1500},
			amount: 10000,
			want:   FeeLeg{BaseMinor: 50, VATMinor: 8, InclusiveMinor: 58, VATRateBasisPoints: 1500},
		},
		{
			name:   "percentage 1.5%",
			cfg:    FeeLegConfig{Type: FeeTypePercentage, RateBasisPoints: 150, VATRateBasisPoints: 1500},
			amount: 12345,
			want:   FeeLeg{BaseMinor: 185, VATMinor: 28, InclusiveMinor: 213, VATRateBasisPoints: 1500},
		},
		{
			name:   "hybrid",
			cfg:    FeeLegConfig{Type: FeeTypeHybrid, FixedMinor: 100, RateBasisPoints: 100},
			amount: 50000,
			want:   FeeLeg{BaseMinor: 600, VATMinor: 0, InclusiveMinor: 600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Price(tt.amount); got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewFeeBreakdown_Sums(t *testing.T) {
	t.Parallel()

	cfg := &FeeConfiguration{
		ID:           "cfg-1",
		SupplierCode: "ZAPPER",
		ServiceType:  "qr_payment",
		SupplierCost: FeeLegConfig{Type: FeeTypePercentage, RateBasisPoints: 275, VATRateBasisPoints: 1500},
		PlatformFee:  FeeLegConfig{Type: FeeTypeHybrid, FixedMinor: 33, RateBasisPoints: 37, VATRateBasisPoints: 1500},
	}

	for amount := int64(1); amount < 200000; amount += 997 {
		b := NewFeeBreakdown(cfg, TierGold, amount)
		if b.SupplierCost.InclusiveMinor+b.PlatformFee.InclusiveMinor != b.TotalFeeMinor {
			t.Fatalf("amount %d: legs do not sum to total fee", amount)
		}
		if amount+b.TotalFeeMinor != b.TotalUserPaysMinor {
			t.Fatalf("amount %d: total user pays drift", amount)
		}
		var legs int64
		for _, l := range b.LedgerLegs() {
			legs += l.AmountMinor
		}
		if legs != b.TotalFeeMinor {
			t.Fatalf("amount %d: ledger legs %d != total fee %d", amount, legs, b.TotalFeeMinor)
		}
	}
}

func TestNewFeeBreakdown_Display(t *testing.T) {
	t.Parallel()

	cfg := &FeeConfiguration{
		SupplierCost: FeeLegConfig{Type: FeeTypeFixed, FixedMinor: 250},
		PlatformFee:  FeeLegConfig{Type: FeeTypeFixed, FixedMinor: 50, VATRateBasisPoints: 1500},
	}
	b := NewFeeBreakdown(cfg, TierBronze, 10000)

	if b.Display.TotalFee != "R3.08" || b.Display.TotalUserPays != "R103.08" || b.Display.VAT != "R0.08" {
		t.Fatalf("unexpected display %+v", b.Display)
	}
	if b.PlatformNetRevenueMinor != 50 {
		t.Fatalf("platform revenue must exclude vat, got %d", b.PlatformNetRevenueMinor)
	}
}

func TestFeeConfiguration_ActiveAt(t *testing.T) {
	t.Parallel()

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cfg := &FeeConfiguration{EffectiveFrom: from, EffectiveTo: &to}

	if cfg.ActiveAt(from.Add(-time.Second)) {
		t.Fatal("must not be active before effective date")
	}
	if !cfg.ActiveAt(from) || !cfg.ActiveAt(to.Add(-time.Second)) {
		t.Fatal("must be active within range")
	}
	if cfg.ActiveAt(to) {
		t.Fatal("effective_to is exclusive")
	}
}

func TestFeeConfiguration_Validate(t *testing.T) {
	t.Parallel()

	cfg := &FeeConfiguration{
		SupplierCode: "EASYPAY",
		ServiceType:  "cashout",
		SupplierCost: FeeLegConfig{Type: "weird"},
		PlatformFee:  FeeLegConfig{Type: FeeTypeFixed},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidFeeConfiguration) {
		t.Fatalf("expected ErrInvalidFeeConfiguration, got %v", err)
	}
}

func TestParseTierLevel(t *testing.T) {
	t.Parallel()

	if tier, err := ParseTierLevel(" Gold "); err != nil || tier != TierGold {
		t.Fatalf("expected gold, got %q %v", tier, err)
	}
	if _, err := ParseTierLevel("diamond"); !errors.Is(err, ErrInvalidTierLevel) {
		t.Fatalf("expected ErrInvalidTierLevel, got %v", err)
	}
}
