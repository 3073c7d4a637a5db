package domain

import (
	"fmt"
	"strings"
	"time"
)

// TierLevel is a user's pricing tier.
type TierLevel string

const (
	TierBronze   TierLevel = "bronze"
	TierSilver   TierLevel = "silver"
	TierGold     TierLevel = "gold"
	TierPlatinum TierLevel = "platinum"

	DefaultTier = TierBronze
)

// ParseTierLevel parses a tier name case-insensitively.
func ParseTierLevel(s string) (TierLevel, error) {
	t := TierLevel(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTierLevel, s)
}

// FeeType selects how a fee leg's base amount is computed.
type FeeType string

const (
	FeeTypeFixed      FeeType = "fixed"
	FeeTypePercentage FeeType = "percentage"
	FeeTypeHybrid     FeeType = "hybrid"
)

// FeeLegConfig prices one leg of a fee. Stored amounts are VAT-exclusive.
type FeeLegConfig struct {
	Type               FeeType
	FixedMinor         int64
	RateBasisPoints    int64
	VATRateBasisPoints int64
	VATInclusive       bool
}

// Validate checks the leg for usable values.
func (c FeeLegConfig) Validate() error {
	switch c.Type {
	case FeeTypeFixed, FeeTypePercentage, FeeTypeHybrid:
	default:
		return fmt.Errorf("%w: unknown fee type %q", ErrInvalidFeeConfiguration, c.Type)
	}
	if c.FixedMinor < 0 || c.RateBasisPoints < 0 || c.VATRateBasisPoints < 0 {
		return fmt.Errorf("%w: negative amount or rate", ErrInvalidFeeConfiguration)
	}
	return nil
}

// Base returns the VAT-exclusive base for amountMinor.
func (c FeeLegConfig) Base(amountMinor int64) int64 {
	switch c.Type {
	case FeeTypeFixed:
		return c.FixedMinor
	case FeeTypePercentage:
		return ApplyBasisPoints(amountMinor, c.RateBasisPoints)
	case FeeTypeHybrid:
		return c.FixedMinor + ApplyBasisPoints(amountMinor, c.RateBasisPoints)
	}
	return 0
}

// Price computes the leg's base, VAT and inclusive amounts.
func (c FeeLegConfig) Price(amountMinor int64) FeeLeg {
	base := c.Base(amountMinor)
	vat := ApplyBasisPoints(base, c.VATRateBasisPoints)
	return FeeLeg{
		BaseMinor:          base,
		VATMinor:           vat,
		InclusiveMinor:     base + vat,
		VATRateBasisPoints: c.VATRateBasisPoints,
	}
}

// FeeConfiguration is an effective-dated price for a supplier service and tier.
type FeeConfiguration struct {
	ID            string
	SupplierCode  string
	ServiceType   string
	TierLevel     TierLevel
	SupplierCost  FeeLegConfig
	PlatformFee   FeeLegConfig
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
}

// ActiveAt reports whether the configuration applies at t.
func (c *FeeConfiguration) ActiveAt(t time.Time) bool {
	if t.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || t.Before(*c.EffectiveTo)
}

// Validate checks both legs.
func (c *FeeConfiguration) Validate() error {
	if c.SupplierCode == "" || c.ServiceType == "" {
		return fmt.Errorf("%w: supplier code and service type required", ErrInvalidFeeConfiguration)
	}
	if err := c.SupplierCost.Validate(); err != nil {
		return fmt.Errorf("supplier cost: %w", err)
	}
	if err := c.PlatformFee.Validate(); err != nil {
		return fmt.Errorf("platform fee: %w", err)
	}
	return nil
}

// FeeLeg is one priced fee component in cents.
type FeeLeg struct {
	BaseMinor          int64
	VATMinor           int64
	InclusiveMinor     int64
	VATRateBasisPoints int64
}

// FeeDisplay is the receipt rendering of a breakdown.
type FeeDisplay struct {
	Amount        string
	SupplierCost  string
	PlatformFee   string
	VAT           string
	TotalFee      string
	TotalUserPays string
}

// FeeBreakdown is the full cost of a transaction in cents.
type FeeBreakdown struct {
	ConfigID                string
	SupplierCode            string
	ServiceType             string
	TierLevel               TierLevel
	AmountMinor             int64
	SupplierCost            FeeLeg
	PlatformFee             FeeLeg
	TotalFeeMinor           int64
	TotalVATMinor           int64
	TotalUserPaysMinor      int64
	PlatformNetRevenueMinor int64
	Display                 FeeDisplay
}

// NewFeeBreakdown aggregates two priced legs for amountMinor.
func NewFeeBreakdown(cfg *FeeConfiguration, tier TierLevel, amountMinor int64) *FeeBreakdown {
	supplier := cfg.SupplierCost.Price(amountMinor)
	platform := cfg.PlatformFee.Price(amountMinor)
	total := supplier.InclusiveMinor + platform.InclusiveMinor
	vat := supplier.VATMinor + platform.VATMinor

	b := &FeeBreakdown{
		ConfigID:                cfg.ID,
		SupplierCode:            cfg.SupplierCode,
		ServiceType:             cfg.ServiceType,
		TierLevel:               tier,
		AmountMinor:             amountMinor,
		SupplierCost:            supplier,
		PlatformFee:             platform,
		TotalFeeMinor:           total,
		TotalVATMinor:           vat,
		TotalUserPaysMinor:      amountMinor + total,
		PlatformNetRevenueMinor: platform.BaseMinor,
	}
	b.Display = FeeDisplay{
		Amount:        FormatRand(amountMinor),
		SupplierCost:  FormatRand(supplier.InclusiveMinor),
		PlatformFee:   FormatRand(platform.InclusiveMinor),
		VAT:           FormatRand(vat),
		TotalFee:      FormatRand(total),
		TotalUserPays: FormatRand(b.TotalUserPaysMinor),
	}
	return b
}

// FeeLegKind names the ledger destination of a fee component.
type FeeLegKind string

const (
	FeeLegSupplierPayable FeeLegKind = "supplier_payable"
	FeeLegPlatformRevenue FeeLegKind = "platform_revenue"
	FeeLegVAT             FeeLegKind = "vat"
)

// LedgerFeeLeg is a positive fee component destined for one ledger account.
type LedgerFeeLeg struct {
	Kind        FeeLegKind
	AmountMinor int64
}

// LedgerLegs splits the total fee into ledger credit legs. Supplier cost
// passes through VAT-inclusive; platform revenue excludes VAT which is a
// liability. The legs always sum to TotalFeeMinor.
func (b *FeeBreakdown) LedgerLegs() []LedgerFeeLeg {
	if b == nil {
		return nil
	}
	candidates := []LedgerFeeLeg{
		{Kind: FeeLegSupplierPayable, AmountMinor: b.SupplierCost.InclusiveMinor},
		{Kind: FeeLegPlatformRevenue, AmountMinor: b.PlatformFee.BaseMinor},
		{Kind: FeeLegVAT, AmountMinor: b.PlatformFee.VATMinor},
	}
	legs := make([]LedgerFeeLeg, 0, len(candidates))
	for _, l := range candidates {
		if l.AmountMinor > 0 {
			legs = append(legs, l)
		}
	}
	return legs
}

// TaxableBase is the VAT-exclusive base carrying platform VAT.
func (b *FeeBreakdown) TaxableBase() int64 {
	if b == nil {
		return 0
	}
	return b.PlatformFee.BaseMinor
}
