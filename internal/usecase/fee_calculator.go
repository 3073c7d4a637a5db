package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// FeeCalculator prices transactions from tiered fee configurations.
type FeeCalculator struct {
	feeRepo FeeConfigRepository
	tiers   TierResolver
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewFeeCalculator creates a new FeeCalculator.
func NewFeeCalculator(feeRepo FeeConfigRepository, tiers TierResolver, metrics *metrics.Metrics) *FeeCalculator {
	return &FeeCalculator{
		feeRepo: feeRepo,
		tiers:   tiers,
		metrics: metrics,
		now:     time.Now,
	}
}

// CalculateTierFees returns the full fee breakdown for amountMinor cents.
// A missing configuration blocks the transaction; it never prices at zero.
func (c *FeeCalculator) CalculateTierFees(ctx context.Context, userID, supplierCode, serviceType string, amountMinor int64) (*domain.FeeBreakdown, error) {
	if amountMinor <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.RequireIdentifier("supplier code", supplierCode); err != nil {
		return nil, err
	}
	if err := domain.RequireIdentifier("service type", serviceType); err != nil {
		return nil, err
	}

	tier := c.resolveTier(ctx, userID)

	cfg, err := c.feeRepo.FindActive(ctx, supplierCode, serviceType, tier, c.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrFeeConfigurationNotFound) {
			if c.metrics != nil {
				c.metrics.FeeConfigMisses.WithLabelValues(supplierCode, serviceType, string(tier)).Inc()
			}
			logger.FromContext(ctx).Error().
				Str("supplier", supplierCode).
				Str("service", serviceType).
				Str("tier", string(tier)).
				Msg("no active fee configuration")
			return nil, fmt.Errorf("%w: %s/%s/%s", domain.ErrFeeConfigurationNotFound, supplierCode, serviceType, tier)
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	breakdown := domain.NewFeeBreakdown(cfg, tier, amountMinor)

	if c.metrics != nil {
		c.metrics.FeeComputations.WithLabelValues(supplierCode, serviceType, string(tier)).Inc()
	}

	return breakdown, nil
}

// resolveTier soft-fails to the default tier.
func (c *FeeCalculator) resolveTier(ctx context.Context, userID string) domain.TierLevel {
	if c.tiers == nil || userID == "" {
		return domain.DefaultTier
	}
	tier, err := c.tiers.GetUserTier(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("user_id", userID).
			Msg("tier lookup failed, using default tier")
		return domain.DefaultTier
	}
	if tier == "" {
		return domain.DefaultTier
	}
	return tier
}

// QuoteFee prices amount in rand for userID without moving money.
func (c *FeeCalculator) QuoteFee(ctx context.Context, userID, supplierCode, serviceType string, amount decimal.Decimal) (*domain.FeeBreakdown, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	minor, err := domain.DecimalToMinor(amount)
	if err != nil {
		return nil, err
	}
	return c.CalculateTierFees(ctx, userID, supplierCode, serviceType, minor)
}
