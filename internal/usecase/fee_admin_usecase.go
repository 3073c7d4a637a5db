package usecase

import (
	"context"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
)

// FeeAdminUseCase maintains fee configurations and user tiers.
type FeeAdminUseCase struct {
	txManager TransactionManager
	fees      FeeConfigRepository
	tiers     TierRepository
	idGen     IDGenerator
}

// NewFeeAdminUseCase creates a new FeeAdminUseCase.
func NewFeeAdminUseCase(txManager TransactionManager, fees FeeConfigRepository, tiers TierRepository, idGen IDGenerator) *FeeAdminUseCase {
	return &FeeAdminUseCase{txManager: txManager, fees: fees, tiers: tiers, idGen: idGen}
}

// ConfigureFee stores a fee configuration. A zero EffectiveFrom means now.
func (uc *FeeAdminUseCase) ConfigureFee(ctx context.Context, cfg domain.FeeConfiguration) (*domain.FeeConfiguration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TierLevel == "" {
		cfg.TierLevel = domain.DefaultTier
	}
	if _, err := domain.ParseTierLevel(string(cfg.TierLevel)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cfg.ID == "" {
		cfg.ID = uc.idGen.Generate()
	}
	if cfg.EffectiveFrom.IsZero() {
		cfg.EffectiveFrom = now
	}
	cfg.CreatedAt = now

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.fees.Create(txCtx, tx, &cfg); err != nil {
		return nil, err
	}
	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetUserTier assigns a pricing tier to a user.
func (uc *FeeAdminUseCase) SetUserTier(ctx context.Context, userID, tier string) (domain.TierLevel, error) {
	if err := domain.RequireIdentifier("user id", userID); err != nil {
		return "", err
	}
	level, err := domain.ParseTierLevel(tier)
	if err != nil {
		return "", err
	}
	if err := uc.tiers.SetUserTier(ctx, userID, level); err != nil {
		return "", err
	}
	return level, nil
}
