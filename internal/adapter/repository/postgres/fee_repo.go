package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/postgres/generated"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// FeeConfigRepository implements usecase.FeeConfigRepository.
type FeeConfigRepository struct {
	queries *generated.Queries
}

// NewFeeConfigRepository creates a new FeeConfigRepository.
func NewFeeConfigRepository(db generated.DBTX) *FeeConfigRepository {
	return &FeeConfigRepository{queries: generated.New(db)}
}

// Create inserts a fee configuration in tx.
func (r *FeeConfigRepository) Create(ctx context.Context, tx usecase.Transaction, cfg *domain.FeeConfiguration) error {
	return queriesFor(tx).CreateFeeConfiguration(ctx, generated.FeeConfiguration{
		ID:                   cfg.ID,
		SupplierCode:         cfg.SupplierCode,
		ServiceType:          cfg.ServiceType,
		TierLevel:            string(cfg.TierLevel),
		SupplierFeeType:      string(cfg.SupplierCost.Type),
		SupplierFixedMinor:   cfg.SupplierCost.FixedMinor,
		SupplierRateBp:       cfg.SupplierCost.RateBasisPoints,
		SupplierVatBp:        cfg.SupplierCost.VATRateBasisPoints,
		SupplierVatInclusive: cfg.SupplierCost.VATInclusive,
		PlatformFeeType:      string(cfg.PlatformFee.Type),
		PlatformFixedMinor:   cfg.PlatformFee.FixedMinor,
		PlatformRateBp:       cfg.PlatformFee.RateBasisPoints,
		PlatformVatBp:        cfg.PlatformFee.VATRateBasisPoints,
		PlatformVatInclusive: cfg.PlatformFee.VATInclusive,
		EffectiveFrom:        timeToPgTimestamptz(cfg.EffectiveFrom),
		EffectiveTo:          optionalTimestamptz(cfg.EffectiveTo),
		CreatedAt:            timeToPgTimestamptz(cfg.CreatedAt),
	})
}

// FindActive returns the most recently effective configuration at the given time.
func (r *FeeConfigRepository) FindActive(ctx context.Context, supplierCode, serviceType string, tier domain.TierLevel, at time.Time) (*domain.FeeConfiguration, error) {
	row, err := r.queries.FindActiveFeeConfiguration(ctx, generated.FindActiveFeeConfigurationParams{
		SupplierCode: supplierCode,
		ServiceType:  serviceType,
		TierLevel:    string(tier),
		At:           timeToPgTimestamptz(at),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFeeConfigurationNotFound
		}

		return nil, err
	}

	return &domain.FeeConfiguration{
		ID:           row.ID,
		SupplierCode: row.SupplierCode,
		ServiceType:  row.ServiceType,
		TierLevel:    domain.TierLevel(row.TierLevel),
		SupplierCost: domain.FeeLegConfig{
			Type:               domain.FeeType(row.SupplierFeeType),
			FixedMinor:         row.SupplierFixedMinor,
			RateBasisPoints:    row.SupplierRateBp,
			VATRateBasisPoints: row.SupplierVatBp,
			VATInclusive:       row.SupplierVatInclusive,
		},
		PlatformFee: domain.FeeLegConfig{
			Type:               domain.FeeType(row.PlatformFeeType),
			FixedMinor:         row.PlatformFixedMinor,
			RateBasisPoints:    row.PlatformRateBp,
			VATRateBasisPoints: row.PlatformVatBp,
			VATInclusive:       row.PlatformVatInclusive,
		},
		EffectiveFrom: row.EffectiveFrom.Time,
		EffectiveTo:   timestamptzPtr(row.EffectiveTo),
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}

// TierRepository implements usecase.TierRepository.
type TierRepository struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewTierRepository creates a new TierRepository.
func NewTierRepository(db generated.DBTX) *TierRepository {
	return &TierRepository{queries: generated.New(db), now: time.Now}
}

// GetUserTier returns the user's tier, or the default tier when none is stored.
func (r *TierRepository) GetUserTier(ctx context.Context, userID string) (domain.TierLevel, error) {
	tier, err := r.queries.GetUserTier(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultTier, nil
		}

		return "", err
	}

	return domain.TierLevel(tier), nil
}

// SetUserTier stores the user's tier.
func (r *TierRepository) SetUserTier(ctx context.Context, userID string, tier domain.TierLevel) error {
	return r.queries.UpsertUserTier(ctx, generated.UpsertUserTierParams{
		UserID:    userID,
		TierLevel: string(tier),
		UpdatedAt: timeToPgTimestamptz(r.now()),
	})
}

// TaxRepository implements usecase.TaxRepository.
type TaxRepository struct {
	queries *generated.Queries
}

// NewTaxRepository creates a new TaxRepository.
func NewTaxRepository(db generated.DBTX) *TaxRepository {
	return &TaxRepository{queries: generated.New(db)}
}

// Create records a tax row in tx.
func (r *TaxRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.TaxTransaction) error {
	return queriesFor(tx).CreateTaxTransaction(ctx, generated.TaxTransaction{
		ID:              t.ID,
		MovementID:      t.MovementID,
		Reference:       t.Reference,
		TaxType:         t.TaxType,
		BaseMinor:       t.BaseMinor,
		TaxMinor:        t.TaxMinor,
		RateBasisPoints: t.RateBasisPoints,
		Direction:       string(t.Direction),
		CreatedAt:       timeToPgTimestamptz(t.CreatedAt),
	})
}

// ListByMovement returns the tax rows of a movement in creation order.
func (r *TaxRepository) ListByMovement(ctx context.Context, movementID string) ([]*domain.TaxTransaction, error) {
	rows, err := r.queries.ListTaxTransactionsByMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.TaxTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.TaxTransaction{
			ID:              row.ID,
			MovementID:      row.MovementID,
			Reference:       row.Reference,
			TaxType:         row.TaxType,
			BaseMinor:       row.BaseMinor,
			TaxMinor:        row.TaxMinor,
			RateBasisPoints: row.RateBasisPoints,
			Direction:       domain.TaxDirection(row.Direction),
			CreatedAt:       row.CreatedAt.Time,
		})
	}

	return out, nil
}
