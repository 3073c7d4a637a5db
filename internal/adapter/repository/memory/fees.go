package memory

import (
	"context"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// FeeConfigRepository implements usecase.FeeConfigRepository.
type FeeConfigRepository struct {
	store *Store
}

// NewFeeConfigRepository creates a new FeeConfigRepository.
func NewFeeConfigRepository(store *Store) *FeeConfigRepository {
	return &FeeConfigRepository{store: store}
}

// Create stores a configuration.
func (r *FeeConfigRepository) Create(ctx context.Context, tx usecase.Transaction, cfg *domain.FeeConfiguration) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	c := *cfg
	st.fees = append(st.fees, &c)
	return nil
}

// FindActive returns the most recently effective configuration at t.
func (r *FeeConfigRepository) FindActive(ctx context.Context, supplierCode, serviceType string, tier domain.TierLevel, at time.Time) (*domain.FeeConfiguration, error) {
	var out *domain.FeeConfiguration
	r.store.read(func(st *state) {
		for _, c := range st.fees {
			if c.SupplierCode != supplierCode || c.ServiceType != serviceType || c.TierLevel != tier || !c.ActiveAt(at) {
				continue
			}
			if out == nil || c.EffectiveFrom.After(out.EffectiveFrom) {
				cp := *c
				out = &cp
			}
		}
	})
	if out == nil {
		return nil, domain.ErrFeeConfigurationNotFound
	}
	return out, nil
}

// TierRepository implements usecase.TierRepository.
type TierRepository struct {
	store *Store
}

// NewTierRepository creates a new TierRepository.
func NewTierRepository(store *Store) *TierRepository {
	return &TierRepository{store: store}
}

// GetUserTier returns the user's tier, or the default tier when unset.
func (r *TierRepository) GetUserTier(ctx context.Context, userID string) (domain.TierLevel, error) {
	tier := domain.DefaultTier
	r.store.read(func(st *state) {
		if t, ok := st.tiers[userID]; ok {
			tier = t
		}
	})
	return tier, nil
}

// SetUserTier assigns a tier.
func (r *TierRepository) SetUserTier(ctx context.Context, userID string, tier domain.TierLevel) error {
	return r.store.write(ctx, func(st *state) error {
		st.tiers[userID] = tier
		return nil
	})
}

// TaxRepository implements usecase.TaxRepository.
type TaxRepository struct {
	store *Store
}

// NewTaxRepository creates a new TaxRepository.
func NewTaxRepository(store *Store) *TaxRepository {
	return &TaxRepository{store: store}
}

// Create appends a tax row.
func (r *TaxRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.TaxTransaction) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	c := *t
	st.taxes = append(st.taxes, &c)
	return nil
}

// ListByMovement returns a movement's tax rows in insertion order.
func (r *TaxRepository) ListByMovement(ctx context.Context, movementID string) ([]*domain.TaxTransaction, error) {
	var out []*domain.TaxTransaction
	r.store.read(func(st *state) {
		for _, t := range st.taxes {
			if t.MovementID == movementID {
				c := *t
				out = append(out, &c)
			}
		}
	})
	return out, nil
}
