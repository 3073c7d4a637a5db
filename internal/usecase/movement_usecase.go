package usecase

import (
	"context"

	"github.com/mymoolah/walletcore/internal/domain"
)

// MovementUseCase answers questions about money movements.
type MovementUseCase struct {
	movements MovementRepository
	taxes     TaxRepository
	engine    *SettlementEngine
}

// NewMovementUseCase creates a new MovementUseCase.
func NewMovementUseCase(movements MovementRepository, taxes TaxRepository, engine *SettlementEngine) *MovementUseCase {
	return &MovementUseCase{movements: movements, taxes: taxes, engine: engine}
}

// GetStatus returns the settlement view of the movement under reference.
// A non-empty userID restricts the lookup to that user's movements.
func (uc *MovementUseCase) GetStatus(ctx context.Context, reference, userID string) (*domain.MovementStatusView, error) {
	m, err := uc.Get(ctx, reference, userID)
	if err != nil {
		return nil, err
	}
	view := m.View()
	return &view, nil
}

// Get returns the full movement under reference.
func (uc *MovementUseCase) Get(ctx context.Context, reference, userID string) (*domain.MoneyMovement, error) {
	if err := domain.RequireIdentifier("reference", reference); err != nil {
		return nil, err
	}
	m, err := uc.movements.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if userID != "" && m.UserID != userID {
		return nil, domain.ErrNotMovementOwner
	}
	return m, nil
}

// Taxes lists the VAT rows recorded for the movement under reference.
func (uc *MovementUseCase) Taxes(ctx context.Context, reference, userID string) ([]*domain.TaxTransaction, error) {
	m, err := uc.Get(ctx, reference, userID)
	if err != nil {
		return nil, err
	}
	return uc.taxes.ListByMovement(ctx, m.ID)
}

// Cancel cancels the movement under reference and refunds any debit.
func (uc *MovementUseCase) Cancel(ctx context.Context, reference, userID string) (*SettlementResult, error) {
	return uc.engine.Cancel(ctx, reference, userID)
}
