package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// DepositUseCase starts card and NFC wallet deposits.
type DepositUseCase struct {
	deps *MovementDeps
}

// NewDepositUseCase creates a new DepositUseCase.
func NewDepositUseCase(deps *MovementDeps) *DepositUseCase {
	return &DepositUseCase{deps: deps}
}

// InitiateDepositInput represents input for a deposit.
type InitiateDepositInput struct {
	Reference string
	UserID    string
	WalletID  string
	Rail      domain.Rail
	Amount    decimal.Decimal
	// Instrument carries rail specific data, such as a card token or terminal id.
	Instrument domain.JSON
}

// InitiateDeposit records an inbound deposit and queues it for dispatch.
// The wallet is credited once the rail confirms.
func (uc *DepositUseCase) InitiateDeposit(ctx context.Context, input InitiateDepositInput) (*MovementResult, error) {
	switch input.Rail {
	case domain.RailHaloDotNFC, domain.RailPeachCard:
	default:
		return nil, fmt.Errorf("%w: %s is not a deposit rail", domain.ErrUnsupportedRail, input.Rail)
	}
	if err := domain.ValidateMetadata(input.Instrument); err != nil {
		return nil, err
	}

	return uc.deps.initiateInbound(ctx, inboundPlan{
		rail:       input.Rail,
		prefix:     prefixDeposit,
		reference:  input.Reference,
		userID:     input.UserID,
		walletID:   input.WalletID,
		amount:     input.Amount,
		rawRequest: input.Instrument,
	})
}
