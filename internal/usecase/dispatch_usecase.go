package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
)

// DispatchUseCase sends committed movements to their rail. It is the outbox
// relay's publisher for rail.dispatch events.
type DispatchUseCase struct {
	movements MovementRepository
	registry  RailRegistry
	engine    *SettlementEngine
	tracker   StatusTracker
}

// NewDispatchUseCase creates a new DispatchUseCase.
func NewDispatchUseCase(movements MovementRepository, registry RailRegistry, engine *SettlementEngine) *DispatchUseCase {
	return &DispatchUseCase{movements: movements, registry: registry, engine: engine}
}

// WithTracker polls movements the rail accepted but did not settle.
func (uc *DispatchUseCase) WithTracker(t StatusTracker) *DispatchUseCase {
	uc.tracker = t
	return uc
}

// Publish dispatches the movement named by event. A returned error leaves
// the event unpublished so the relay retries it.
func (uc *DispatchUseCase) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if event.EventType != domain.EventTypeRailDispatch {
		return fmt.Errorf("dispatch: unexpected event type %s", event.EventType)
	}

	movementID := event.AggregateID
	if id, ok := event.Payload["movement_id"].(string); ok && id != "" {
		movementID = id
	}

	m, err := uc.movements.GetByID(ctx, movementID)
	if err != nil {
		if errors.Is(err, domain.ErrMovementNotFound) {
			logger.FromContext(ctx).Warn().Str("movement_id", movementID).Msg("dispatch for unknown movement dropped")
			return nil
		}
		return err
	}
	log := logger.FromContext(ctx).With().
		Str("reference", m.MerchantTransactionID).
		Str("rail", string(m.Rail)).
		Logger()

	if m.Status.IsTerminal() {
		log.Info().Str("status", string(m.Status)).Msg("movement already terminal; dispatch skipped")
		return nil
	}

	client, err := uc.registry.Client(m.Rail)
	if err != nil {
		return err
	}

	resp, err := client.Initiate(ctx, railRequest(m))
	if err != nil {
		if !errors.Is(err, domain.ErrRailRejected) {
			return err
		}
		log.Warn().Err(err).Msg("rail refused movement")
		_, applyErr := uc.engine.ApplyOutcome(ctx, Outcome{
			MovementID: m.ID,
			Status:     domain.MovementStatusRejected,
			Reason:     err.Error(),
			Source:     SourceDispatch,
		})
		return applyErr
	}

	res, err := uc.engine.ApplyOutcome(ctx, outcomeFrom(m, resp, SourceDispatch))
	if err != nil {
		return err
	}
	log.Info().
		Str("status", string(res.Movement.Status)).
		Str("external_reference", res.Movement.ExternalReference).
		Msg("movement dispatched")
	if uc.tracker != nil && uc.tracker.Track(res.Movement) {
		log.Debug().Msg("movement tracked for status polling")
	}
	return nil
}
