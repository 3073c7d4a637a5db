package usecase

import (
	"context"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// SweepReport summarises one sweep run.
type SweepReport struct {
	Scanned   int
	Applied   int
	Refunded  int
	Unchanged int
	Failed    int
}

// SweepUseCase resolves movements the rails never reported on.
type SweepUseCase struct {
	movements MovementRepository
	engine    *SettlementEngine
	poller    *Poller
	metrics   *metrics.Metrics
	staleness time.Duration
	batch     int
	now       func() time.Time
}

// NewSweepUseCase creates a new SweepUseCase. A nil poller disables RecoverStale.
func NewSweepUseCase(movements MovementRepository, engine *SettlementEngine, poller *Poller, metrics *metrics.Metrics, staleness time.Duration, batch int) *SweepUseCase {
	if staleness <= 0 {
		staleness = 15 * time.Minute
	}
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	return &SweepUseCase{
		movements: movements,
		engine:    engine,
		poller:    poller,
		metrics:   metrics,
		staleness: staleness,
		batch:     batch,
		now:       time.Now,
	}
}

// WithClock replaces the sweep clock.
func (uc *SweepUseCase) WithClock(now func() time.Time) *SweepUseCase {
	uc.now = now
	return uc
}

// ExpireOverdue expires every non-terminal movement past its expiry,
// refunding debited ones. Running it again changes nothing.
func (uc *SweepUseCase) ExpireOverdue(ctx context.Context) (*SweepReport, error) {
	now := uc.now().UTC()
	overdue, err := uc.movements.ListExpired(ctx, now, uc.batch)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(overdue)}
	for _, m := range overdue {
		res, err := uc.engine.ApplyOutcome(ctx, Outcome{
			MovementID: m.ID,
			Status:     domain.MovementStatusExpired,
			Reason:     "expired at " + m.ExpiresAt.UTC().Format(time.RFC3339),
			Source:     SourceSweep,
		})
		uc.tally(report, "expire", res, err)
		if err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("reference", m.MerchantTransactionID).Msg("expiring movement failed")
		}
	}

	logger.FromContext(ctx).Info().
		Int("scanned", report.Scanned).
		Int("applied", report.Applied).
		Int("refunded", report.Refunded).
		Int("failed", report.Failed).
		Msg("expiry sweep finished")
	return report, nil
}

// RecoverStale polls once each non-terminal movement on a pollable rail that
// has been neither updated nor polled within the staleness threshold. Each
// poll is stamped, so a batch that stays unresolved rotates to the back.
func (uc *SweepUseCase) RecoverStale(ctx context.Context) (*SweepReport, error) {
	if uc.poller == nil {
		return &SweepReport{}, nil
	}

	cutoff := uc.now().UTC().Add(-uc.staleness)
	stale, err := uc.movements.ListStale(ctx, domain.PollableRails(), cutoff, uc.batch)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(stale)}
	for _, m := range stale {
		res, err := uc.poller.PollOnce(ctx, m.ID)
		uc.tally(report, "recover", res, err)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("reference", m.MerchantTransactionID).Msg("recovery poll failed")
		}
	}

	logger.FromContext(ctx).Info().
		Int("scanned", report.Scanned).
		Int("applied", report.Applied).
		Int("failed", report.Failed).
		Msg("recovery sweep finished")
	return report, nil
}

func (uc *SweepUseCase) tally(report *SweepReport, sweep string, res *SettlementResult, err error) {
	result := "unchanged"
	switch {
	case err != nil:
		report.Failed++
		result = "failed"
	case res.Applied:
		report.Applied++
		result = "applied"
		if res.Refunded {
			report.Refunded++
		}
	default:
		report.Unchanged++
	}
	if uc.metrics != nil {
		uc.metrics.SweepResults.WithLabelValues(sweep, result).Inc()
	}
}
