package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/retry"
)

// PollConfig bounds status polling of one movement and the background
// queue of tracked movements.
type PollConfig struct {
	InitialDelay time.Duration
	Interval     time.Duration
	MaxAttempts  int
	// Concurrency caps tracked movements polled at once.
	Concurrency int
	// QueueSize caps tracked movements waiting to be polled.
	QueueSize int
}

// DefaultPollConfig polls every 5s for up to 12 attempts after a 2s delay.
func DefaultPollConfig() PollConfig {
	return PollConfig{InitialDelay: 2 * time.Second, Interval: 5 * time.Second, MaxAttempts: 12, Concurrency: 4, QueueSize: 256}
}

// Poller asks rails for the status of movements they have not reported on.
type Poller struct {
	movements MovementRepository
	registry  RailRegistry
	engine    *SettlementEngine
	cfg       PollConfig
	queue     chan string
	now       func() time.Time
}

// NewPoller creates a new Poller.
func NewPoller(movements MovementRepository, registry RailRegistry, engine *SettlementEngine, cfg PollConfig) *Poller {
	def := DefaultPollConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.InitialDelay, cfg.Interval, cfg.MaxAttempts = def.InitialDelay, def.Interval, def.MaxAttempts
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	return &Poller{
		movements: movements,
		registry:  registry,
		engine:    engine,
		cfg:       cfg,
		queue:     make(chan string, cfg.QueueSize),
		now:       time.Now,
	}
}

// Track queues movementID for PollUntilTerminal on the background runner.
// It reports false when the rail cannot be polled or the queue is full; the
// recovery sweep still picks such records up.
func (p *Poller) Track(m *domain.MoneyMovement) bool {
	if m == nil || m.Status.IsTerminal() || !m.Rail.SupportsPolling() {
		return false
	}
	select {
	case p.queue <- m.ID:
		return true
	default:
		return false
	}
}

// Start polls tracked movements until ctx ends, at most Concurrency at a
// time. In-flight polls are waited for before it returns.
func (p *Poller) Start(ctx context.Context) error {
	log := logger.FromContext(ctx).With().Str("component", "status_poller").Logger()
	log.Info().Int("concurrency", p.cfg.Concurrency).Int("queue_size", p.cfg.QueueSize).Msg("status poller started")

	var eg errgroup.Group
	eg.SetLimit(p.cfg.Concurrency)
	for {
		select {
		case <-ctx.Done():
			_ = eg.Wait()
			log.Info().Msg("status poller shutting down")
			return ctx.Err()
		case id := <-p.queue:
			eg.Go(func() error {
				m, err := p.PollUntilTerminal(ctx, id)
				switch {
				case err == nil:
					log.Info().Str("movement_id", id).Str("status", string(m.Status)).Msg("tracked movement settled")
				case errors.Is(err, context.Canceled):
				default:
					log.Warn().Err(err).Str("movement_id", id).Msg("tracked movement left for recovery")
				}
				return nil
			})
		}
	}
}

// PollOnce queries the rail once and applies the mapped status.
func (p *Poller) PollOnce(ctx context.Context, movementID string) (*SettlementResult, error) {
	m, err := p.movements.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m.Status.IsTerminal() {
		return &SettlementResult{Movement: m, AlreadyProcessed: true}, nil
	}
	if !m.Rail.SupportsPolling() {
		return nil, fmt.Errorf("%w: %s has no status endpoint", domain.ErrUnsupportedRail, m.Rail)
	}

	client, err := p.registry.Client(m.Rail)
	if err != nil {
		return nil, err
	}
	if err := p.movements.MarkPolled(ctx, m.ID, p.now().UTC()); err != nil {
		return nil, err
	}
	resp, err := client.GetStatus(ctx, m.Rail, m.MerchantTransactionID)
	if err != nil {
		return nil, err
	}
	return p.engine.ApplyOutcome(ctx, outcomeFrom(m, resp, SourcePoll))
}

// PollUntilTerminal polls until the movement reaches a terminal state or the
// attempts run out, in which case it returns ErrPollingExhausted and the
// record is left for the recovery sweep.
func (p *Poller) PollUntilTerminal(ctx context.Context, movementID string) (*domain.MoneyMovement, error) {
	var last *domain.MoneyMovement

	policy := retry.Fixed(p.cfg.MaxAttempts, p.cfg.InitialDelay, p.cfg.Interval)
	err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		res, err := p.PollOnce(ctx, movementID)
		if err != nil {
			if errors.Is(err, domain.ErrMovementNotFound) || errors.Is(err, domain.ErrUnsupportedRail) {
				return retry.Permanent(err)
			}
			logger.FromContext(ctx).Debug().Err(err).Int("attempt", attempt).Str("movement_id", movementID).Msg("status poll failed")
			return err
		}
		last = res.Movement
		if last.Status.IsTerminal() {
			return nil
		}
		return fmt.Errorf("movement %s still %s", movementID, last.Status)
	})
	if err == nil {
		return last, nil
	}
	if errors.Is(err, retry.ErrExhausted) {
		return last, fmt.Errorf("%w: %s after %d attempts", domain.ErrPollingExhausted, movementID, p.cfg.MaxAttempts)
	}
	return last, err
}
