package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const purgeEvery = time.Hour

// EventPublisher relays committed outbox events to their publisher.
type EventPublisher struct {
	outboxRepo  usecase.OutboxRepository
	publisher   Publisher
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	retrier     Retrier
	batchSize   int
	maxAttempts int
	interval    time.Duration
	retention   time.Duration
	lastPurge   time.Time
	now         func() time.Time
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Retrier re-runs repository writes that hit transient conflicts.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo  usecase.OutboxRepository
	Publisher   Publisher
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Retrier     Retrier
	BatchSize   int           // Number of events to fetch per batch
	MaxAttempts int           // Failures after which an event is parked; 0 retries forever
	Interval    time.Duration // Polling interval
	Retention   time.Duration // Age after which published events are purged; 0 keeps them
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo:  cfg.OutboxRepo,
		publisher:   cfg.Publisher,
		logger:      cfg.Logger.With().Str("component", "outbox_relay").Logger(),
		metrics:     cfg.Metrics,
		retrier:     cfg.Retrier,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		interval:    cfg.Interval,
		retention:   cfg.Retention,
		now:         time.Now,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Int("max_attempts", ep.maxAttempts).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	// Process immediately on start
	if _, err := ep.ProcessBatch(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if _, err := ep.ProcessBatch(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
			ep.purge(ctx)
		}
	}
}

// ProcessBatch publishes one batch of pending events and returns how many
// were published. A failing event is recorded and left for the next batch.
func (ep *EventPublisher) ProcessBatch(ctx context.Context) (int, error) {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize, ep.maxAttempts)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	published := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		if err := ep.publishEvent(ctx, event); err != nil {
			ep.recordFailure(ctx, event, err)
			// Continue processing other events even if one fails
			continue
		}

		err := ep.withRetry(ctx, func() error {
			return ep.outboxRepo.MarkPublished(ctx, event.ID, ep.now().UTC())
		})
		if err != nil {
			ep.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to mark event as published")
			continue
		}
		ep.observe(event, "published")
		published++
	}

	return published, nil
}

// publishEvent publishes a single event.
func (ep *EventPublisher) publishEvent(ctx context.Context, event *domain.OutboxEvent) error {
	ep.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Msg("publishing event")

	ctx = ep.logger.With().Str("event_id", event.ID).Logger().WithContext(ctx)
	if err := ep.publisher.Publish(ctx, event); err != nil {
		return err
	}

	ep.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Msg("event published")

	return nil
}

func (ep *EventPublisher) recordFailure(ctx context.Context, event *domain.OutboxEvent, cause error) {
	attempts := event.Attempts + 1
	parked := ep.maxAttempts > 0 && attempts >= ep.maxAttempts

	evt := ep.logger.Warn()
	if parked {
		evt = ep.logger.Error().Bool("critical", true)
	}
	evt.Err(cause).
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Int("attempts", attempts).
		Bool("parked", parked).
		Msg("failed to publish event")

	err := ep.withRetry(ctx, func() error {
		return ep.outboxRepo.RecordFailure(ctx, event.ID, cause.Error())
	})
	if err != nil {
		ep.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to record publish failure")
	}
	if parked {
		ep.observe(event, "parked")
		return
	}
	ep.observe(event, "failed")
}

func (ep *EventPublisher) purge(ctx context.Context) {
	if ep.retention <= 0 || ep.now().Sub(ep.lastPurge) < purgeEvery {
		return
	}
	ep.lastPurge = ep.now()
	if err := ep.outboxRepo.DeletePublished(ctx, ep.now().Add(-ep.retention)); err != nil {
		ep.logger.Error().Err(err).Msg("failed to purge published events")
	}
}

func (ep *EventPublisher) withRetry(ctx context.Context, op func() error) error {
	if ep.retrier == nil {
		return op()
	}
	return ep.retrier.Retry(ctx, op)
}

func (ep *EventPublisher) observe(event *domain.OutboxEvent, result string) {
	if ep.metrics != nil {
		ep.metrics.OutboxDispatched.WithLabelValues(event.EventType, result).Inc()
	}
}

// ErrNoRoute is returned for an event type with no publisher and no fallback.
var ErrNoRoute = errors.New("no publisher for event type")

// Router sends each event to the publisher registered for its type.
type Router struct {
	routes   map[string]Publisher
	fallback Publisher
}

// NewRouter creates a Router. fallback receives unrouted types; nil makes
// them fail.
func NewRouter(fallback Publisher) *Router {
	return &Router{routes: make(map[string]Publisher), fallback: fallback}
}

// Handle registers p for eventType.
func (r *Router) Handle(eventType string, p Publisher) *Router {
	r.routes[eventType] = p
	return r
}

// Publish dispatches event by type.
func (r *Router) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if p, ok := r.routes[event.EventType]; ok {
		return p.Publish(ctx, event)
	}
	if r.fallback != nil {
		return r.fallback.Publish(ctx, event)
	}
	return fmt.Errorf("%w: %s", ErrNoRoute, event.EventType)
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event emitted")

	return nil
}
