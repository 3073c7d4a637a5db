package memory

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func copyEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	c.Payload = maps.Clone(e.Payload)
	return &c
}

// Create appends an event within tx.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	st.outbox = append(st.outbox, copyEvent(event))
	return nil
}

// GetUnpublished returns the oldest unpublished events below maxAttempts.
// A maxAttempts of zero means unbounded.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	var out []*domain.OutboxEvent
	r.store.read(func(st *state) {
		for _, e := range st.outbox {
			if e.Published || (maxAttempts > 0 && e.Attempts >= maxAttempts) {
				continue
			}
			out = append(out, copyEvent(e))
			if limit > 0 && len(out) == limit {
				return
			}
		}
	})
	return out, nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.update(ctx, id, func(e *domain.OutboxEvent) {
		e.Published = true
		at := publishedAt
		e.PublishedAt = &at
	})
}

// RecordFailure counts a failed delivery.
func (r *OutboxRepository) RecordFailure(ctx context.Context, id, lastError string) error {
	return r.update(ctx, id, func(e *domain.OutboxEvent) {
		e.Attempts++
		e.LastError = lastError
	})
}

// DeletePublished drops delivered events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		kept := st.outbox[:0:0]
		for _, e := range st.outbox {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		st.outbox = kept
		return nil
	})
}

// Events returns every stored event in insertion order.
func (r *OutboxRepository) Events() []*domain.OutboxEvent {
	var out []*domain.OutboxEvent
	r.store.read(func(st *state) {
		for _, e := range st.outbox {
			out = append(out, copyEvent(e))
		}
	})
	return out
}

func (r *OutboxRepository) update(ctx context.Context, id string, fn func(e *domain.OutboxEvent)) error {
	return r.store.write(ctx, func(st *state) error {
		for i, e := range st.outbox {
			if e.ID == id {
				c := copyEvent(e)
				fn(c)
				st.outbox[i] = c
				return nil
			}
		}
		return fmt.Errorf("outbox event %s not found", id)
	})
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx appends an audit log within tx.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	c := *log
	st.audit = append(st.audit, &c)
	return nil
}

// List returns audit logs matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var out []*domain.AuditLog
	r.store.read(func(st *state) {
		for i := len(st.audit) - 1; i >= 0; i-- {
			l := st.audit[i]
			if !matchesAudit(l, filter) {
				continue
			}
			c := *l
			out = append(out, &c)
		}
	})
	return page(out, filter.Limit, filter.Offset), nil
}

// GetByResourceID returns the audit trail of one resource, newest first.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.List(ctx, domain.AuditFilter{ResourceType: resourceType, ResourceID: resourceID})
}

func matchesAudit(l *domain.AuditLog, f domain.AuditFilter) bool {
	switch {
	case f.UserID != "" && l.UserID != f.UserID:
		return false
	case f.Action != "" && l.Action != f.Action:
		return false
	case f.ResourceType != "" && l.ResourceType != f.ResourceType:
		return false
	case f.ResourceID != "" && l.ResourceID != f.ResourceID:
		return false
	case f.StartDate != nil && l.CreatedAt.Before(*f.StartDate):
		return false
	case f.EndDate != nil && l.CreatedAt.After(*f.EndDate):
		return false
	}
	return true
}
