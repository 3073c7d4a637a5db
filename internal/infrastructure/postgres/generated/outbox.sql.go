package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createOutboxEvent = `-- name: CreateOutboxEvent :exec
INSERT INTO outbox_events (id, aggregate_id, aggregate_type, event_type, payload, attempts, last_error, created_at, published)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type CreateOutboxEventParams struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	Attempts      int32              `json:"attempts"`
	LastError     string             `json:"last_error"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	Published     bool               `json:"published"`
}

func (q *Queries) CreateOutboxEvent(ctx context.Context, arg CreateOutboxEventParams) error {
	_, err := q.db.Exec(ctx, createOutboxEvent,
		arg.ID,
		arg.AggregateID,
		arg.AggregateType,
		arg.EventType,
		arg.Payload,
		arg.Attempts,
		arg.LastError,
		arg.CreatedAt,
		arg.Published,
	)
	return err
}

const getUnpublishedEvents = `-- name: GetUnpublishedEvents :many
SELECT id, aggregate_id, aggregate_type, event_type, payload, attempts, last_error, created_at, published_at, published
FROM outbox_events
WHERE published = FALSE AND ($2::int = 0 OR attempts < $2::int)
ORDER BY created_at
LIMIT $1
`

type GetUnpublishedEventsParams struct {
	Limit       int32 `json:"limit"`
	MaxAttempts int32 `json:"max_attempts"`
}

func (q *Queries) GetUnpublishedEvents(ctx context.Context, arg GetUnpublishedEventsParams) ([]OutboxEvent, error) {
	rows, err := q.db.Query(ctx, getUnpublishedEvents, arg.Limit, arg.MaxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OutboxEvent{}
	for rows.Next() {
		var i OutboxEvent
		if err := rows.Scan(
			&i.ID,
			&i.AggregateID,
			&i.AggregateType,
			&i.EventType,
			&i.Payload,
			&i.Attempts,
			&i.LastError,
			&i.CreatedAt,
			&i.PublishedAt,
			&i.Published,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markEventPublished = `-- name: MarkEventPublished :exec
UPDATE outbox_events SET published = TRUE, published_at = $2 WHERE id = $1
`

type MarkEventPublishedParams struct {
	ID          string             `json:"id"`
	PublishedAt pgtype.Timestamptz `json:"published_at"`
}

func (q *Queries) MarkEventPublished(ctx context.Context, arg MarkEventPublishedParams) error {
	_, err := q.db.Exec(ctx, markEventPublished, arg.ID, arg.PublishedAt)
	return err
}

const recordEventFailure = `-- name: RecordEventFailure :exec
UPDATE outbox_events SET attempts = attempts + 1, last_error = $2 WHERE id = $1
`

type RecordEventFailureParams struct {
	ID        string `json:"id"`
	LastError string `json:"last_error"`
}

func (q *Queries) RecordEventFailure(ctx context.Context, arg RecordEventFailureParams) error {
	_, err := q.db.Exec(ctx, recordEventFailure, arg.ID, arg.LastError)
	return err
}

const deletePublishedEvents = `-- name: DeletePublishedEvents :exec
DELETE FROM outbox_events WHERE published = TRUE AND published_at < $1
`

func (q *Queries) DeletePublishedEvents(ctx context.Context, publishedAt pgtype.Timestamptz) error {
	_, err := q.db.Exec(ctx, deletePublishedEvents, publishedAt)
	return err
}
