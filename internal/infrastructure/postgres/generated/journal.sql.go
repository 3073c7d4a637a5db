package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createJournalEntry = `-- name: CreateJournalEntry :exec
INSERT INTO journal_entries (id, reference, description, posted_at, created_at)
VALUES ($1, $2, $3, $4, $5)
`

type CreateJournalEntryParams struct {
	ID          string             `json:"id"`
	Reference   string             `json:"reference"`
	Description string             `json:"description"`
	PostedAt    pgtype.Timestamptz `json:"posted_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) error {
	_, err := q.db.Exec(ctx, createJournalEntry,
		arg.ID,
		arg.Reference,
		arg.Description,
		arg.PostedAt,
		arg.CreatedAt,
	)
	return err
}

const createJournalLine = `-- name: CreateJournalLine :exec
INSERT INTO journal_lines (id, entry_id, account_id, account_code, side, amount, memo, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateJournalLineParams struct {
	ID          string         `json:"id"`
	EntryID     string         `json:"entry_id"`
	AccountID   string         `json:"account_id"`
	AccountCode string         `json:"account_code"`
	Side        string         `json:"side"`
	Amount      pgtype.Numeric `json:"amount"`
	Memo        string         `json:"memo"`
	Position    int32          `json:"position"`
}

func (q *Queries) CreateJournalLine(ctx context.Context, arg CreateJournalLineParams) error {
	_, err := q.db.Exec(ctx, createJournalLine,
		arg.ID,
		arg.EntryID,
		arg.AccountID,
		arg.AccountCode,
		arg.Side,
		arg.Amount,
		arg.Memo,
		arg.Position,
	)
	return err
}

const getJournalEntryByReference = `-- name: GetJournalEntryByReference :one
SELECT id, reference, description, posted_at, created_at FROM journal_entries WHERE reference = $1
`

func (q *Queries) GetJournalEntryByReference(ctx context.Context, reference string) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, getJournalEntryByReference, reference)
	var i JournalEntry
	err := row.Scan(
		&i.ID,
		&i.Reference,
		&i.Description,
		&i.PostedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getJournalLinesByEntry = `-- name: GetJournalLinesByEntry :many
SELECT id, entry_id, account_id, account_code, side, amount, memo, position FROM journal_lines WHERE entry_id = $1 ORDER BY position
`

func (q *Queries) GetJournalLinesByEntry(ctx context.Context, entryID string) ([]JournalLine, error) {
	rows, err := q.db.Query(ctx, getJournalLinesByEntry, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalLine{}
	for rows.Next() {
		var i JournalLine
		if err := rows.Scan(
			&i.ID,
			&i.EntryID,
			&i.AccountID,
			&i.AccountCode,
			&i.Side,
			&i.Amount,
			&i.Memo,
			&i.Position,
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

const sumJournalLinesByAccount = `-- name: SumJournalLinesByAccount :many
SELECT account_id,
       COALESCE(SUM(amount) FILTER (WHERE side = 'debit'), 0)::numeric AS debits,
       COALESCE(SUM(amount) FILTER (WHERE side = 'credit'), 0)::numeric AS credits
FROM journal_lines
GROUP BY account_id
ORDER BY account_id
`

type SumJournalLinesByAccountRow struct {
	AccountID string         `json:"account_id"`
	Debits    pgtype.Numeric `json:"debits"`
	Credits   pgtype.Numeric `json:"credits"`
}

func (q *Queries) SumJournalLinesByAccount(ctx context.Context) ([]SumJournalLinesByAccountRow, error) {
	rows, err := q.db.Query(ctx, sumJournalLinesByAccount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumJournalLinesByAccountRow{}
	for rows.Next() {
		var i SumJournalLinesByAccountRow
		if err := rows.Scan(&i.AccountID, &i.Debits, &i.Credits); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const checkJournalConsistency = `-- name: CheckJournalConsistency :one
SELECT
    COALESCE(SUM(amount) FILTER (WHERE side = 'debit'), 0)::numeric AS total_debits,
    COALESCE(SUM(amount) FILTER (WHERE side = 'credit'), 0)::numeric AS total_credits
FROM journal_lines
`

type CheckJournalConsistencyRow struct {
	TotalDebits  pgtype.Numeric `json:"total_debits"`
	TotalCredits pgtype.Numeric `json:"total_credits"`
}

func (q *Queries) CheckJournalConsistency(ctx context.Context) (CheckJournalConsistencyRow, error) {
	row := q.db.QueryRow(ctx, checkJournalConsistency)
	var i CheckJournalConsistencyRow
	err := row.Scan(&i.TotalDebits, &i.TotalCredits)
	return i, err
}
