package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerAccount = `-- name: CreateLedgerAccount :exec
INSERT INTO ledger_accounts (id, code, name, type, normal_side, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateLedgerAccountParams struct {
	ID         string             `json:"id"`
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	NormalSide string             `json:"normal_side"`
	CreatedAt  pgtype.Timestamptz `json:"created_at"`
	UpdatedAt  pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLedgerAccount(ctx context.Context, arg CreateLedgerAccountParams) error {
	_, err := q.db.Exec(ctx, createLedgerAccount,
		arg.ID,
		arg.Code,
		arg.Name,
		arg.Type,
		arg.NormalSide,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLedgerAccountByID = `-- name: GetLedgerAccountByID :one
SELECT id, code, name, type, normal_side, created_at, updated_at FROM ledger_accounts WHERE id = $1
`

func (q *Queries) GetLedgerAccountByID(ctx context.Context, id string) (LedgerAccount, error) {
	row := q.db.QueryRow(ctx, getLedgerAccountByID, id)
	var i LedgerAccount
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Type,
		&i.NormalSide,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerAccountByCode = `-- name: GetLedgerAccountByCode :one
SELECT id, code, name, type, normal_side, created_at, updated_at FROM ledger_accounts WHERE code = $1
`

func (q *Queries) GetLedgerAccountByCode(ctx context.Context, code string) (LedgerAccount, error) {
	row := q.db.QueryRow(ctx, getLedgerAccountByCode, code)
	var i LedgerAccount
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Type,
		&i.NormalSide,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerAccountsByCodes = `-- name: GetLedgerAccountsByCodes :many
SELECT id, code, name, type, normal_side, created_at, updated_at FROM ledger_accounts WHERE code = ANY($1::text[]) ORDER BY code
`

func (q *Queries) GetLedgerAccountsByCodes(ctx context.Context, dollar_1 []string) ([]LedgerAccount, error) {
	rows, err := q.db.Query(ctx, getLedgerAccountsByCodes, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLedgerAccounts(rows)
}

const getLedgerAccountsByIDs = `-- name: GetLedgerAccountsByIDs :many
SELECT id, code, name, type, normal_side, created_at, updated_at FROM ledger_accounts WHERE id = ANY($1::text[]) ORDER BY code
`

func (q *Queries) GetLedgerAccountsByIDs(ctx context.Context, dollar_1 []string) ([]LedgerAccount, error) {
	rows, err := q.db.Query(ctx, getLedgerAccountsByIDs, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLedgerAccounts(rows)
}

const updateLedgerAccountName = `-- name: UpdateLedgerAccountName :execrows
UPDATE ledger_accounts SET name = $2, updated_at = $3 WHERE code = $1
`

type UpdateLedgerAccountNameParams struct {
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLedgerAccountName(ctx context.Context, arg UpdateLedgerAccountNameParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLedgerAccountName, arg.Code, arg.Name, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listLedgerAccounts = `-- name: ListLedgerAccounts :many
SELECT id, code, name, type, normal_side, created_at, updated_at FROM ledger_accounts ORDER BY code LIMIT $1 OFFSET $2
`

type ListLedgerAccountsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListLedgerAccounts(ctx context.Context, arg ListLedgerAccountsParams) ([]LedgerAccount, error) {
	rows, err := q.db.Query(ctx, listLedgerAccounts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLedgerAccounts(rows)
}

type ledgerAccountRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLedgerAccounts(rows ledgerAccountRows) ([]LedgerAccount, error) {
	items := []LedgerAccount{}
	for rows.Next() {
		var i LedgerAccount
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Name,
			&i.Type,
			&i.NormalSide,
			&i.CreatedAt,
			&i.UpdatedAt,
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
