package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const walletColumns = `id, owner_id, kind, name, ledger_account_code, balance, allow_overdraft, status, version, last_transaction_at, created_at, updated_at`

const createWallet = `-- name: CreateWallet :exec
INSERT INTO wallets (id, owner_id, kind, name, ledger_account_code, balance, allow_overdraft, status, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateWalletParams struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	Kind              string             `json:"kind"`
	Name              string             `json:"name"`
	LedgerAccountCode string             `json:"ledger_account_code"`
	Balance           pgtype.Numeric     `json:"balance"`
	AllowOverdraft    bool               `json:"allow_overdraft"`
	Status            string             `json:"status"`
	Version           int64              `json:"version"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateWallet(ctx context.Context, arg CreateWalletParams) error {
	_, err := q.db.Exec(ctx, createWallet,
		arg.ID,
		arg.OwnerID,
		arg.Kind,
		arg.Name,
		arg.LedgerAccountCode,
		arg.Balance,
		arg.AllowOverdraft,
		arg.Status,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getWalletByID = `-- name: GetWalletByID :one
SELECT ` + walletColumns + ` FROM wallets WHERE id = $1
`

func (q *Queries) GetWalletByID(ctx context.Context, id string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByID, id)
	return scanWallet(row)
}

const getWalletByIDForUpdate = `-- name: GetWalletByIDForUpdate :one
SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetWalletByIDForUpdate(ctx context.Context, id string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByIDForUpdate, id)
	return scanWallet(row)
}

const getWalletsByIDsForUpdate = `-- name: GetWalletsByIDsForUpdate :many
SELECT ` + walletColumns + ` FROM wallets WHERE id = ANY($1::text[]) ORDER BY id FOR UPDATE
`

func (q *Queries) GetWalletsByIDsForUpdate(ctx context.Context, dollar_1 []string) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, getWalletsByIDsForUpdate, dollar_1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Wallet{}
	for rows.Next() {
		i, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listWalletsByOwner = `-- name: ListWalletsByOwner :many
SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 ORDER BY created_at, id
`

func (q *Queries) ListWalletsByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, listWalletsByOwner, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Wallet{}
	for rows.Next() {
		i, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateWalletBalance = `-- name: UpdateWalletBalance :execrows
UPDATE wallets
SET balance = $2, version = $3, last_transaction_at = $4, updated_at = $4
WHERE id = $1
`

type UpdateWalletBalanceParams struct {
	ID        string             `json:"id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateWalletBalance(ctx context.Context, arg UpdateWalletBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWalletBalance, arg.ID, arg.Balance, arg.Version, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateWalletStatus = `-- name: UpdateWalletStatus :execrows
UPDATE wallets SET status = $2, updated_at = $3 WHERE id = $1
`

type UpdateWalletStatusParams struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateWalletStatus(ctx context.Context, arg UpdateWalletStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWalletStatus, arg.ID, arg.Status, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const sumWalletsByLedgerAccount = `-- name: SumWalletsByLedgerAccount :many
SELECT ledger_account_code, COALESCE(SUM(balance), 0)::numeric AS total
FROM wallets
GROUP BY ledger_account_code
ORDER BY ledger_account_code
`

type SumWalletsByLedgerAccountRow struct {
	LedgerAccountCode string         `json:"ledger_account_code"`
	Total             pgtype.Numeric `json:"total"`
}

func (q *Queries) SumWalletsByLedgerAccount(ctx context.Context) ([]SumWalletsByLedgerAccountRow, error) {
	rows, err := q.db.Query(ctx, sumWalletsByLedgerAccount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SumWalletsByLedgerAccountRow{}
	for rows.Next() {
		var i SumWalletsByLedgerAccountRow
		if err := rows.Scan(&i.LedgerAccountCode, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createWalletTransaction = `-- name: CreateWalletTransaction :exec
INSERT INTO wallet_transactions (id, wallet_id, movement_id, reference, description, direction, amount, previous_balance, current_balance, wallet_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateWalletTransactionParams struct {
	ID              string             `json:"id"`
	WalletID        string             `json:"wallet_id"`
	MovementID      string             `json:"movement_id"`
	Reference       string             `json:"reference"`
	Description     string             `json:"description"`
	Direction       string             `json:"direction"`
	Amount          pgtype.Numeric     `json:"amount"`
	PreviousBalance pgtype.Numeric     `json:"previous_balance"`
	CurrentBalance  pgtype.Numeric     `json:"current_balance"`
	WalletVersion   int64              `json:"wallet_version"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateWalletTransaction(ctx context.Context, arg CreateWalletTransactionParams) error {
	_, err := q.db.Exec(ctx, createWalletTransaction,
		arg.ID,
		arg.WalletID,
		arg.MovementID,
		arg.Reference,
		arg.Description,
		arg.Direction,
		arg.Amount,
		arg.PreviousBalance,
		arg.CurrentBalance,
		arg.WalletVersion,
		arg.CreatedAt,
	)
	return err
}

const listWalletTransactions = `-- name: ListWalletTransactions :many
SELECT id, wallet_id, movement_id, reference, description, direction, amount, previous_balance, current_balance, wallet_version, created_at
FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC, wallet_version DESC
LIMIT $2 OFFSET $3
`

type ListWalletTransactionsParams struct {
	WalletID string `json:"wallet_id"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListWalletTransactions(ctx context.Context, arg ListWalletTransactionsParams) ([]WalletTransaction, error) {
	rows, err := q.db.Query(ctx, listWalletTransactions, arg.WalletID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []WalletTransaction{}
	for rows.Next() {
		var i WalletTransaction
		if err := rows.Scan(
			&i.ID,
			&i.WalletID,
			&i.MovementID,
			&i.Reference,
			&i.Description,
			&i.Direction,
			&i.Amount,
			&i.PreviousBalance,
			&i.CurrentBalance,
			&i.WalletVersion,
			&i.CreatedAt,
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var i Wallet
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Kind,
		&i.Name,
		&i.LedgerAccountCode,
		&i.Balance,
		&i.AllowOverdraft,
		&i.Status,
		&i.Version,
		&i.LastTransactionAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
