package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const movementColumns = `id, merchant_transaction_id, rail, kind, direction, status, status_reason, amount, fee, fee_breakdown, currency, user_id, wallet_id, beneficiary_wallet_id, clearing_account_code, settlement_account_code, external_reference, voucher_code, expires_at, debited, beneficiary_credited, raw_request, raw_response, metadata, version, created_at, updated_at, completed_at`

const createMoneyMovement = `-- name: CreateMoneyMovement :exec
INSERT INTO money_movements (` + movementColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
`

func (q *Queries) CreateMoneyMovement(ctx context.Context, arg MoneyMovement) error {
	_, err := q.db.Exec(ctx, createMoneyMovement,
		arg.ID,
		arg.MerchantTransactionID,
		arg.Rail,
		arg.Kind,
		arg.Direction,
		arg.Status,
		arg.StatusReason,
		arg.Amount,
		arg.Fee,
		arg.FeeBreakdown,
		arg.Currency,
		arg.UserID,
		arg.WalletID,
		arg.BeneficiaryWalletID,
		arg.ClearingAccountCode,
		arg.SettlementAccountCode,
		arg.ExternalReference,
		arg.VoucherCode,
		arg.ExpiresAt,
		arg.Debited,
		arg.BeneficiaryCredited,
		arg.RawRequest,
		arg.RawResponse,
		arg.Metadata,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
		arg.CompletedAt,
	)
	return err
}

const updateMoneyMovement = `-- name: UpdateMoneyMovement :execrows
UPDATE money_movements SET
    status = $2,
    status_reason = $3,
    fee = $4,
    fee_breakdown = $5,
    beneficiary_wallet_id = $6,
    clearing_account_code = $7,
    settlement_account_code = $8,
    external_reference = $9,
    voucher_code = $10,
    expires_at = $11,
    debited = $12,
    beneficiary_credited = $13,
    raw_request = $14,
    raw_response = $15,
    metadata = $16,
    version = $17,
    updated_at = $18,
    completed_at = $19
WHERE id = $1
`

type UpdateMoneyMovementParams struct {
	ID                    string             `json:"id"`
	Status                string             `json:"status"`
	StatusReason          string             `json:"status_reason"`
	Fee                   pgtype.Numeric     `json:"fee"`
	FeeBreakdown          []byte             `json:"fee_breakdown"`
	BeneficiaryWalletID   string             `json:"beneficiary_wallet_id"`
	ClearingAccountCode   string             `json:"clearing_account_code"`
	SettlementAccountCode string             `json:"settlement_account_code"`
	ExternalReference     string             `json:"external_reference"`
	VoucherCode           string             `json:"voucher_code"`
	ExpiresAt             pgtype.Timestamptz `json:"expires_at"`
	Debited               bool               `json:"debited"`
	BeneficiaryCredited   bool               `json:"beneficiary_credited"`
	RawRequest            []byte             `json:"raw_request"`
	RawResponse           []byte             `json:"raw_response"`
	Metadata              []byte             `json:"metadata"`
	Version               int64              `json:"version"`
	UpdatedAt             pgtype.Timestamptz `json:"updated_at"`
	CompletedAt           pgtype.Timestamptz `json:"completed_at"`
}

func (q *Queries) UpdateMoneyMovement(ctx context.Context, arg UpdateMoneyMovementParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateMoneyMovement,
		arg.ID,
		arg.Status,
		arg.StatusReason,
		arg.Fee,
		arg.FeeBreakdown,
		arg.BeneficiaryWalletID,
		arg.ClearingAccountCode,
		arg.SettlementAccountCode,
		arg.ExternalReference,
		arg.VoucherCode,
		arg.ExpiresAt,
		arg.Debited,
		arg.BeneficiaryCredited,
		arg.RawRequest,
		arg.RawResponse,
		arg.Metadata,
		arg.Version,
		arg.UpdatedAt,
		arg.CompletedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getMoneyMovementByID = `-- name: GetMoneyMovementByID :one
SELECT ` + movementColumns + ` FROM money_movements WHERE id = $1
`

func (q *Queries) GetMoneyMovementByID(ctx context.Context, id string) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByID, id))
}

const getMoneyMovementByReference = `-- name: GetMoneyMovementByReference :one
SELECT ` + movementColumns + ` FROM money_movements WHERE merchant_transaction_id = $1
`

func (q *Queries) GetMoneyMovementByReference(ctx context.Context, merchantTransactionID string) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByReference, merchantTransactionID))
}

const getMoneyMovementByIDForUpdate = `-- name: GetMoneyMovementByIDForUpdate :one
SELECT ` + movementColumns + ` FROM money_movements WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetMoneyMovementByIDForUpdate(ctx context.Context, id string) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByIDForUpdate, id))
}

const getMoneyMovementByReferenceForUpdate = `-- name: GetMoneyMovementByReferenceForUpdate :one
SELECT ` + movementColumns + ` FROM money_movements WHERE merchant_transaction_id = $1 FOR UPDATE
`

func (q *Queries) GetMoneyMovementByReferenceForUpdate(ctx context.Context, merchantTransactionID string) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByReferenceForUpdate, merchantTransactionID))
}

const getMoneyMovementByExternalReferenceForUpdate = `-- name: GetMoneyMovementByExternalReferenceForUpdate :one
SELECT ` + movementColumns + ` FROM money_movements
WHERE rail = $1 AND external_reference = $2
ORDER BY created_at DESC
LIMIT 1
FOR UPDATE
`

type GetMoneyMovementByExternalReferenceForUpdateParams struct {
	Rail              string `json:"rail"`
	ExternalReference string `json:"external_reference"`
}

func (q *Queries) GetMoneyMovementByExternalReferenceForUpdate(ctx context.Context, arg GetMoneyMovementByExternalReferenceForUpdateParams) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByExternalReferenceForUpdate, arg.Rail, arg.ExternalReference))
}

const getMoneyMovementByVoucherCodeForUpdate = `-- name: GetMoneyMovementByVoucherCodeForUpdate :one
SELECT ` + movementColumns + ` FROM money_movements WHERE voucher_code = $1 FOR UPDATE
`

func (q *Queries) GetMoneyMovementByVoucherCodeForUpdate(ctx context.Context, voucherCode string) (MoneyMovement, error) {
	return scanMoneyMovement(q.db.QueryRow(ctx, getMoneyMovementByVoucherCodeForUpdate, voucherCode))
}

const listStaleMoneyMovements = `-- name: ListStaleMoneyMovements :many
SELECT ` + movementColumns + ` FROM money_movements
WHERE status IN ('initiated', 'processing')
  AND rail = ANY($1::text[])
  AND GREATEST(updated_at, COALESCE(last_polled_at, updated_at)) < $2
ORDER BY GREATEST(updated_at, COALESCE(last_polled_at, updated_at)), id
LIMIT $3
`

type ListStaleMoneyMovementsParams struct {
	Rails  []string           `json:"rails"`
	Cutoff pgtype.Timestamptz `json:"cutoff"`
	Limit  int32              `json:"limit"`
}

func (q *Queries) ListStaleMoneyMovements(ctx context.Context, arg ListStaleMoneyMovementsParams) ([]MoneyMovement, error) {
	return q.listMoneyMovements(ctx, listStaleMoneyMovements, arg.Rails, arg.Cutoff, arg.Limit)
}

const markMoneyMovementPolled = `-- name: MarkMoneyMovementPolled :exec
UPDATE money_movements SET last_polled_at = $2 WHERE id = $1
`

type MarkMoneyMovementPolledParams struct {
	ID           string             `json:"id"`
	LastPolledAt pgtype.Timestamptz `json:"last_polled_at"`
}

func (q *Queries) MarkMoneyMovementPolled(ctx context.Context, arg MarkMoneyMovementPolledParams) error {
	_, err := q.db.Exec(ctx, markMoneyMovementPolled, arg.ID, arg.LastPolledAt)
	return err
}

const listExpiredMoneyMovements = `-- name: ListExpiredMoneyMovements :many
SELECT ` + movementColumns + ` FROM money_movements
WHERE status IN ('initiated', 'processing') AND expires_at IS NOT NULL AND expires_at <= $1
ORDER BY expires_at
LIMIT $2
`

type ListExpiredMoneyMovementsParams struct {
	Now   pgtype.Timestamptz `json:"now"`
	Limit int32              `json:"limit"`
}

func (q *Queries) ListExpiredMoneyMovements(ctx context.Context, arg ListExpiredMoneyMovementsParams) ([]MoneyMovement, error) {
	return q.listMoneyMovements(ctx, listExpiredMoneyMovements, arg.Now, arg.Limit)
}

func (q *Queries) listMoneyMovements(ctx context.Context, query string, args ...interface{}) ([]MoneyMovement, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MoneyMovement{}
	for rows.Next() {
		i, err := scanMoneyMovement(rows)
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

func scanMoneyMovement(row rowScanner) (MoneyMovement, error) {
	var i MoneyMovement
	err := row.Scan(
		&i.ID,
		&i.MerchantTransactionID,
		&i.Rail,
		&i.Kind,
		&i.Direction,
		&i.Status,
		&i.StatusReason,
		&i.Amount,
		&i.Fee,
		&i.FeeBreakdown,
		&i.Currency,
		&i.UserID,
		&i.WalletID,
		&i.BeneficiaryWalletID,
		&i.ClearingAccountCode,
		&i.SettlementAccountCode,
		&i.ExternalReference,
		&i.VoucherCode,
		&i.ExpiresAt,
		&i.Debited,
		&i.BeneficiaryCredited,
		&i.RawRequest,
		&i.RawResponse,
		&i.Metadata,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CompletedAt,
	)
	return i, err
}
