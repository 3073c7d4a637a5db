package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createFeeConfiguration = `-- name: CreateFeeConfiguration :exec
INSERT INTO fee_configurations (
    id, supplier_code, service_type, tier_level,
    supplier_fee_type, supplier_fixed_minor, supplier_rate_bp, supplier_vat_bp, supplier_vat_inclusive,
    platform_fee_type, platform_fixed_minor, platform_rate_bp, platform_vat_bp, platform_vat_inclusive,
    effective_from, effective_to, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
`

func (q *Queries) CreateFeeConfiguration(ctx context.Context, arg FeeConfiguration) error {
	_, err := q.db.Exec(ctx, createFeeConfiguration,
		arg.ID,
		arg.SupplierCode,
		arg.ServiceType,
		arg.TierLevel,
		arg.SupplierFeeType,
		arg.SupplierFixedMinor,
		arg.SupplierRateBp,
		arg.SupplierVatBp,
		arg.SupplierVatInclusive,
		arg.PlatformFeeType,
		arg.PlatformFixedMinor,
		arg.PlatformRateBp,
		arg.PlatformVatBp,
		arg.PlatformVatInclusive,
		arg.EffectiveFrom,
		arg.EffectiveTo,
		arg.CreatedAt,
	)
	return err
}

const findActiveFeeConfiguration = `-- name: FindActiveFeeConfiguration :one
SELECT id, supplier_code, service_type, tier_level,
       supplier_fee_type, supplier_fixed_minor, supplier_rate_bp, supplier_vat_bp, supplier_vat_inclusive,
       platform_fee_type, platform_fixed_minor, platform_rate_bp, platform_vat_bp, platform_vat_inclusive,
       effective_from, effective_to, created_at
FROM fee_configurations
WHERE supplier_code = $1
  AND service_type = $2
  AND tier_level = $3
  AND effective_from <= $4
  AND (effective_to IS NULL OR effective_to > $4)
ORDER BY effective_from DESC
LIMIT 1
`

type FindActiveFeeConfigurationParams struct {
	SupplierCode string             `json:"supplier_code"`
	ServiceType  string             `json:"service_type"`
	TierLevel    string             `json:"tier_level"`
	At           pgtype.Timestamptz `json:"at"`
}

func (q *Queries) FindActiveFeeConfiguration(ctx context.Context, arg FindActiveFeeConfigurationParams) (FeeConfiguration, error) {
	row := q.db.QueryRow(ctx, findActiveFeeConfiguration, arg.SupplierCode, arg.ServiceType, arg.TierLevel, arg.At)
	var i FeeConfiguration
	err := row.Scan(
		&i.ID,
		&i.SupplierCode,
		&i.ServiceType,
		&i.TierLevel,
		&i.SupplierFeeType,
		&i.SupplierFixedMinor,
		&i.SupplierRateBp,
		&i.SupplierVatBp,
		&i.SupplierVatInclusive,
		&i.PlatformFeeType,
		&i.PlatformFixedMinor,
		&i.PlatformRateBp,
		&i.PlatformVatBp,
		&i.PlatformVatInclusive,
		&i.EffectiveFrom,
		&i.EffectiveTo,
		&i.CreatedAt,
	)
	return i, err
}

const getUserTier = `-- name: GetUserTier :one
SELECT tier_level FROM user_tiers WHERE user_id = $1
`

func (q *Queries) GetUserTier(ctx context.Context, userID string) (string, error) {
	row := q.db.QueryRow(ctx, getUserTier, userID)
	var tierLevel string
	err := row.Scan(&tierLevel)
	return tierLevel, err
}

const upsertUserTier = `-- name: UpsertUserTier :exec
INSERT INTO user_tiers (user_id, tier_level, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET tier_level = EXCLUDED.tier_level, updated_at = EXCLUDED.updated_at
`

type UpsertUserTierParams struct {
	UserID    string             `json:"user_id"`
	TierLevel string             `json:"tier_level"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpsertUserTier(ctx context.Context, arg UpsertUserTierParams) error {
	_, err := q.db.Exec(ctx, upsertUserTier, arg.UserID, arg.TierLevel, arg.UpdatedAt)
	return err
}

const createTaxTransaction = `-- name: CreateTaxTransaction :exec
INSERT INTO tax_transactions (id, movement_id, reference, tax_type, base_minor, tax_minor, rate_basis_points, direction, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func (q *Queries) CreateTaxTransaction(ctx context.Context, arg TaxTransaction) error {
	_, err := q.db.Exec(ctx, createTaxTransaction,
		arg.ID,
		arg.MovementID,
		arg.Reference,
		arg.TaxType,
		arg.BaseMinor,
		arg.TaxMinor,
		arg.RateBasisPoints,
		arg.Direction,
		arg.CreatedAt,
	)
	return err
}

const listTaxTransactionsByMovement = `-- name: ListTaxTransactionsByMovement :many
SELECT id, movement_id, reference, tax_type, base_minor, tax_minor, rate_basis_points, direction, created_at
FROM tax_transactions
WHERE movement_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListTaxTransactionsByMovement(ctx context.Context, movementID string) ([]TaxTransaction, error) {
	rows, err := q.db.Query(ctx, listTaxTransactionsByMovement, movementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []TaxTransaction{}
	for rows.Next() {
		var i TaxTransaction
		if err := rows.Scan(
			&i.ID,
			&i.MovementID,
			&i.Reference,
			&i.TaxType,
			&i.BaseMinor,
			&i.TaxMinor,
			&i.RateBasisPoints,
			&i.Direction,
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
