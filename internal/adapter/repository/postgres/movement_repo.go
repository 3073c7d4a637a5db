package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/postgres/generated"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const movementReferenceConstraint = "money_movements_merchant_transaction_id_key"

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(db generated.DBTX) *MovementRepository {
	return &MovementRepository{queries: generated.New(db)}
}

// Create inserts the record in tx.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.MoneyMovement) error {
	row, err := movementToRow(m)
	if err != nil {
		return err
	}

	err = queriesFor(tx).CreateMoneyMovement(ctx, row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation && pgErr.ConstraintName == movementReferenceConstraint {
			return domain.ErrDuplicateReference
		}
		return err
	}

	return nil
}

// Update writes every mutable column of m in tx.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, m *domain.MoneyMovement) error {
	row, err := movementToRow(m)
	if err != nil {
		return err
	}

	n, err := queriesFor(tx).UpdateMoneyMovement(ctx, generated.UpdateMoneyMovementParams{
		ID:                    row.ID,
		Status:                row.Status,
		StatusReason:          row.StatusReason,
		Fee:                   row.Fee,
		FeeBreakdown:          row.FeeBreakdown,
		BeneficiaryWalletID:   row.BeneficiaryWalletID,
		ClearingAccountCode:   row.ClearingAccountCode,
		SettlementAccountCode: row.SettlementAccountCode,
		ExternalReference:     row.ExternalReference,
		VoucherCode:           row.VoucherCode,
		ExpiresAt:             row.ExpiresAt,
		Debited:               row.Debited,
		BeneficiaryCredited:   row.BeneficiaryCredited,
		RawRequest:            row.RawRequest,
		RawResponse:           row.RawResponse,
		Metadata:              row.Metadata,
		Version:               row.Version,
		UpdatedAt:             row.UpdatedAt,
		CompletedAt:           row.CompletedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMovementNotFound
	}

	return nil
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.MoneyMovement, error) {
	return toMovement(r.queries.GetMoneyMovementByID(ctx, id))
}

// GetByReference retrieves a movement by merchant transaction id.
func (r *MovementRepository) GetByReference(ctx context.Context, reference string) (*domain.MoneyMovement, error) {
	return toMovement(r.queries.GetMoneyMovementByReference(ctx, reference))
}

// GetByIDForUpdate locks a movement by ID.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.MoneyMovement, error) {
	return toMovement(queriesFor(tx).GetMoneyMovementByIDForUpdate(ctx, id))
}

// GetByReferenceForUpdate locks a movement by merchant transaction id.
func (r *MovementRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string) (*domain.MoneyMovement, error) {
	return toMovement(queriesFor(tx).GetMoneyMovementByReferenceForUpdate(ctx, reference))
}

// GetByExternalReferenceForUpdate locks the movement a rail knows by externalRef.
func (r *MovementRepository) GetByExternalReferenceForUpdate(ctx context.Context, tx usecase.Transaction, rail domain.Rail, externalRef string) (*domain.MoneyMovement, error) {
	return toMovement(queriesFor(tx).GetMoneyMovementByExternalReferenceForUpdate(ctx, generated.GetMoneyMovementByExternalReferenceForUpdateParams{
		Rail:              string(rail),
		ExternalReference: externalRef,
	}))
}

// GetByVoucherCodeForUpdate locks the movement that issued code.
func (r *MovementRepository) GetByVoucherCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.MoneyMovement, error) {
	return toMovement(queriesFor(tx).GetMoneyMovementByVoucherCodeForUpdate(ctx, code))
}

// ListStale returns open movements on rails neither updated nor polled
// since cutoff.
func (r *MovementRepository) ListStale(ctx context.Context, rails []domain.Rail, cutoff time.Time, limit int) ([]*domain.MoneyMovement, error) {
	names := make([]string, len(rails))
	for i, rl := range rails {
		names[i] = string(rl)
	}
	rows, err := r.queries.ListStaleMoneyMovements(ctx, generated.ListStaleMoneyMovementsParams{
		Rails:  names,
		Cutoff: timeToPgTimestamptz(cutoff),
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows)
}

// MarkPolled stamps the movement's last poll time.
func (r *MovementRepository) MarkPolled(ctx context.Context, id string, at time.Time) error {
	return r.queries.MarkMoneyMovementPolled(ctx, generated.MarkMoneyMovementPolledParams{
		ID:           id,
		LastPolledAt: timeToPgTimestamptz(at),
	})
}

// ListExpired returns open movements whose expiry has passed.
func (r *MovementRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.MoneyMovement, error) {
	rows, err := r.queries.ListExpiredMoneyMovements(ctx, generated.ListExpiredMoneyMovementsParams{
		Now:   timeToPgTimestamptz(now),
		Limit: int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return rowsToMovements(rows)
}

func toMovement(row generated.MoneyMovement, err error) (*domain.MoneyMovement, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}

		return nil, err
	}

	return rowToMovement(row)
}

func rowsToMovements(rows []generated.MoneyMovement) ([]*domain.MoneyMovement, error) {
	out := make([]*domain.MoneyMovement, 0, len(rows))
	for _, row := range rows {
		m, err := rowToMovement(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func movementToRow(m *domain.MoneyMovement) (generated.MoneyMovement, error) {
	feeBreakdown, err := marshalJSON(m.FeeBreakdown, m.FeeBreakdown == nil)
	if err != nil {
		return generated.MoneyMovement{}, fmt.Errorf("fee breakdown: %w", err)
	}
	rawRequest, err := marshalJSON(m.RawRequest, m.RawRequest == nil)
	if err != nil {
		return generated.MoneyMovement{}, fmt.Errorf("raw request: %w", err)
	}
	rawResponse, err := marshalJSON(m.RawResponse, m.RawResponse == nil)
	if err != nil {
		return generated.MoneyMovement{}, fmt.Errorf("raw response: %w", err)
	}
	metadata, err := marshalJSON(m.Metadata, m.Metadata == nil)
	if err != nil {
		return generated.MoneyMovement{}, fmt.Errorf("metadata: %w", err)
	}

	return generated.MoneyMovement{
		ID:                    m.ID,
		MerchantTransactionID: m.MerchantTransactionID,
		Rail:                  string(m.Rail),
		Kind:                  string(m.Kind),
		Direction:             string(m.Direction),
		Status:                string(m.Status),
		StatusReason:          m.StatusReason,
		Amount:                decimalToNumeric(m.Amount),
		Fee:                   decimalToNumeric(m.Fee),
		FeeBreakdown:          feeBreakdown,
		Currency:              m.Currency,
		UserID:                m.UserID,
		WalletID:              m.WalletID,
		BeneficiaryWalletID:   m.BeneficiaryWalletID,
		ClearingAccountCode:   m.ClearingAccountCode,
		SettlementAccountCode: m.SettlementAccountCode,
		ExternalReference:     m.ExternalReference,
		VoucherCode:           m.VoucherCode,
		ExpiresAt:             optionalTimestamptz(m.ExpiresAt),
		Debited:               m.Debited,
		BeneficiaryCredited:   m.BeneficiaryCredited,
		RawRequest:            rawRequest,
		RawResponse:           rawResponse,
		Metadata:              metadata,
		Version:               m.Version,
		CreatedAt:             timeToPgTimestamptz(m.CreatedAt),
		UpdatedAt:             timeToPgTimestamptz(m.UpdatedAt),
		CompletedAt:           optionalTimestamptz(m.CompletedAt),
	}, nil
}

func rowToMovement(row generated.MoneyMovement) (*domain.MoneyMovement, error) {
	feeBreakdown, err := unmarshalJSON[*domain.FeeBreakdown](row.FeeBreakdown)
	if err != nil {
		return nil, fmt.Errorf("fee breakdown: %w", err)
	}
	rawRequest, err := unmarshalJSON[domain.JSON](row.RawRequest)
	if err != nil {
		return nil, fmt.Errorf("raw request: %w", err)
	}
	rawResponse, err := unmarshalJSON[domain.JSON](row.RawResponse)
	if err != nil {
		return nil, fmt.Errorf("raw response: %w", err)
	}
	metadata, err := unmarshalJSON[domain.JSON](row.Metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	return &domain.MoneyMovement{
		ID:                    row.ID,
		MerchantTransactionID: row.MerchantTransactionID,
		Rail:                  domain.Rail(row.Rail),
		Kind:                  domain.MovementKind(row.Kind),
		Direction:             domain.Direction(row.Direction),
		Status:                domain.MovementStatus(row.Status),
		StatusReason:          row.StatusReason,
		Amount:                numericToDecimal(row.Amount),
		Fee:                   numericToDecimal(row.Fee),
		FeeBreakdown:          feeBreakdown,
		Currency:              row.Currency,
		UserID:                row.UserID,
		WalletID:              row.WalletID,
		BeneficiaryWalletID:   row.BeneficiaryWalletID,
		ClearingAccountCode:   row.ClearingAccountCode,
		SettlementAccountCode: row.SettlementAccountCode,
		ExternalReference:     row.ExternalReference,
		VoucherCode:           row.VoucherCode,
		ExpiresAt:             timestamptzPtr(row.ExpiresAt),
		Debited:               row.Debited,
		BeneficiaryCredited:   row.BeneficiaryCredited,
		RawRequest:            rawRequest,
		RawResponse:           rawResponse,
		Metadata:              metadata,
		Version:               row.Version,
		CreatedAt:             row.CreatedAt.Time,
		UpdatedAt:             row.UpdatedAt.Time,
		CompletedAt:           timestamptzPtr(row.CompletedAt),
	}, nil
}
