package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

func beginTx(t *testing.T, pool pgxmock.PgxPoolIface) usecase.Transaction {
	t.Helper()
	pool.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	tx, err := newTxManager(pool).Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return tx
}

func sampleEntry() *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:        "entry-1",
		Reference: "QR-1",
		PostedAt:  time.Now(),
		CreatedAt: time.Now(),
		Lines: []domain.JournalLine{
			{ID: "l1", AccountID: "acc-2100", AccountCode: "2100", Side: domain.SideDebit, Amount: decimal.RequireFromString("103.08")},
			{ID: "l2", AccountID: "acc-2510", AccountCode: "2510", Side: domain.SideCredit, Amount: decimal.RequireFromString("103.08")},
		},
	}
}

func TestJournalRepositoryCreateWritesEntryAndLines(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO journal_entries").
		WithArgs("entry-1", "QR-1", "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO journal_lines").
		WithArgs("l1", "entry-1", "acc-2100", "2100", "debit", pgxmock.AnyArg(), "", int32(0)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec("INSERT INTO journal_lines").
		WithArgs("l2", "entry-1", "acc-2510", "2510", "credit", pgxmock.AnyArg(), "", int32(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	repo := NewJournalRepository(pool)
	if err := repo.Create(context.Background(), tx, sampleEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Commit(context.Background()); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	assertExpectations(t, pool)
}

func TestJournalRepositoryCreateMapsDuplicateReference(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("INSERT INTO journal_entries").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "journal_entries_reference_key"})
	pool.ExpectRollback()

	repo := NewJournalRepository(pool)
	err := repo.Create(context.Background(), tx, sampleEntry())
	if !errors.Is(err, domain.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
	_ = tx.Rollback(context.Background())

	assertExpectations(t, pool)
}

func TestMovementRepositoryCreateMapsOnlyReferenceConflicts(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "merchant transaction id", constraint: movementReferenceConstraint, want: domain.ErrDuplicateReference},
		{name: "voucher code", constraint: "idx_money_movements_voucher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newMockPool(t)
			tx := beginTx(t, pool)

			pgErr := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: tt.constraint}
			pool.ExpectExec("INSERT INTO money_movements").WillReturnError(pgErr)

			repo := NewMovementRepository(pool)
			err := repo.Create(context.Background(), tx, &domain.MoneyMovement{
				ID:                    "mv-1",
				MerchantTransactionID: "QR-1",
				Amount:                decimal.NewFromInt(100),
				Metadata:              domain.JSON{"channel": "app"},
			})

			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				return
			}
			if errors.Is(err, domain.ErrDuplicateReference) || !errors.As(err, &pgErr) {
				t.Fatalf("expected raw pg error, got %v", err)
			}
		})
	}
}

func TestMovementRepositoryNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM money_movements WHERE merchant_transaction_id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewMovementRepository(pool)
	_, err := repo.GetByReference(context.Background(), "missing")
	if !errors.Is(err, domain.ErrMovementNotFound) {
		t.Fatalf("expected ErrMovementNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestWalletRepositoryUpdateBalanceMissingWallet(t *testing.T) {
	pool := newMockPool(t)
	tx := beginTx(t, pool)

	pool.ExpectExec("UPDATE wallets").
		WithArgs("w-404", pgxmock.AnyArg(), int64(2), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewWalletRepository(pool)
	err := repo.UpdateBalance(context.Background(), tx, "w-404", decimal.NewFromInt(5), 2, time.Now())
	if !errors.Is(err, domain.ErrWalletNotFound) {
		t.Fatalf("expected ErrWalletNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestTierRepositoryDefaultsWhenUnset(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT tier_level FROM user_tiers").
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)
	pool.ExpectQuery("SELECT tier_level FROM user_tiers").
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows([]string{"tier_level"}).AddRow("gold"))

	repo := NewTierRepository(pool)

	tier, err := repo.GetUserTier(context.Background(), "user-1")
	if err != nil || tier != domain.DefaultTier {
		t.Fatalf("expected default tier, got %s, %v", tier, err)
	}

	tier, err = repo.GetUserTier(context.Background(), "user-2")
	if err != nil || tier != domain.TierGold {
		t.Fatalf("expected gold, got %s, %v", tier, err)
	}

	assertExpectations(t, pool)
}

func TestFeeConfigRepositoryFindActiveNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM fee_configurations").
		WithArgs("ZAPPER", "qr_payment", "bronze", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	repo := NewFeeConfigRepository(pool)
	_, err := repo.FindActive(context.Background(), "ZAPPER", "qr_payment", domain.TierBronze, time.Now())
	if !errors.Is(err, domain.ErrFeeConfigurationNotFound) {
		t.Fatalf("expected ErrFeeConfigurationNotFound, got %v", err)
	}

	assertExpectations(t, pool)
}

func TestOutboxRepositoryRecordFailure(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec("UPDATE outbox_events SET attempts = attempts \\+ 1").
		WithArgs("evt-1", "rail down").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewOutboxRepository(pool)
	if err := repo.RecordFailure(context.Background(), "evt-1", "rail down"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}
