package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// LedgerAccountRepository defines data access for the chart of accounts.
type LedgerAccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCode(ctx context.Context, code string) (*domain.Account, error)
	GetByCodesTx(ctx context.Context, tx Transaction, codes []string) ([]*domain.Account, error)
	GetByIDsTx(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateName(ctx context.Context, tx Transaction, code, name string, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// AccountTotals are the summed journal lines of one account.
type AccountTotals struct {
	AccountID string
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

// JournalRepository defines data access for journal entries and lines.
type JournalRepository interface {
	// Create writes the entry and all its lines. A reused reference yields
	// domain.ErrDuplicateReference.
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByReference(ctx context.Context, reference string) (*domain.JournalEntry, error)
	GetByReferenceTx(ctx context.Context, tx Transaction, reference string) (*domain.JournalEntry, error)
	AccountTotals(ctx context.Context) ([]AccountTotals, error)
	CheckConsistency(ctx context.Context) (debits, credits decimal.Decimal, err error)
}

// WalletRepository defines data access for wallets and floats.
type WalletRepository interface {
	Create(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Wallet, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, version int64, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.WalletStatus, updatedAt time.Time) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Wallet, error)
	SumByLedgerAccount(ctx context.Context) (map[string]decimal.Decimal, error)
}

// WalletTransactionRepository defines data access for wallet balance history.
type WalletTransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.WalletTransaction) error
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error)
}

// StatusTracker polls a non-terminal movement in the background until the
// rail reports a final status.
type StatusTracker interface {
	Track(m *domain.MoneyMovement) bool
}

// MovementRepository defines data access for money movement records.
type MovementRepository interface {
	// Create inserts the record. A reused merchant transaction id yields
	// domain.ErrDuplicateReference.
	Create(ctx context.Context, tx Transaction, m *domain.MoneyMovement) error
	Update(ctx context.Context, tx Transaction, m *domain.MoneyMovement) error
	GetByID(ctx context.Context, id string) (*domain.MoneyMovement, error)
	GetByReference(ctx context.Context, reference string) (*domain.MoneyMovement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.MoneyMovement, error)
	GetByReferenceForUpdate(ctx context.Context, tx Transaction, reference string) (*domain.MoneyMovement, error)
	GetByExternalReferenceForUpdate(ctx context.Context, tx Transaction, rail domain.Rail, externalRef string) (*domain.MoneyMovement, error)
	GetByVoucherCodeForUpdate(ctx context.Context, tx Transaction, code string) (*domain.MoneyMovement, error)
	// ListStale returns non-terminal records on rails whose last update and
	// last poll are both before cutoff, least recently touched first.
	ListStale(ctx context.Context, rails []domain.Rail, cutoff time.Time, limit int) ([]*domain.MoneyMovement, error)
	// MarkPolled records that the rail was asked about the record at at.
	MarkPolled(ctx context.Context, id string, at time.Time) error
	// ListExpired returns non-terminal records whose expiry is at or before now.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.MoneyMovement, error)
}

// FeeConfigRepository defines data access for effective-dated fee configurations.
type FeeConfigRepository interface {
	Create(ctx context.Context, tx Transaction, cfg *domain.FeeConfiguration) error
	FindActive(ctx context.Context, supplierCode, serviceType string, tier domain.TierLevel, at time.Time) (*domain.FeeConfiguration, error)
}

// TaxRepository defines data access for tax transactions.
type TaxRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.TaxTransaction) error
	ListByMovement(ctx context.Context, movementID string) ([]*domain.TaxTransaction, error)
}

// TierRepository stores user pricing tiers.
type TierRepository interface {
	TierResolver
	SetUserTier(ctx context.Context, userID string, tier domain.TierLevel) error
}

// TierResolver resolves a user's pricing tier.
type TierResolver interface {
	GetUserTier(ctx context.Context, userID string) (domain.TierLevel, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	// GetUnpublished returns pending events with fewer than maxAttempts failures.
	GetUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	RecordFailure(ctx context.Context, id, lastError string) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyPending is the value a claimed key holds until its response is stored.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not. A nil
	// response claims the key with IdempotencyPending.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// RailRequest asks a rail to start a movement. Reference is the dedupe key
// the rail must honour on redelivery.
type RailRequest struct {
	Rail              domain.Rail
	Reference         string
	ExternalReference string
	Direction         domain.Direction
	Amount            decimal.Decimal
	Currency          string
	UserID            string
	ExpiresAt         *time.Time
	Details           domain.JSON
}

// RailResponse is a rail's view of a movement.
type RailResponse struct {
	ExternalReference string
	StatusCode        string
	Reason            string
	Amount            *decimal.Decimal
	Raw               domain.JSON
}

// RailClient talks to one external payment rail.
type RailClient interface {
	Initiate(ctx context.Context, req RailRequest) (*RailResponse, error)
	GetStatus(ctx context.Context, rail domain.Rail, reference string) (*RailResponse, error)
}

// RailRegistry resolves the client serving a rail.
type RailRegistry interface {
	Client(rail domain.Rail) (RailClient, error)
}
