package mocks

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// MockFeeConfigRepository is a mock implementation of FeeConfigRepository.
type MockFeeConfigRepository struct {
	mu      sync.RWMutex
	configs []*domain.FeeConfiguration
	Lookups int

	CreateFunc     func(ctx context.Context, tx usecase.Transaction, cfg *domain.FeeConfiguration) error
	FindActiveFunc func(ctx context.Context, supplierCode, serviceType string, tier domain.TierLevel, at time.Time) (*domain.FeeConfiguration, error)
}

func NewMockFeeConfigRepository(configs ...*domain.FeeConfiguration) *MockFeeConfigRepository {
	return &MockFeeConfigRepository{configs: configs}
}

func (m *MockFeeConfigRepository) Create(ctx context.Context, tx usecase.Transaction, cfg *domain.FeeConfiguration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, cfg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = append(m.configs, cfg)
	return nil
}

func (m *MockFeeConfigRepository) FindActive(ctx context.Context, supplierCode, serviceType string, tier domain.TierLevel, at time.Time) (*domain.FeeConfiguration, error) {
	m.mu.Lock()
	m.Lookups++
	m.mu.Unlock()
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, supplierCode, serviceType, tier, at)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.configs {
		if c.SupplierCode == supplierCode && c.ServiceType == serviceType && c.TierLevel == tier && c.ActiveAt(at) {
			return c, nil
		}
	}
	return nil, domain.ErrFeeConfigurationNotFound
}

// MockTierRepository is a mock implementation of TierRepository.
type MockTierRepository struct {
	mu    sync.RWMutex
	tiers map[string]domain.TierLevel

	GetUserTierFunc func(ctx context.Context, userID string) (domain.TierLevel, error)
	SetUserTierFunc func(ctx context.Context, userID string, tier domain.TierLevel) error
}

func NewMockTierRepository() *MockTierRepository {
	return &MockTierRepository{tiers: make(map[string]domain.TierLevel)}
}

func (m *MockTierRepository) GetUserTier(ctx context.Context, userID string) (domain.TierLevel, error) {
	if m.GetUserTierFunc != nil {
		return m.GetUserTierFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tiers[userID]; ok {
		return t, nil
	}
	return domain.DefaultTier, nil
}

func (m *MockTierRepository) SetUserTier(ctx context.Context, userID string, tier domain.TierLevel) error {
	if m.SetUserTierFunc != nil {
		return m.SetUserTierFunc(ctx, userID, tier)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[userID] = tier
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu        sync.Mutex
	Events    []*domain.OutboxEvent
	Published []string
	Failures  map[string]string

	GetUnpublishedFunc func(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc  func(ctx context.Context, id string, publishedAt time.Time) error
}

func NewMockOutboxRepository(events ...*domain.OutboxEvent) *MockOutboxRepository {
	return &MockOutboxRepository{Events: events, Failures: make(map[string]string)}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit, maxAttempts int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit, maxAttempts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published && (maxAttempts == 0 || e.Attempts < maxAttempts) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, id)
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
		}
	}
	return nil
}

func (m *MockOutboxRepository) RecordFailure(ctx context.Context, id, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures[id] = lastError
	for _, e := range m.Events {
		if e.ID == id {
			e.Attempts++
			e.LastError = lastError
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return "mock-id-" + strconv.Itoa(m.counter)
}
