package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

func copyMovement(m *domain.MoneyMovement) *domain.MoneyMovement {
	c := *m
	c.RawRequest = maps.Clone(m.RawRequest)
	c.RawResponse = maps.Clone(m.RawResponse)
	c.Metadata = maps.Clone(m.Metadata)
	if m.FeeBreakdown != nil {
		b := *m.FeeBreakdown
		c.FeeBreakdown = &b
	}
	return &c
}

// Create inserts a movement; a reused merchant transaction id is a duplicate.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.MoneyMovement) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.movementByRef[m.MerchantTransactionID]; ok {
		return domain.ErrDuplicateReference
	}
	st.movements[m.ID] = copyMovement(m)
	st.movementByRef[m.MerchantTransactionID] = m.ID
	return nil
}

// Update replaces a movement.
func (r *MovementRepository) Update(ctx context.Context, tx usecase.Transaction, m *domain.MoneyMovement) error {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.movements[m.ID]; !ok {
		return domain.ErrMovementNotFound
	}
	st.movements[m.ID] = copyMovement(m)
	return nil
}

// GetByID returns a committed movement.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.MoneyMovement, error) {
	var out *domain.MoneyMovement
	r.store.read(func(st *state) {
		if m, ok := st.movements[id]; ok {
			out = copyMovement(m)
		}
	})
	if out == nil {
		return nil, domain.ErrMovementNotFound
	}
	return out, nil
}

// GetByReference returns a committed movement by merchant transaction id.
func (r *MovementRepository) GetByReference(ctx context.Context, reference string) (*domain.MoneyMovement, error) {
	var out *domain.MoneyMovement
	r.store.read(func(st *state) {
		if id, ok := st.movementByRef[reference]; ok {
			out = copyMovement(st.movements[id])
		}
	})
	if out == nil {
		return nil, domain.ErrMovementNotFound
	}
	return out, nil
}

// GetByIDForUpdate returns a movement visible to tx.
func (r *MovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.MoneyMovement, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	m, ok := st.movements[id]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	return copyMovement(m), nil
}

// GetByReferenceForUpdate returns a movement visible to tx by merchant transaction id.
func (r *MovementRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string) (*domain.MoneyMovement, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	id, ok := st.movementByRef[reference]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	return copyMovement(st.movements[id]), nil
}

// GetByExternalReferenceForUpdate returns a movement by its rail reference.
func (r *MovementRepository) GetByExternalReferenceForUpdate(ctx context.Context, tx usecase.Transaction, rail domain.Rail, externalRef string) (*domain.MoneyMovement, error) {
	return r.findTx(tx, func(m *domain.MoneyMovement) bool {
		return m.Rail == rail && m.ExternalReference == externalRef
	})
}

// GetByVoucherCodeForUpdate returns a movement by voucher code.
func (r *MovementRepository) GetByVoucherCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.MoneyMovement, error) {
	return r.findTx(tx, func(m *domain.MoneyMovement) bool { return m.VoucherCode == code })
}

func (r *MovementRepository) findTx(tx usecase.Transaction, match func(*domain.MoneyMovement) bool) (*domain.MoneyMovement, error) {
	st, err := r.store.stateOf(tx)
	if err != nil {
		return nil, err
	}
	for _, m := range st.movements {
		if match(m) {
			return copyMovement(m), nil
		}
	}
	return nil, domain.ErrMovementNotFound
}

// ListStale returns non-terminal movements on rails neither updated nor
// polled since cutoff, least recently touched first.
func (r *MovementRepository) ListStale(ctx context.Context, rails []domain.Rail, cutoff time.Time, limit int) ([]*domain.MoneyMovement, error) {
	type candidate struct {
		m       *domain.MoneyMovement
		touched time.Time
	}
	var found []candidate
	r.store.read(func(st *state) {
		for _, m := range st.movements {
			if m.Status.IsTerminal() || !slices.Contains(rails, m.Rail) {
				continue
			}
			touched := m.UpdatedAt
			if at, ok := st.polledAt[m.ID]; ok && at.After(touched) {
				touched = at
			}
			if touched.Before(cutoff) {
				found = append(found, candidate{m: copyMovement(m), touched: touched})
			}
		}
	})
	sort.Slice(found, func(i, j int) bool {
		if found[i].touched.Equal(found[j].touched) {
			return found[i].m.ID < found[j].m.ID
		}
		return found[i].touched.Before(found[j].touched)
	})

	out := make([]*domain.MoneyMovement, 0, len(found))
	for _, c := range found {
		out = append(out, c.m)
	}
	return page(out, limit, 0), nil
}

// MarkPolled records a poll of movement id at at.
func (r *MovementRepository) MarkPolled(ctx context.Context, id string, at time.Time) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.movements[id]; !ok {
			return domain.ErrMovementNotFound
		}
		st.polledAt[id] = at
		return nil
	})
}

// ListExpired returns non-terminal movements past their expiry at now.
func (r *MovementRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*domain.MoneyMovement, error) {
	return r.list(limit, func(m *domain.MoneyMovement) bool {
		return !m.Status.IsTerminal() && m.IsExpired(now)
	}), nil
}

func (r *MovementRepository) list(limit int, match func(*domain.MoneyMovement) bool) []*domain.MoneyMovement {
	var out []*domain.MoneyMovement
	r.store.read(func(st *state) {
		for _, m := range st.movements {
			if match(m) {
				out = append(out, copyMovement(m))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return page(out, limit, 0)
}
