package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

type movementService interface {
	GetStatus(ctx context.Context, reference, userID string) (*domain.MovementStatusView, error)
	Get(ctx context.Context, reference, userID string) (*domain.MoneyMovement, error)
	Taxes(ctx context.Context, reference, userID string) ([]*domain.TaxTransaction, error)
	Cancel(ctx context.Context, reference, userID string) (*usecase.SettlementResult, error)
}

// MovementHandler serves movement lookups and cancellation. Operators see
// every movement; users only their own.
type MovementHandler struct {
	movements movementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movements movementService) *MovementHandler {
	return &MovementHandler{movements: movements}
}

// Status handles GET /movements/{reference}/status.
func (h *MovementHandler) Status(w http.ResponseWriter, r *http.Request) {
	view, err := h.movements.GetStatus(r.Context(), chi.URLParam(r, "reference"), ownerScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MovementStatusFromView(view))
}

// Get handles GET /movements/{reference}.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.movements.Get(r.Context(), chi.URLParam(r, "reference"), ownerScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MovementFromDomain(m, false))
}

// Taxes handles GET /movements/{reference}/taxes.
func (h *MovementHandler) Taxes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.movements.Taxes(r.Context(), chi.URLParam(r, "reference"), ownerScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.TaxTransactionResponse]{Data: dto.TaxTransactionsFromDomain(rows)})
}

// Cancel handles POST /movements/{reference}/cancel.
func (h *MovementHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.movements.Cancel(r.Context(), chi.URLParam(r, "reference"), ownerScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettlementFromResult(result))
}
