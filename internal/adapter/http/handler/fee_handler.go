package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/domain"
)

type feeQuoter interface {
	QuoteFee(ctx context.Context, userID, supplierCode, serviceType string, amount decimal.Decimal) (*domain.FeeBreakdown, error)
}

type feeAdmin interface {
	ConfigureFee(ctx context.Context, cfg domain.FeeConfiguration) (*domain.FeeConfiguration, error)
	SetUserTier(ctx context.Context, userID, tier string) (domain.TierLevel, error)
}

// FeeHandler serves fee quotes and fee administration.
type FeeHandler struct {
	quoter feeQuoter
	admin  feeAdmin
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(quoter feeQuoter, admin feeAdmin) *FeeHandler {
	return &FeeHandler{quoter: quoter, admin: admin}
}

// Quote handles POST /fees/quote for the caller's tier.
func (h *FeeHandler) Quote(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.FeeQuoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	breakdown, err := h.quoter.QuoteFee(r.Context(), userID, req.SupplierCode, req.ServiceType, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FeeQuoteFromDomain(breakdown))
}

// Configure handles POST /admin/fees.
func (h *FeeHandler) Configure(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfigureFeeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	cfg, err := h.admin.ConfigureFee(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FeeConfigurationFromDomain(cfg))
}

// SetTier handles PUT /admin/users/{userID}/tier.
func (h *FeeHandler) SetTier(w http.ResponseWriter, r *http.Request) {
	var req dto.SetTierRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	userID := chi.URLParam(r, "userID")
	tier, err := h.admin.SetUserTier(r.Context(), userID, req.Tier)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user_id": userID, "tier": string(tier)})
}
