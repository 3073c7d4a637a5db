package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/auth"
	"github.com/mymoolah/walletcore/internal/usecase"
)

type walletService interface {
	CreateWallet(ctx context.Context, input usecase.CreateWalletInput) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id string) (*domain.Wallet, error)
	ListWallets(ctx context.Context, ownerID string) ([]*domain.Wallet, error)
	ListWalletTransactions(ctx context.Context, walletID string, limit, offset int) ([]*domain.WalletTransaction, error)
	FundWallet(ctx context.Context, input usecase.FundWalletInput) (*domain.WalletTransaction, error)
	SetStatus(ctx context.Context, walletID string, status domain.WalletStatus) (*domain.Wallet, error)
}

// WalletHandler serves wallet endpoints.
type WalletHandler struct {
	wallets walletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets walletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Create handles POST /wallets. Only operators may open wallets for others.
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.CreateWalletRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.OwnerID != "" && req.OwnerID != userID && !auth.RoleFromContext(r.Context()).Satisfies(auth.RoleOperator) {
		writeError(w, http.StatusForbidden, "forbidden", "cannot open a wallet for another owner")
		return
	}

	wallet, err := h.wallets.CreateWallet(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.WalletFromDomain(wallet))
}

// List handles GET /wallets, returning the caller's wallets.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	owner := userID
	if q := r.URL.Query().Get("owner_id"); q != "" && auth.RoleFromContext(r.Context()).Satisfies(auth.RoleOperator) {
		owner = q
	}

	wallets, err := h.wallets.ListWallets(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.WalletResponse]{Data: dto.WalletsFromDomain(wallets)})
}

// Get handles GET /wallets/{id}.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.ownedWallet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// Transactions handles GET /wallets/{id}/transactions.
func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	wallet, ok := h.ownedWallet(w, r)
	if !ok {
		return
	}
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	txs, err := h.wallets.ListWalletTransactions(r.Context(), wallet.ID, limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.WalletTransactionResponse]{
		Data:   dto.WalletTransactionsFromDomain(txs),
		Limit:  limit,
		Offset: offset,
	})
}

// Fund handles POST /wallets/{id}/fund (operators).
func (h *WalletHandler) Fund(w http.ResponseWriter, r *http.Request) {
	var req dto.FundWalletRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	tx, err := h.wallets.FundWallet(r.Context(), usecase.FundWalletInput{
		WalletID:    chi.URLParam(r, "id"),
		Amount:      req.Amount,
		Reference:   req.Reference,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.WalletTransactionsFromDomain([]*domain.WalletTransaction{tx})[0])
}

// SetStatus handles PUT /wallets/{id}/status (operators).
func (h *WalletHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	wallet, err := h.wallets.SetStatus(r.Context(), chi.URLParam(r, "id"), domain.WalletStatus(req.Status))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

func (h *WalletHandler) ownedWallet(w http.ResponseWriter, r *http.Request) (*domain.Wallet, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	wallet, err := h.wallets.GetWallet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	if wallet.OwnerID != userID && !auth.RoleFromContext(r.Context()).Satisfies(auth.RoleOperator) {
		writeDomainError(w, r, domain.ErrWalletNotFound)
		return nil, false
	}
	return wallet, true
}
