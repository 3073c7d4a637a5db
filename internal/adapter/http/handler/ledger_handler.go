package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

type ledgerService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	RenameAccount(ctx context.Context, code, name string) (*domain.Account, error)
	GetAccount(ctx context.Context, code string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	PostJournalEntry(ctx context.Context, input usecase.PostJournalEntryInput) (*domain.JournalEntry, error)
	GetEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error)
	GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error)
	CheckConsistency(ctx context.Context) (bool, error)
}

type reconciliationService interface {
	Report(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler serves the chart of accounts, journal and ledger-wide checks.
type LedgerHandler struct {
	ledger    ledgerService
	reconcile reconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger ledgerService, reconcile reconciliationService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, reconcile: reconcile}
}

// CreateAccount handles POST /ledger/accounts.
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLedgerAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.ledger.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.LedgerAccountFromDomain(account))
}

// ListAccounts handles GET /ledger/accounts.
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 100)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.ledger.ListAccounts(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.LedgerAccountResponse]{
		Data:   dto.LedgerAccountsFromDomain(accounts),
		Limit:  limit,
		Offset: offset,
	})
}

// GetAccount handles GET /ledger/accounts/{code}.
func (h *LedgerHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.GetAccount(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LedgerAccountFromDomain(account))
}

// RenameAccount handles PATCH /ledger/accounts/{code}.
func (h *LedgerHandler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameLedgerAccountRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	account, err := h.ledger.RenameAccount(r.Context(), chi.URLParam(r, "code"), req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LedgerAccountFromDomain(account))
}

// PostEntry handles POST /ledger/entries. Replaying a reference returns the
// entry already posted under it.
func (h *LedgerHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.PostJournalEntryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	entry, err := h.ledger.PostJournalEntry(r.Context(), req.ToUseCaseInput())
	if errors.Is(err, domain.ErrDuplicateReference) {
		existing, getErr := h.ledger.GetEntryByReference(r.Context(), req.Reference)
		if getErr == nil {
			writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(existing))
			return
		}
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}

// GetEntry handles GET /ledger/entries/{reference}.
func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ledger.GetEntryByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}

// TrialBalance handles GET /ledger/trial-balance.
func (h *LedgerHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tb, err := h.ledger.GetTrialBalance(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.TrialBalanceFromDomain(tb))
}

// CheckConsistency handles GET /ledger/consistency.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledger.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"status":     "inconsistent",
				"consistent": false,
				"message":    err.Error(),
			})
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "consistent",
		"consistent": consistent,
	})
}

// Reconciliation handles GET /ledger/reconciliation.
func (h *LedgerHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconcile.Report(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := http.StatusOK
	if !report.Reconciled() {
		status = http.StatusConflict
	}
	writeJSON(w, status, dto.ReconciliationFromReport(report))
}
