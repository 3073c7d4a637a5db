package handler

import (
	"context"
	"net/http"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/usecase"
)

type sweepService interface {
	ExpireOverdue(ctx context.Context) (*usecase.SweepReport, error)
	RecoverStale(ctx context.Context) (*usecase.SweepReport, error)
}

type outboxRelay interface {
	ProcessBatch(ctx context.Context) (int, error)
}

// AdminHandler triggers background jobs on demand.
type AdminHandler struct {
	sweeps sweepService
	relay  outboxRelay
}

// NewAdminHandler creates a new AdminHandler. relay may be nil.
func NewAdminHandler(sweeps sweepService, relay outboxRelay) *AdminHandler {
	return &AdminHandler{sweeps: sweeps, relay: relay}
}

// ExpireSweep handles POST /admin/sweeps/expire.
func (h *AdminHandler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeps.ExpireOverdue(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SweepFromReport("expire", report))
}

// RecoverySweep handles POST /admin/sweeps/recover.
func (h *AdminHandler) RecoverySweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeps.RecoverStale(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SweepFromReport("recover", report))
}

// FlushOutbox handles POST /admin/outbox/flush.
func (h *AdminHandler) FlushOutbox(w http.ResponseWriter, r *http.Request) {
	if h.relay == nil {
		writeError(w, http.StatusServiceUnavailable, "outbox relay not running", "")
		return
	}
	n, err := h.relay.ProcessBatch(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"published": n})
}
