package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mymoolah/walletcore/internal/adapter/rail"
	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const maxCallbackBytes = 256 << 10

type signatureVerifier interface {
	Verify(rail domain.Rail, body []byte, signature string) error
}

type callbackService interface {
	Handle(ctx context.Context, rail domain.Rail, payload []byte) (*usecase.SettlementResult, error)
}

// CallbackHandler receives rail notifications.
type CallbackHandler struct {
	verifier  signatureVerifier
	callbacks callbackService
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(verifier signatureVerifier, callbacks callbackService) *CallbackHandler {
	return &CallbackHandler{verifier: verifier, callbacks: callbacks}
}

// Receive handles POST /callbacks/{rail}. The body is verified byte for
// byte before it is parsed.
func (h *CallbackHandler) Receive(w http.ResponseWriter, r *http.Request) {
	railName := domain.Rail(chi.URLParam(r, "rail"))
	if !railName.IsValid() {
		writeDomainError(w, r, domain.ErrUnsupportedRail)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large", "")
		return
	}

	if err := h.verifier.Verify(railName, body, r.Header.Get(rail.SignatureHeader)); err != nil {
		logger.FromContext(r.Context()).Warn().Str("rail", string(railName)).Msg("callback signature rejected")
		writeDomainError(w, r, err)
		return
	}

	result, err := h.callbacks.Handle(r.Context(), railName, body)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reference":         result.Movement.MerchantTransactionID,
		"status":            result.Movement.Status,
		"already_processed": result.AlreadyProcessed,
	})
}
