package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mymoolah/walletcore/internal/adapter/http/dto"
	"github.com/mymoolah/walletcore/internal/usecase"
)

type voucherService interface {
	IssueVoucher(ctx context.Context, input usecase.IssueVoucherInput) (*usecase.MovementResult, error)
	IssueCashOutVoucher(ctx context.Context, input usecase.IssueVoucherInput) (*usecase.MovementResult, error)
	IssueTopUpVoucher(ctx context.Context, input usecase.IssueVoucherInput) (*usecase.MovementResult, error)
	RedeemVoucher(ctx context.Context, input usecase.RedeemVoucherInput) (*usecase.MovementResult, error)
	CancelVoucher(ctx context.Context, reference, userID string) (*usecase.SettlementResult, error)
}

type payShapService interface {
	InitiateRPP(ctx context.Context, input usecase.InitiateRPPInput) (*usecase.MovementResult, error)
	InitiateRTP(ctx context.Context, input usecase.InitiateRTPInput) (*usecase.MovementResult, error)
}

type qrService interface {
	Pay(ctx context.Context, input usecase.QRPayInput) (*usecase.MovementResult, error)
}

type depositService interface {
	InitiateDeposit(ctx context.Context, input usecase.InitiateDepositInput) (*usecase.MovementResult, error)
}

// PaymentHandler starts money movements on behalf of the caller.
type PaymentHandler struct {
	vouchers voucherService
	payshap  payShapService
	qr       qrService
	deposits depositService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(vouchers voucherService, payshap payShapService, qr qrService, deposits depositService) *PaymentHandler {
	return &PaymentHandler{vouchers: vouchers, payshap: payshap, qr: qr, deposits: deposits}
}

// IssueVoucher handles POST /vouchers.
func (h *PaymentHandler) IssueVoucher(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, h.vouchers.IssueVoucher)
}

// IssueCashOutVoucher handles POST /vouchers/cash-out.
func (h *PaymentHandler) IssueCashOutVoucher(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, h.vouchers.IssueCashOutVoucher)
}

// IssueTopUpVoucher handles POST /vouchers/top-up.
func (h *PaymentHandler) IssueTopUpVoucher(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, h.vouchers.IssueTopUpVoucher)
}

func (h *PaymentHandler) issue(w http.ResponseWriter, r *http.Request, fn func(context.Context, usecase.IssueVoucherInput) (*usecase.MovementResult, error)) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.IssueVoucherRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := fn(r.Context(), req.ToUseCaseInput(userID))
	writeMovement(w, r, result, err)
}

// RedeemVoucher handles POST /vouchers/redeem.
func (h *PaymentHandler) RedeemVoucher(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.RedeemVoucherRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.vouchers.RedeemVoucher(r.Context(), usecase.RedeemVoucherInput{
		Code:     req.Code,
		UserID:   userID,
		WalletID: req.WalletID,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MovementFromResult(result))
}

// CancelVoucher handles POST /vouchers/{reference}/cancel.
func (h *PaymentHandler) CancelVoucher(w http.ResponseWriter, r *http.Request) {
	result, err := h.vouchers.CancelVoucher(r.Context(), chi.URLParam(r, "reference"), ownerScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettlementFromResult(result))
}

// PayShapRPP handles POST /payshap/rpp.
func (h *PaymentHandler) PayShapRPP(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.PayShapRPPRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if req.BeneficiaryProxy == "" && req.BeneficiaryAcctNo == "" {
		writeError(w, http.StatusBadRequest, "validation failed", "beneficiary_proxy or beneficiary_account_number is required")
		return
	}

	result, err := h.payshap.InitiateRPP(r.Context(), req.ToUseCaseInput(userID))
	writeMovement(w, r, result, err)
}

// PayShapRTP handles POST /payshap/rtp.
func (h *PaymentHandler) PayShapRTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.PayShapRTPRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.payshap.InitiateRTP(r.Context(), req.ToUseCaseInput(userID))
	writeMovement(w, r, result, err)
}

// PayQR handles POST /qr/payments.
func (h *PaymentHandler) PayQR(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.QRPayRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.qr.Pay(r.Context(), req.ToUseCaseInput(userID))
	writeMovement(w, r, result, err)
}

// Deposit handles POST /deposits.
func (h *PaymentHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.DepositRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.deposits.InitiateDeposit(r.Context(), req.ToUseCaseInput(userID))
	writeMovement(w, r, result, err)
}

// writeMovement answers 201 for a new movement and 200 for a replay.
func writeMovement(w http.ResponseWriter, r *http.Request, result *usecase.MovementResult, err error) {
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.AlreadyProcessed {
		status = http.StatusOK
	}
	writeJSON(w, status, dto.MovementFromResult(result))
}
