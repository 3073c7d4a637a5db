package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// VoucherCodeGenerator produces voucher codes.
type VoucherCodeGenerator interface {
	NewCode() (string, error)
}

// NumericCodes generates uniformly random numeric codes.
type NumericCodes struct {
	Digits int
}

// NewCode returns a random code of Digits digits.
func (g NumericCodes) NewCode() (string, error) {
	digits := g.Digits
	if digits <= 0 {
		digits = 16
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	code := n.Text(10)
	return strings.Repeat("0", digits-len(code)) + code, nil
}

// VoucherUseCase issues, redeems and cancels vouchers.
type VoucherUseCase struct {
	deps   *MovementDeps
	engine *SettlementEngine
	codes  VoucherCodeGenerator
	expiry time.Duration
}

// NewVoucherUseCase creates a new VoucherUseCase.
func NewVoucherUseCase(deps *MovementDeps, engine *SettlementEngine, codes VoucherCodeGenerator, expiry time.Duration) *VoucherUseCase {
	if codes == nil {
		codes = NumericCodes{Digits: 16}
	}
	if expiry <= 0 {
		expiry = DefaultVoucherExpiry
	}
	return &VoucherUseCase{deps: deps, engine: engine, codes: codes, expiry: expiry}
}

// IssueVoucherInput represents input for issuing a voucher.
type IssueVoucherInput struct {
	Reference string
	UserID    string
	WalletID  string
	Amount    decimal.Decimal
	// FloatWalletID is the supplier float credited for cash-out vouchers.
	FloatWalletID string
}

// IssueVoucher issues a standalone wallet voucher: the payer is debited the
// value plus fee and the value is held as voucher liability until redeemed.
func (uc *VoucherUseCase) IssueVoucher(ctx context.Context, input IssueVoucherInput) (*MovementResult, error) {
	fee, err := uc.deps.feeFor(ctx, input.UserID, SupplierMyMoolah, ServiceVoucherIssue, input.Amount)
	if err != nil {
		return nil, err
	}
	code, err := uc.codes.NewCode()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(uc.expiry)

	return uc.deps.initiateOutbound(ctx, outboundPlan{
		rail:        domain.RailMoolahVoucher,
		kind:        domain.MovementKindStandalone,
		prefix:      prefixVoucher,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      input.Amount,
		fee:         fee,
		clearing:    uc.deps.Chart.VoucherLiability,
		voucherCode: code,
		expiresAt:   &expiresAt,
		description: "voucher issue",
	})
}

// IssueCashOutVoucher issues an EasyPay cash-out voucher. The payer is
// debited value plus fee and the EasyPay float is credited the value.
func (uc *VoucherUseCase) IssueCashOutVoucher(ctx context.Context, input IssueVoucherInput) (*MovementResult, error) {
	if err := domain.RequireIdentifier("float wallet id", input.FloatWalletID); err != nil {
		return nil, err
	}
	fee, err := uc.deps.feeFor(ctx, input.UserID, SupplierEasyPay, ServiceCashOut, input.Amount)
	if err != nil {
		return nil, err
	}
	code, err := uc.codes.NewCode()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(uc.expiry)

	return uc.deps.initiateOutbound(ctx, outboundPlan{
		rail:        domain.RailEasyPay,
		kind:        domain.MovementKindCashOut,
		prefix:      prefixCashOut,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      input.Amount,
		fee:         fee,
		beneficiary: input.FloatWalletID,
		preCredit:   true,
		voucherCode: code,
		externalRef: code,
		expiresAt:   &expiresAt,
		description: "easypay cash-out",
	})
}

// IssueTopUpVoucher issues an EasyPay top-up number. Nothing moves until
// EasyPay reports the cash paid.
func (uc *VoucherUseCase) IssueTopUpVoucher(ctx context.Context, input IssueVoucherInput) (*MovementResult, error) {
	code, err := uc.codes.NewCode()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(uc.expiry)

	return uc.deps.initiateInbound(ctx, inboundPlan{
		rail:        domain.RailEasyPay,
		prefix:      prefixTopUp,
		reference:   input.Reference,
		userID:      input.UserID,
		walletID:    input.WalletID,
		amount:      input.Amount,
		voucherCode: code,
		externalRef: code,
		expiresAt:   &expiresAt,
	})
}

// RedeemVoucherInput represents input for redeeming a voucher.
type RedeemVoucherInput struct {
	Code     string
	UserID   string
	WalletID string
}

// RedeemVoucher credits the redeemer with the voucher value.
func (uc *VoucherUseCase) RedeemVoucher(ctx context.Context, input RedeemVoucherInput) (*MovementResult, error) {
	if err := domain.RequireIdentifier("voucher code", input.Code); err != nil {
		return nil, err
	}
	if err := domain.RequireIdentifier("wallet id", input.WalletID); err != nil {
		return nil, err
	}

	redeemer, err := uc.deps.Wallets.GetByID(ctx, input.WalletID)
	if err != nil {
		return nil, err
	}
	if input.UserID != "" && redeemer.OwnerID != input.UserID {
		return nil, fmt.Errorf("%w: wallet %s", domain.ErrUnauthorized, input.WalletID)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.deps.TxManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	m, err := uc.deps.Movements.GetByVoucherCodeForUpdate(txCtx, tx, input.Code)
	if err != nil {
		return nil, err
	}
	if m.Rail != domain.RailMoolahVoucher {
		return nil, fmt.Errorf("%w: not a wallet voucher", domain.ErrVoucherNotRedeemable)
	}
	if m.Status == domain.MovementStatusCompleted && m.BeneficiaryWalletID == input.WalletID {
		return &MovementResult{Movement: m, AlreadyProcessed: true}, nil
	}
	if m.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: voucher %s", domain.ErrVoucherNotRedeemable, m.Status)
	}
	if m.IsExpired(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: voucher expired", domain.ErrVoucherNotRedeemable)
	}

	res, err := uc.engine.applyLocked(txCtx, tx, m, Outcome{
		Status:              domain.MovementStatusCompleted,
		Reason:              "redeemed",
		BeneficiaryWalletID: input.WalletID,
		Source:              SourceSync,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	uc.engine.observe(res, time.Now())
	return &MovementResult{Movement: res.Movement}, nil
}

// CancelVoucher cancels an unredeemed voucher and refunds the issuer.
func (uc *VoucherUseCase) CancelVoucher(ctx context.Context, reference, userID string) (*SettlementResult, error) {
	return uc.engine.Cancel(ctx, reference, userID)
}
