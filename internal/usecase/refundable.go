package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
)

// BalanceAdjustment is one wallet change that unwinds a movement.
type BalanceAdjustment struct {
	WalletID string
	Side     domain.Side
	Amount   decimal.Decimal
	Memo     string
}

// RefundableMovement describes how a failed movement is compensated. Each
// movement kind has its own variant; one routine applies all of them.
type RefundableMovement interface {
	Movement() *domain.MoneyMovement
	// Adjustments lists the compensating wallet changes.
	Adjustments() []BalanceAdjustment
	// ReversesJournal reports whether the initiation entry must be mirrored.
	ReversesJournal() bool
	// Annotations are appended to the movement metadata after compensation.
	Annotations() domain.JSON
}

// AsRefundable selects the compensation variant for m.
func AsRefundable(m *domain.MoneyMovement) RefundableMovement {
	switch m.Kind {
	case domain.MovementKindTopUp:
		return topUpRefund{m: m}
	case domain.MovementKindCashOut:
		return cashOutRefund{m: m}
	case domain.MovementKindStandalone:
		return standaloneRefund{m: m}
	default:
		return genericRefund{m: m}
	}
}

// payerRefund returns principal plus fee to the payer.
func payerRefund(m *domain.MoneyMovement) BalanceAdjustment {
	return BalanceAdjustment{
		WalletID: m.WalletID,
		Side:     domain.SideCredit,
		Amount:   m.TotalDebit(),
		Memo:     "refund " + m.MerchantTransactionID,
	}
}

// beneficiaryClawback takes back a pre-credited beneficiary float.
func beneficiaryClawback(m *domain.MoneyMovement) BalanceAdjustment {
	return BalanceAdjustment{
		WalletID: m.BeneficiaryWalletID,
		Side:     domain.SideDebit,
		Amount:   m.Amount,
		Memo:     "clawback " + m.MerchantTransactionID,
	}
}

// topUpRefund: money arrives from outside, so nothing left the wallet.
type topUpRefund struct{ m *domain.MoneyMovement }

func (r topUpRefund) Movement() *domain.MoneyMovement  { return r.m }
func (r topUpRefund) Adjustments() []BalanceAdjustment { return nil }
func (r topUpRefund) ReversesJournal() bool            { return false }
func (r topUpRefund) Annotations() domain.JSON         { return nil }

// cashOutRefund returns the payer's debit and claws back the supplier float
// credited at issue.
type cashOutRefund struct{ m *domain.MoneyMovement }

func (r cashOutRefund) Movement() *domain.MoneyMovement { return r.m }

func (r cashOutRefund) Adjustments() []BalanceAdjustment {
	adj := []BalanceAdjustment{payerRefund(r.m)}
	if r.m.BeneficiaryCredited && r.m.BeneficiaryWalletID != "" {
		adj = append(adj, beneficiaryClawback(r.m))
	}
	return adj
}

func (r cashOutRefund) ReversesJournal() bool { return true }

func (r cashOutRefund) Annotations() domain.JSON {
	return domain.JSON{"float_clawed_back": r.m.BeneficiaryCredited}
}

// standaloneRefund returns an unredeemed voucher's value and voids its code.
type standaloneRefund struct{ m *domain.MoneyMovement }

func (r standaloneRefund) Movement() *domain.MoneyMovement { return r.m }

func (r standaloneRefund) Adjustments() []BalanceAdjustment {
	return []BalanceAdjustment{payerRefund(r.m)}
}

func (r standaloneRefund) ReversesJournal() bool { return true }

func (r standaloneRefund) Annotations() domain.JSON {
	return domain.JSON{"voucher_void": true}
}

// genericRefund covers outbound rail payments (PayShap RPP, QR).
type genericRefund struct{ m *domain.MoneyMovement }

func (r genericRefund) Movement() *domain.MoneyMovement { return r.m }

func (r genericRefund) Adjustments() []BalanceAdjustment {
	if r.m.Direction == domain.DirectionInbound {
		return nil
	}
	adj := []BalanceAdjustment{payerRefund(r.m)}
	if r.m.BeneficiaryCredited && r.m.BeneficiaryWalletID != "" {
		adj = append(adj, beneficiaryClawback(r.m))
	}
	return adj
}

func (r genericRefund) ReversesJournal() bool { return r.m.Direction == domain.DirectionOutbound }

func (r genericRefund) Annotations() domain.JSON { return nil }
