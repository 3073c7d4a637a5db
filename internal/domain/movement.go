package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementStatus is the lifecycle state of a money movement.
type MovementStatus string

const (
	MovementStatusInitiated  MovementStatus = "initiated"
	MovementStatusProcessing MovementStatus = "processing"
	MovementStatusCompleted  MovementStatus = "completed"
	MovementStatusRejected   MovementStatus = "rejected"
	MovementStatusExpired    MovementStatus = "expired"
	MovementStatusCancelled  MovementStatus = "cancelled"
)

// IsTerminal reports whether no further transition is permitted.
func (s MovementStatus) IsTerminal() bool {
	switch s {
	case MovementStatusCompleted, MovementStatusRejected, MovementStatusExpired, MovementStatusCancelled:
		return true
	}
	return false
}

// IsFailure reports whether s is a terminal state that unwinds money.
func (s MovementStatus) IsFailure() bool {
	return s == MovementStatusRejected || s == MovementStatusExpired || s == MovementStatusCancelled
}

// IsValid reports whether s is a known status.
func (s MovementStatus) IsValid() bool {
	return s == MovementStatusInitiated || s == MovementStatusProcessing || s.IsTerminal()
}

var transitions = map[MovementStatus][]MovementStatus{
	MovementStatusInitiated: {
		MovementStatusProcessing,
		MovementStatusCompleted,
		MovementStatusRejected,
		MovementStatusExpired,
		MovementStatusCancelled,
	},
	MovementStatusProcessing: {
		MovementStatusCompleted,
		MovementStatusRejected,
		MovementStatusExpired,
		MovementStatusCancelled,
	},
}

// CanTransition reports whether from -> to is allowed by the movement state machine.
func CanTransition(from, to MovementStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Direction tells whether money leaves or enters the wallet.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MovementKind selects the compensation variant of a movement.
type MovementKind string

const (
	MovementKindTopUp      MovementKind = "topup"
	MovementKindCashOut    MovementKind = "cashout"
	MovementKindStandalone MovementKind = "standalone"
	MovementKindGeneric    MovementKind = "generic"
)

// MoneyMovement is one attempted transfer over a payment rail.
type MoneyMovement struct {
	ID                    string
	MerchantTransactionID string
	Rail                  Rail
	Kind                  MovementKind
	Direction             Direction
	Status                MovementStatus
	StatusReason          string
	Amount                decimal.Decimal
	Fee                   decimal.Decimal
	FeeBreakdown          *FeeBreakdown
	Currency              string
	UserID                string
	WalletID              string
	BeneficiaryWalletID   string
	ClearingAccountCode   string
	SettlementAccountCode string
	ExternalReference     string
	VoucherCode           string
	ExpiresAt             *time.Time
	Debited               bool
	BeneficiaryCredited   bool
	RawRequest            JSON
	RawResponse           JSON
	Metadata              JSON
	Version               int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
	CompletedAt           *time.Time
}

// TotalDebit is what the payer was charged: principal plus fee.
func (m *MoneyMovement) TotalDebit() decimal.Decimal {
	return m.Amount.Add(m.Fee)
}

// IsExpired reports whether the movement is past its expiry at now.
func (m *MoneyMovement) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

// AppendMetadata merges values into the metadata attachment without
// dropping existing keys.
func (m *MoneyMovement) AppendMetadata(values JSON) {
	if len(values) == 0 {
		return
	}
	if m.Metadata == nil {
		m.Metadata = JSON{}
	}
	for k, v := range values {
		m.Metadata[k] = v
	}
}

// MovementStatusView is the settlement state exposed to downstream display.
type MovementStatusView struct {
	Reference   string
	Rail        Rail
	Status      MovementStatus
	Reason      string
	Amount      decimal.Decimal
	Fee         decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	ExpiresAt   *time.Time
}

// View projects the movement onto its status view.
func (m *MoneyMovement) View() MovementStatusView {
	return MovementStatusView{
		Reference:   m.MerchantTransactionID,
		Rail:        m.Rail,
		Status:      m.Status,
		Reason:      m.StatusReason,
		Amount:      m.Amount,
		Fee:         m.Fee,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CompletedAt: m.CompletedAt,
		ExpiresAt:   m.ExpiresAt,
	}
}
