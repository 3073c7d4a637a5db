package domain

import "errors"

var (
	// Ledger errors
	ErrDuplicateAccountCode = errors.New("account code already exists")
	ErrInvalidNormalSide    = errors.New("normal side must be debit or credit")
	ErrInvalidAccountType   = errors.New("invalid account type")
	ErrInvalidAccountCode   = errors.New("invalid account code")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientLines    = errors.New("journal entry requires at least two lines")
	ErrUnbalancedEntry      = errors.New("journal entry debits do not equal credits")
	ErrInvalidLineAmount    = errors.New("journal line amount must be positive")
	ErrInvalidLineSide      = errors.New("journal line side must be debit or credit")
	ErrDuplicateReference   = errors.New("journal reference already posted")
	ErrEntryNotFound        = errors.New("journal entry not found")
	ErrInconsistentLedger   = errors.New("ledger is inconsistent: debits do not equal credits")

	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountInactive     = errors.New("account is not active")
	ErrNegativeBalance     = errors.New("negative balance detected on non-overdraft wallet")
	ErrInvalidWalletKind   = errors.New("invalid wallet kind")
	ErrInvalidWalletStatus = errors.New("invalid wallet status")

	// Fee errors
	ErrFeeConfigurationNotFound = errors.New("no active fee configuration")
	ErrInvalidFeeConfiguration  = errors.New("invalid fee configuration")
	ErrFeeExceedsAmount         = errors.New("fee exceeds transaction amount")

	// Movement errors
	ErrMovementNotFound      = errors.New("money movement not found")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrCannotCancelCompleted = errors.New("completed movement cannot be cancelled")
	ErrAmountMismatch        = errors.New("settled amount does not match movement amount")
	ErrUnsupportedRail       = errors.New("unsupported payment rail")
	ErrVoucherNotRedeemable  = errors.New("voucher cannot be redeemed")
	ErrNotMovementOwner      = errors.New("movement belongs to another user")
	ErrPollingExhausted      = errors.New("rail polling exhausted without terminal status")

	// Rail and callback errors
	ErrRailUnavailable  = errors.New("payment rail request failed")
	ErrRailRejected     = errors.New("payment rail rejected the request")
	ErrInvalidSignature = errors.New("invalid callback signature")
	ErrInvalidCallback  = errors.New("invalid callback payload")

	// Configuration errors
	ErrLedgerAccountNotConfigured = errors.New("ledger account not configured")

	// Generic
	ErrInvalidAmount = errors.New("amount must be positive")
)

// ErrorKind classifies errors for propagation and presentation.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindInsufficient  ErrorKind = "insufficient"
	KindConfiguration ErrorKind = "configuration"
	KindExternal      ErrorKind = "external"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindInvariant     ErrorKind = "invariant"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindInternal      ErrorKind = "internal"
)

var errorKinds = []struct {
	kind ErrorKind
	errs []error
}{
	{KindInvariant, []error{ErrUnbalancedEntry, ErrNegativeBalance, ErrAmountMismatch, ErrInconsistentLedger}},
	{KindInsufficient, []error{ErrInsufficientFunds, ErrAccountInactive}},
	{KindConfiguration, []error{ErrFeeConfigurationNotFound, ErrInvalidFeeConfiguration, ErrLedgerAccountNotConfigured}},
	{KindExternal, []error{ErrRailUnavailable, ErrRailRejected, ErrPollingExhausted}},
	{KindNotFound, []error{ErrAccountNotFound, ErrWalletNotFound, ErrMovementNotFound, ErrEntryNotFound}},
	{KindConflict, []error{ErrDuplicateAccountCode, ErrDuplicateReference, ErrCannotCancelCompleted, ErrInvalidTransition, ErrVoucherNotRedeemable}},
	{KindUnauthorized, []error{ErrInvalidSignature, ErrUnauthorized, ErrInvalidToken, ErrExpiredToken, ErrNotMovementOwner}},
	{KindValidation, []error{
		ErrInvalidNormalSide, ErrInvalidAccountType, ErrInvalidAccountCode, ErrInsufficientLines,
		ErrInvalidLineAmount, ErrInvalidLineSide, ErrInvalidAmount, ErrAmountTooSmall, ErrAmountTooLarge,
		ErrInvalidAccountName, ErrInvalidCurrency, ErrMetadataTooLarge, ErrInvalidReference,
		ErrInvalidWalletKind, ErrInvalidWalletStatus, ErrFeeExceedsAmount, ErrUnsupportedRail,
		ErrInvalidCallback, ErrMissingIdentifier, ErrInvalidTierLevel,
	}},
}

// KindOf returns the kind of a (possibly wrapped) domain error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, group := range errorKinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindInternal
}

// IsInvariantViolation reports whether err signals a programming defect
// that must abort the unit of work and page someone.
func IsInvariantViolation(err error) bool {
	return KindOf(err) == KindInvariant
}
