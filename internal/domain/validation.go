package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall     = errors.New("amount below minimum allowed")
	ErrMetadataTooLarge   = errors.New("metadata size exceeds limit")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrMissingIdentifier  = errors.New("missing required identifier")
	ErrInvalidTierLevel   = errors.New("invalid tier level")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxReferenceLength   = 128
	MaxMetadataSize      = 10240     // 10KB
	MaxTransactionAmount = "5000000" // R5m per movement
	MinTransactionAmount = "0.01"
)

var (
	referenceRegex   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-:.]*$`)
	accountCodeRegex = regexp.MustCompile(`^[0-9A-Z][0-9A-Z\-_.]{1,31}$`)
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateAccountCode validates a chart-of-accounts code such as "2100-01-01".
func ValidateAccountCode(code string) error {
	if !accountCodeRegex.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidAccountCode, code)
	}
	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if currency != Currency {
		return fmt.Errorf("%w: %s is not supported, only %s", ErrInvalidCurrency, currency, Currency)
	}

	return nil
}

// ValidateAmount validates a money movement amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount := decimal.RequireFromString(MinTransactionAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinTransactionAmount)
	}

	maxAmount := decimal.RequireFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxTransactionAmount)
	}

	if _, err := DecimalToMinor(amount); err != nil {
		return err
	}

	return nil
}

// ValidateReference validates an idempotent reference
func ValidateReference(ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: reference cannot be empty", ErrInvalidReference)
	}
	if len(ref) > MaxReferenceLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidReference, MaxReferenceLength)
	}
	if !referenceRegex.MatchString(ref) {
		return fmt.Errorf("%w: %q contains forbidden characters", ErrInvalidReference, ref)
	}
	return nil
}

// RequireIdentifier fails when a required identifier is blank.
func RequireIdentifier(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingIdentifier, name)
	}
	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
