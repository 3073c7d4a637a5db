package domain

import "time"

// TaxDirection distinguishes a charge from its reversal.
type TaxDirection string

const (
	TaxDirectionCharge   TaxDirection = "charge"
	TaxDirectionReversal TaxDirection = "reversal"
)

// TaxTransaction captures the VAT component of a fee for statutory reporting.
// Rows are append-only; a refund appends a reversal.
type TaxTransaction struct {
	ID              string
	MovementID      string
	Reference       string
	TaxType         string
	BaseMinor       int64
	TaxMinor        int64
	RateBasisPoints int64
	Direction       TaxDirection
	CreatedAt       time.Time
}

// TaxTypeVAT is the only tax the platform collects.
const TaxTypeVAT = "vat"
