package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the wallet settles in.
const Currency = "ZAR"

const minorUnitExp = -2

// MinorToDecimal converts cents into a rand amount.
func MinorToDecimal(minor int64) decimal.Decimal {
	return decimal.New(minor, minorUnitExp)
}

// DecimalToMinor converts a rand amount into cents. Amounts with more than
// two decimal places are rejected rather than rounded.
func DecimalToMinor(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(-minorUnitExp)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has sub-cent precision", ErrInvalidAmount, amount.String())
	}
	return shifted.IntPart(), nil
}

// FormatRand renders cents for receipts, e.g. 30800 -> "R308.00".
func FormatRand(minor int64) string {
	d := MinorToDecimal(minor)
	if d.IsNegative() {
		return "-R" + d.Neg().StringFixed(2)
	}
	return "R" + d.StringFixed(2)
}

// RoundDiv divides n by d rounding half away from zero.
func RoundDiv(n, d int64) int64 {
	if d == 0 {
		panic("domain: division by zero")
	}
	q := n / d
	r := n % d
	if r == 0 {
		return q
	}
	if r < 0 {
		r = -r
	}
	ad := d
	if ad < 0 {
		ad = -ad
	}
	if 2*r >= ad {
		if (n < 0) != (d < 0) {
			q--
		} else {
			q++
		}
	}
	return q
}

// ApplyBasisPoints returns round(amount * bp / 10000).
func ApplyBasisPoints(amountMinor, basisPoints int64) int64 {
	return RoundDiv(amountMinor*basisPoints, 10000)
}
