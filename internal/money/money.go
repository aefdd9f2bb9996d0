// Package money holds the rounding primitive every share and balance
// computation goes through. All amounts in the ledger are 2-decimal
// currency values; the currency code itself is a passthrough label.
package money

import "github.com/shopspring/decimal"

// Tolerance is the maximum absolute difference under which two monetary
// sums are considered equal (percentage sums against 100, custom amount
// sums against the expense total, settlement balance checks).
const Tolerance = 0.01

// RoundToCents rounds to exactly 2 decimal places using
// round-half-away-from-zero: 0.125 -> 0.13, -0.125 -> -0.13.
// Implemented on decimal arithmetic so the tie rule is not subject to
// binary floating-point representation of the input.
func RoundToCents(amount float64) float64 {
	v, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return v
}

// WithinTolerance reports whether a and b differ by no more than Tolerance.
func WithinTolerance(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= Tolerance
}

// SharePercent derives the informational percentage a share represents of
// a total, rounded to 2 decimal places. Percentages are not constrained
// to sum to exactly 100 after rounding. Returns 0 for a zero total.
func SharePercent(share, total float64) float64 {
	if total == 0 {
		return 0
	}
	v, _ := decimal.NewFromFloat(share / total * 100).Round(2).Float64()
	return v
}
