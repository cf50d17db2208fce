// Package pricing contains the pure calculators behind order and
// estimate totals. Every function is total and synchronous: invalid
// numeric inputs are clamped or defaulted, never reported as errors,
// because these run on the hot path of every edit. Validation belongs
// to the API boundary.
package pricing

import (
	"math"

	"github.com/tleroux/chiffrage-api/pkg/money"
)

// LineInput is one purchase-order line as entered by the user.
// Callers must pre-validate quantity > 0, price >= 0 and
// 0 <= taxRateBp <= 10000 before persisting; the calculator itself does
// not validate.
type LineInput struct {
	Quantity         float64
	UnitPriceHTCents int64
	TaxRateBp        int64
}

// LineTotals holds the derived fields of one order line. They are always
// recomputed from the inputs, never edited directly.
type LineTotals struct {
	LineTotalHTCents  int64
	LineTaxCents      int64
	LineTotalTTCCents int64
}

// OrderTotals is the element-wise sum of the line totals.
type OrderTotals struct {
	TotalHTCents  int64
	TotalTaxCents int64
	TotalTTCCents int64
}

// ComputeLineTotals derives HT, tax and TTC for a single order line.
func ComputeLineTotals(in LineInput) LineTotals {
	ht := int64(math.Round(in.Quantity * float64(in.UnitPriceHTCents)))
	tax := money.ComputeTaxCents(ht, in.TaxRateBp)
	return LineTotals{
		LineTotalHTCents:  ht,
		LineTaxCents:      tax,
		LineTotalTTCCents: ht + tax,
	}
}

// ComputeOrderTotals sums line totals into order-level totals. An empty
// input yields all-zero totals.
func ComputeOrderTotals(lines []LineTotals) OrderTotals {
	var totals OrderTotals
	for _, l := range lines {
		totals.TotalHTCents += l.LineTotalHTCents
		totals.TotalTaxCents += l.LineTaxCents
		totals.TotalTTCCents += l.LineTotalTTCCents
	}
	return totals
}

// ComputeTotalsFromInputs computes the per-line breakdown (needed to
// persist each line's derived fields) together with the order aggregate.
func ComputeTotalsFromInputs(inputs []LineInput) ([]LineTotals, OrderTotals) {
	lines := make([]LineTotals, len(inputs))
	for i, in := range inputs {
		lines[i] = ComputeLineTotals(in)
	}
	return lines, ComputeOrderTotals(lines)
}
