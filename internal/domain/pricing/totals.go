package pricing

import (
	"math"

	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/money"
)

// EstimateTotalsInput bundles the leaf line items of one estimate
// version with its pricing context. Sections contribute nothing and must
// not appear here. The version-level margin and tax rate apply uniformly
// to every line; per-line multipliers (kFo, kMo) travel with each line.
type EstimateTotalsInput struct {
	Lines             []EstimateLineInput
	MarginMultiplier  float64
	DiscountCents     int64
	TaxRateBp         int64
	RoundingMode      enum.RoundingMode
	RoundingStepCents int64
}

// EstimateTotals is the fully derived totals block of a version.
// SaleTotalCents + AdjustedTaxCents always equals RoundedTtcCents, so
// the displayed HT/tax/TTC triple never disagrees with itself.
type EstimateTotals struct {
	CostSubtotalCents       int64
	SaleSubtotalCents       int64
	SaleTotalCents          int64
	TaxCents                int64
	TtcCents                int64
	RoundedTtcCents         int64
	RoundingAdjustmentCents int64
	AdjustedTaxCents        int64
}

// ComputeEstimateTotals folds all leaf lines into subtotals, applies the
// flat discount, tax and the rounding policy. The rounded TTC is never
// allowed below the HT total, so rounding down cannot push the payable
// amount under cost.
func ComputeEstimateTotals(in EstimateTotalsInput) EstimateTotals {
	ctx := LineContext{MarginMultiplier: in.MarginMultiplier, TaxRateBp: in.TaxRateBp}

	var costSubtotal, saleSubtotal int64
	for _, line := range in.Lines {
		values := ComputeEstimateLineValues(line, ctx)
		costSubtotal += values.CostLineCents
		saleSubtotal += values.SaleLineCents
	}

	discount := clampNonNegativeCents(in.DiscountCents)
	saleTotal := saleSubtotal - discount
	if saleTotal < 0 {
		saleTotal = 0
	}

	tax := money.ComputeTaxCents(saleTotal, clampNonNegativeCents(in.TaxRateBp))
	ttc := saleTotal + tax

	rounded := roundToStep(ttc, in.RoundingStepCents, in.RoundingMode)
	if rounded < saleTotal {
		rounded = saleTotal
	}

	return EstimateTotals{
		CostSubtotalCents:       costSubtotal,
		SaleSubtotalCents:       saleSubtotal,
		SaleTotalCents:          saleTotal,
		TaxCents:                tax,
		TtcCents:                ttc,
		RoundedTtcCents:         rounded,
		RoundingAdjustmentCents: rounded - ttc,
		AdjustedTaxCents:        rounded - saleTotal,
	}
}

// roundToStep rounds amount to a multiple of step according to mode.
// A non-positive step falls back to 1, which makes every mode a no-op.
func roundToStep(amount, step int64, mode enum.RoundingMode) int64 {
	if mode == enum.RoundingModeNone {
		return amount
	}
	if step <= 0 {
		step = 1
	}

	q := amount / step
	r := amount % step
	switch mode {
	case enum.RoundingModeNearest:
		if r*2 >= step {
			q++
		}
	case enum.RoundingModeUp:
		if r > 0 {
			q++
		}
	case enum.RoundingModeDown:
		// floor, q already truncated for non-negative amounts
	default:
		return amount
	}
	return q * step
}

// DiscountBpFromCents converts the user-entered flat discount into basis
// points of the sale subtotal, the form the version persists so the
// discount stays stable across later catalog or price changes.
func DiscountBpFromCents(discountCents, saleSubtotalCents int64) int64 {
	if saleSubtotalCents <= 0 {
		return 0
	}
	return int64(math.Round(float64(discountCents) / float64(saleSubtotalCents) * money.BasisPointDenominator))
}

// DiscountCentsFromBp recomputes the flat discount from the persisted
// basis points. The cents value can drift slightly from what the user
// originally typed if the subtotal changed in between; that is
// documented behavior, not a defect.
func DiscountCentsFromBp(saleSubtotalCents, discountBp int64) int64 {
	return int64(math.Round(float64(saleSubtotalCents) * float64(discountBp) / money.BasisPointDenominator))
}
