package pricing

import (
	"math"

	"github.com/tleroux/chiffrage-api/pkg/money"
)

// EstimateLineInput carries the priced fields of one estimate line.
// FO (fourniture) is the materials component: quantity x unit price x
// kFo. MO (main d'oeuvre) is the labor component: hours x hourly rate x
// kMo. The hourly rate comes from the line's resolved labor role, zero
// when none is assigned.
type EstimateLineInput struct {
	Quantity         float64
	UnitPriceHTCents int64
	KFo              float64
	HMo              float64
	KMo              float64
	HourlyRateCents  int64
}

// LineContext is the version-level pricing context shared by all lines:
// a single margin multiplier and tax rate.
type LineContext struct {
	MarginMultiplier float64
	TaxRateBp        int64
}

// EstimateLineValues holds every derived monetary field of one line.
type EstimateLineValues struct {
	FoCostCents   int64
	MoCostCents   int64
	CostLineCents int64
	SaleLineCents int64
	PuHTCents     int64
	TaxLineCents  int64
	TtcLineCents  int64
}

// ComputeEstimateLineValues derives cost, sale price, unit price, tax
// and TTC for a single line. Cost (FO+MO) is kept separate from sale
// (cost x margin) so one margin multiplier applies uniformly to
// materials and labor while raw cost stays available for reporting.
//
// PuHTCents is a back-derived display value, not a multiplicand:
// quantity x PuHTCents may differ from SaleLineCents by a cent or two
// and that is accepted. Rounding happens at each integer-cents step so
// error never compounds.
func ComputeEstimateLineValues(in EstimateLineInput, ctx LineContext) EstimateLineValues {
	quantity := clampNonNegative(in.Quantity, 0)
	unitPrice := clampNonNegativeCents(in.UnitPriceHTCents)
	kFo := clampNonNegative(in.KFo, 1)
	hMo := clampNonNegative(in.HMo, 0)
	kMo := clampNonNegative(in.KMo, 1)
	hourlyRate := clampNonNegativeCents(in.HourlyRateCents)
	margin := clampNonNegative(ctx.MarginMultiplier, 1)
	taxRateBp := clampNonNegativeCents(ctx.TaxRateBp)

	foCost := int64(math.Round(quantity * float64(unitPrice) * kFo))
	moCost := int64(math.Round(hMo * float64(hourlyRate) * kMo))

	cost := foCost + moCost
	if cost < 0 {
		cost = 0
	}

	sale := int64(math.Round(float64(cost) * margin))
	if sale < 0 {
		sale = 0
	}

	var puHT int64
	if quantity > 0 {
		puHT = int64(math.Round(float64(sale) / quantity))
	}

	tax := money.ComputeTaxCents(sale, taxRateBp)

	return EstimateLineValues{
		FoCostCents:   foCost,
		MoCostCents:   moCost,
		CostLineCents: cost,
		SaleLineCents: sale,
		PuHTCents:     puHT,
		TaxLineCents:  tax,
		TtcLineCents:  sale + tax,
	}
}

// clampNonNegative substitutes def for non-finite values and floors the
// result at zero.
func clampNonNegative(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def
	}
	if v < 0 {
		return 0
	}
	return v
}

func clampNonNegativeCents(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
