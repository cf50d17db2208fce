package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tleroux/chiffrage-api/internal/domain/enum"
)

// Two lines with sale totals 3600 and 2400, a 6.00 EUR discount, 20%
// tax and nearest-1000 rounding: the candidate 6000 stays above the HT
// total 5400, so it wins and the tax figure absorbs the delta.
func TestComputeEstimateTotalsScenario(t *testing.T) {
	totals := ComputeEstimateTotals(EstimateTotalsInput{
		Lines: []EstimateLineInput{
			{Quantity: 3, UnitPriceHTCents: 1000, KFo: 1, KMo: 1},
			{Quantity: 2, UnitPriceHTCents: 1000, KFo: 1, KMo: 1},
		},
		MarginMultiplier:  1.2,
		DiscountCents:     600,
		TaxRateBp:         2000,
		RoundingMode:      enum.RoundingModeNearest,
		RoundingStepCents: 1000,
	})

	assert.Equal(t, int64(6000), totals.SaleSubtotalCents)
	assert.Equal(t, int64(5400), totals.SaleTotalCents)
	assert.Equal(t, int64(1080), totals.TaxCents)
	assert.Equal(t, int64(6480), totals.TtcCents)
	assert.Equal(t, int64(6000), totals.RoundedTtcCents)
	assert.Equal(t, int64(-480), totals.RoundingAdjustmentCents)
	assert.Equal(t, int64(600), totals.AdjustedTaxCents)
}

func TestComputeEstimateTotalsEmpty(t *testing.T) {
	totals := ComputeEstimateTotals(EstimateTotalsInput{
		MarginMultiplier:  1.2,
		TaxRateBp:         2000,
		RoundingMode:      enum.RoundingModeUp,
		RoundingStepCents: 500,
	})
	assert.Equal(t, EstimateTotals{}, totals)
}

func TestComputeEstimateTotalsDiscountClamp(t *testing.T) {
	totals := ComputeEstimateTotals(EstimateTotalsInput{
		Lines: []EstimateLineInput{
			{Quantity: 1, UnitPriceHTCents: 1000, KFo: 1, KMo: 1},
		},
		MarginMultiplier: 1,
		DiscountCents:    99999,
		TaxRateBp:        2000,
		RoundingMode:     enum.RoundingModeNone,
	})

	assert.Equal(t, int64(0), totals.SaleTotalCents)
	assert.Equal(t, int64(0), totals.TaxCents)
	assert.Equal(t, int64(0), totals.RoundedTtcCents)
}

func TestRoundingModes(t *testing.T) {
	base := EstimateTotalsInput{
		Lines: []EstimateLineInput{
			// sale = 1234
			{Quantity: 1, UnitPriceHTCents: 1234, KFo: 1, KMo: 1},
		},
		MarginMultiplier:  1,
		TaxRateBp:         0,
		RoundingStepCents: 100,
	}

	cases := []struct {
		mode    enum.RoundingMode
		rounded int64
	}{
		{enum.RoundingModeNone, 1234},
		{enum.RoundingModeNearest, 1234}, // candidate 1200 < HT 1234, floor applies
		{enum.RoundingModeUp, 1300},
		{enum.RoundingModeDown, 1234}, // candidate 1200 < HT 1234, floor applies
	}
	for _, tc := range cases {
		in := base
		in.RoundingMode = tc.mode
		totals := ComputeEstimateTotals(in)
		assert.Equal(t, tc.rounded, totals.RoundedTtcCents, "mode %s", tc.mode)
	}
}

func TestRoundingStepDefaultsToOne(t *testing.T) {
	totals := ComputeEstimateTotals(EstimateTotalsInput{
		Lines:             []EstimateLineInput{{Quantity: 1, UnitPriceHTCents: 777, KFo: 1, KMo: 1}},
		MarginMultiplier:  1,
		TaxRateBp:         2000,
		RoundingMode:      enum.RoundingModeUp,
		RoundingStepCents: 0,
	})
	assert.Equal(t, totals.TtcCents, totals.RoundedTtcCents)
	assert.Equal(t, int64(0), totals.RoundingAdjustmentCents)
}

// For any mode and step, the rounded TTC never drops below the HT total
// and HT + adjusted tax reconciles exactly with the rounded TTC.
func TestRoundingInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	modes := []enum.RoundingMode{
		enum.RoundingModeNone, enum.RoundingModeNearest,
		enum.RoundingModeUp, enum.RoundingModeDown,
	}

	for i := 0; i < 200; i++ {
		in := EstimateTotalsInput{
			Lines: []EstimateLineInput{
				{Quantity: float64(rng.Intn(10)), UnitPriceHTCents: rng.Int63n(50000), KFo: 1, KMo: 1},
				{Quantity: float64(rng.Intn(10)), UnitPriceHTCents: rng.Int63n(50000), KFo: 1, HMo: float64(rng.Intn(8)), KMo: 1, HourlyRateCents: rng.Int63n(8000)},
			},
			MarginMultiplier:  1 + rng.Float64(),
			DiscountCents:     rng.Int63n(20000),
			TaxRateBp:         rng.Int63n(10001),
			RoundingMode:      modes[rng.Intn(len(modes))],
			RoundingStepCents: rng.Int63n(2000) - 500, // occasionally non-positive
		}

		totals := ComputeEstimateTotals(in)
		assert.GreaterOrEqual(t, totals.RoundedTtcCents, totals.SaleTotalCents)
		assert.Equal(t, totals.RoundedTtcCents, totals.SaleTotalCents+totals.AdjustedTaxCents)
		assert.Equal(t, totals.RoundingAdjustmentCents, totals.RoundedTtcCents-totals.TtcCents)
	}
}

func TestDiscountBasisPointConversion(t *testing.T) {
	// 600 of 6000 is exactly 10%.
	assert.Equal(t, int64(1000), DiscountBpFromCents(600, 6000))
	assert.Equal(t, int64(600), DiscountCentsFromBp(6000, 1000))

	// Zero or negative subtotal maps to zero bp.
	assert.Equal(t, int64(0), DiscountBpFromCents(600, 0))
	assert.Equal(t, int64(0), DiscountBpFromCents(600, -5))

	// Conversion drifts when the subtotal changes between save and load:
	// accepted, documented behavior.
	bp := DiscountBpFromCents(500, 7777) // round(643.05...) = 643 bp
	assert.Equal(t, int64(643), bp)
	assert.Equal(t, int64(500), DiscountCentsFromBp(7777, bp))
	assert.Equal(t, int64(514), DiscountCentsFromBp(8000, bp))
}
