package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEstimateLineValuesMaterialsOnly(t *testing.T) {
	values := ComputeEstimateLineValues(EstimateLineInput{
		Quantity:         3,
		UnitPriceHTCents: 1000,
		KFo:              1,
		HMo:              0,
		KMo:              1,
	}, LineContext{MarginMultiplier: 1.2, TaxRateBp: 2000})

	assert.Equal(t, int64(3000), values.FoCostCents)
	assert.Equal(t, int64(0), values.MoCostCents)
	assert.Equal(t, int64(3000), values.CostLineCents)
	assert.Equal(t, int64(3600), values.SaleLineCents)
	assert.Equal(t, int64(1200), values.PuHTCents)
	assert.Equal(t, int64(720), values.TaxLineCents)
	assert.Equal(t, int64(4320), values.TtcLineCents)
}

func TestComputeEstimateLineValuesWithLabor(t *testing.T) {
	values := ComputeEstimateLineValues(EstimateLineInput{
		Quantity:         2,
		UnitPriceHTCents: 1500,
		KFo:              1.1,
		HMo:              4,
		KMo:              1.05,
		HourlyRateCents:  4500,
	}, LineContext{MarginMultiplier: 1.3, TaxRateBp: 2000})

	// FO: round(2 * 1500 * 1.1) = 3300, MO: round(4 * 4500 * 1.05) = 18900
	assert.Equal(t, int64(3300), values.FoCostCents)
	assert.Equal(t, int64(18900), values.MoCostCents)
	assert.Equal(t, int64(22200), values.CostLineCents)
	assert.Equal(t, int64(28860), values.SaleLineCents)
	assert.Equal(t, int64(14430), values.PuHTCents)
	assert.Equal(t, int64(5772), values.TaxLineCents)
	assert.Equal(t, int64(34632), values.TtcLineCents)
}

func TestComputeEstimateLineValuesZeroQuantity(t *testing.T) {
	values := ComputeEstimateLineValues(EstimateLineInput{
		Quantity:         0,
		UnitPriceHTCents: 1000,
		KFo:              1,
		KMo:              1,
		HMo:              2,
		HourlyRateCents:  4000,
	}, LineContext{MarginMultiplier: 1.2, TaxRateBp: 2000})

	// No quantity means no back-derived unit price, but labor still costs.
	assert.Equal(t, int64(0), values.PuHTCents)
	assert.Equal(t, int64(8000), values.MoCostCents)
	assert.Equal(t, int64(9600), values.SaleLineCents)
}

// Cost and sale can never go negative, whatever garbage comes in.
func TestComputeEstimateLineValuesNonNegative(t *testing.T) {
	inputs := []EstimateLineInput{
		{Quantity: -5, UnitPriceHTCents: -1000, KFo: -2, HMo: -3, KMo: -1, HourlyRateCents: -500},
		{Quantity: math.NaN(), UnitPriceHTCents: 1000, KFo: math.Inf(1), HMo: math.NaN(), KMo: 1},
		{},
	}
	contexts := []LineContext{
		{MarginMultiplier: -4, TaxRateBp: -100},
		{MarginMultiplier: math.NaN(), TaxRateBp: 2000},
		{MarginMultiplier: math.Inf(-1), TaxRateBp: 20000},
	}

	for _, in := range inputs {
		for _, ctx := range contexts {
			values := ComputeEstimateLineValues(in, ctx)
			assert.GreaterOrEqual(t, values.CostLineCents, int64(0))
			assert.GreaterOrEqual(t, values.SaleLineCents, int64(0))
			assert.GreaterOrEqual(t, values.TtcLineCents, values.SaleLineCents)
		}
	}
}

// A non-finite margin falls back to 1, not 0: an estimate with a broken
// margin field still shows cost-price totals instead of zeros.
func TestComputeEstimateLineValuesMarginDefault(t *testing.T) {
	values := ComputeEstimateLineValues(EstimateLineInput{
		Quantity:         2,
		UnitPriceHTCents: 1000,
		KFo:              1,
		KMo:              1,
	}, LineContext{MarginMultiplier: math.NaN(), TaxRateBp: 0})

	assert.Equal(t, int64(2000), values.SaleLineCents)
}
