package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLineTotals(t *testing.T) {
	line1 := ComputeLineTotals(LineInput{Quantity: 2, UnitPriceHTCents: 500, TaxRateBp: 2000})
	assert.Equal(t, int64(1000), line1.LineTotalHTCents)
	assert.Equal(t, int64(200), line1.LineTaxCents)
	assert.Equal(t, int64(1200), line1.LineTotalTTCCents)

	line2 := ComputeLineTotals(LineInput{Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 1000})
	assert.Equal(t, int64(1000), line2.LineTotalHTCents)
	assert.Equal(t, int64(100), line2.LineTaxCents)
	assert.Equal(t, int64(1100), line2.LineTotalTTCCents)
}

func TestComputeOrderTotals(t *testing.T) {
	lines, totals := ComputeTotalsFromInputs([]LineInput{
		{Quantity: 2, UnitPriceHTCents: 500, TaxRateBp: 2000},
		{Quantity: 1, UnitPriceHTCents: 1000, TaxRateBp: 1000},
	})

	assert.Len(t, lines, 2)
	assert.Equal(t, int64(2000), totals.TotalHTCents)
	assert.Equal(t, int64(300), totals.TotalTaxCents)
	assert.Equal(t, int64(2300), totals.TotalTTCCents)
}

func TestComputeOrderTotalsEmpty(t *testing.T) {
	totals := ComputeOrderTotals(nil)
	assert.Equal(t, OrderTotals{}, totals)
}

// Order totals must be the element-wise sum of the line totals, whatever
// the lines are and in whatever order they come.
func TestOrderTotalsAdditivity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	inputs := make([]LineInput, 50)
	for i := range inputs {
		inputs[i] = LineInput{
			Quantity:         float64(rng.Intn(20) + 1),
			UnitPriceHTCents: rng.Int63n(100000),
			TaxRateBp:        rng.Int63n(10001),
		}
	}

	lines, totals := ComputeTotalsFromInputs(inputs)

	var sumHT, sumTax, sumTTC int64
	for _, l := range lines {
		sumHT += l.LineTotalHTCents
		sumTax += l.LineTaxCents
		sumTTC += l.LineTotalTTCCents
	}
	assert.Equal(t, sumHT, totals.TotalHTCents)
	assert.Equal(t, sumTax, totals.TotalTaxCents)
	assert.Equal(t, sumTTC, totals.TotalTTCCents)

	// Shuffling the lines does not change the aggregate.
	rng.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
	assert.Equal(t, totals, ComputeOrderTotals(lines))
}
