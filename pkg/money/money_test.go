package money

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "0,00 €", FormatCurrency(0))
	assert.Equal(t, "0,05 €", FormatCurrency(5))
	assert.Equal(t, "12,50 €", FormatCurrency(1250))
	assert.Equal(t, "1 234,56 €", FormatCurrency(123456))
	assert.Equal(t, "1 234 567,89 €", FormatCurrency(123456789))
	assert.Equal(t, "-12,50 €", FormatCurrency(-1250))
}

func TestParseCurrencyInput(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"12,50", 1250, true},
		{"12.50", 1250, true},
		{" 1 234,56 ", 123456, true},
		{"10", 1000, true},
		{"0", 0, true},
		{"-3,20", -320, true},
		{"1 234,56 €", 123456, true},
		{"12,5", 1250, true},
		{"abc", 0, false},
		{"", 0, false},
		{"12,34,56", 0, false},
		{"1e3", 0, false},
		{"--5", 0, false},
	}

	for _, tc := range cases {
		cents, ok := ParseCurrencyInput(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.cents, cents, "input %q", tc.in)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 1250, 123456, 987654321} {
		formatted := strings.TrimSuffix(FormatCurrency(cents), " €")
		parsed, ok := ParseCurrencyInput(formatted)
		assert.True(t, ok)
		assert.Equal(t, cents, parsed)
	}
}

func TestComputeTaxCents(t *testing.T) {
	assert.Equal(t, int64(720), ComputeTaxCents(3600, 2000))
	assert.Equal(t, int64(200), ComputeTaxCents(1000, 2000))
	assert.Equal(t, int64(100), ComputeTaxCents(1000, 1000))
	assert.Equal(t, int64(0), ComputeTaxCents(12345, 0))
	assert.Equal(t, int64(12345), ComputeTaxCents(12345, 10000))

	// Half cents round up for positive amounts.
	assert.Equal(t, int64(1), ComputeTaxCents(5, 1000))    // 0.5 -> 1
	assert.Equal(t, int64(62), ComputeTaxCents(1235, 500)) // 61.75 -> 62
}
