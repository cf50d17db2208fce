// Package money provides integer-cents arithmetic helpers. All monetary
// amounts in the system are int64 counts of euro cents; tax rates are
// integer basis points (10000 bp = 100%). Nothing here ever stores a
// floating-point currency value.
package money

import (
	"math"
	"strings"
	"unicode"
)

// BasisPointDenominator is the number of basis points in 100%.
const BasisPointDenominator = 10000

// FormatCurrency renders an amount of cents as a French-style display
// string, e.g. 123456 -> "1 234,56 €". Thousands are grouped with
// spaces and the decimal separator is a comma.
func FormatCurrency(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	units := cents / 100
	frac := cents % 100

	digits := formatInt(units)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}

	// Group integer digits by three, left to right.
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(' ')
		}
	}

	b.WriteByte(',')
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	b.WriteString(" €")
	return b.String()
}

func formatInt(v int64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

// ParseCurrencyInput parses a user-typed amount into cents. Both "." and
// "," are accepted as the decimal separator and all whitespace (including
// non-breaking spaces) and a trailing euro sign are ignored. The second
// return value is false when the input is not a finite number.
func ParseCurrencyInput(input string) (int64, bool) {
	var b strings.Builder
	for _, r := range input {
		switch {
		case unicode.IsSpace(r) || r == '€':
			// skip
		case r == ',':
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, false
	}

	f, ok := parseDecimal(s)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f * 100)), true
}

// parseDecimal accepts [sign] digits [ "." digits ] with at least one
// digit overall. strconv.ParseFloat is deliberately not used: it would
// accept exponents, hex floats and "Inf", none of which are valid
// amounts in a price field.
func parseDecimal(s string) (float64, bool) {
	neg := false
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	var intPart float64
	sawDigit := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		intPart = intPart*10 + float64(s[i]-'0')
		sawDigit = true
		i++
	}

	var fracPart, scale float64 = 0, 1
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			fracPart = fracPart*10 + float64(s[i]-'0')
			scale *= 10
			sawDigit = true
			i++
		}
	}

	if !sawDigit || i != len(s) {
		return 0, false
	}

	v := intPart + fracPart/scale
	if neg {
		v = -v
	}
	return v, true
}

// ComputeTaxCents computes round(amountCents * taxRateBp / 10000) with
// rounding half away from zero. Every tax figure in the system goes
// through this function so the rounding behavior stays in one place.
func ComputeTaxCents(amountCents, taxRateBp int64) int64 {
	return int64(math.Round(float64(amountCents) * float64(taxRateBp) / BasisPointDenominator))
}
