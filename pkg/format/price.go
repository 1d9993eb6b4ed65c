package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered in place of a price that has not been fetched yet.
const NotAvailable = "N/A"

// sentinel stages the grouping separator while the decimal point is swapped.
const sentinel = "\x00"

// Price renders a BRL price using Brazilian separators ("1.234.567,89").
// Precision depends on magnitude so that sub-cent assets stay readable:
//   - below 0.01: up to 8 decimals, scientific notation if that rounds to zero
//   - below 1: up to 4 decimals
//   - otherwise: 2 decimals with thousands grouping
func Price(price float64) string {
	var formatted string

	switch {
	case price < 0.01:
		formatted = trimZeros(exact(price).StringFixedBank(8))
		if v, err := strconv.ParseFloat(formatted, 64); err == nil && v == 0 {
			formatted = fmt.Sprintf("%.2e", price)
		}
	case price < 1.0:
		formatted = trimZeros(exact(price).StringFixedBank(4))
	default:
		formatted = groupThousands(exact(price).StringFixedBank(2))
	}

	return toBrazilian(formatted)
}

// exact keeps every binary digit of price, so rounding sees 2.675 as
// 2.67499999... rather than its shortest decimal form.
func exact(price float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(price, -1074)
}

// PricePtr is Price for optional values; nil renders as NotAvailable.
func PricePtr(price *float64) string {
	if price == nil {
		return NotAvailable
	}
	return Price(*price)
}

// toBrazilian swaps "," and "." going through a sentinel, so neither
// replacement clobbers the output of the other.
func toBrazilian(s string) string {
	s = strings.ReplaceAll(s, ",", sentinel)
	s = strings.ReplaceAll(s, ".", ",")
	return strings.ReplaceAll(s, sentinel, ".")
}

// trimZeros strips trailing fractional zeros and a dangling decimal point.
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// groupThousands inserts "," every three digits of the integer part.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
