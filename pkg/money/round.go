// Package money agrupa los redondeos monetarios usados en los comprobantes SUNAT.
package money

import "github.com/shopspring/decimal"

var (
	half = decimal.NewFromFloat(0.5)
	one  = decimal.NewFromInt(1)
)

// Round2 redondea a 2 decimales con medio hacia arriba (alejándose de cero).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundHalfDown redondea a places decimales resolviendo los empates hacia cero.
// 1.005 -> 1.00, 1.0051 -> 1.01, -1.005 -> -1.00.
func RoundHalfDown(d decimal.Decimal, places int32) decimal.Decimal {
	shifted := d.Shift(places)
	whole := shifted.Truncate(0)
	frac := shifted.Sub(whole).Abs()
	if frac.GreaterThan(half) {
		if shifted.IsNegative() {
			whole = whole.Sub(one)
		} else {
			whole = whole.Add(one)
		}
	}
	return whole.Shift(-places)
}

// Percent devuelve amount * rate / 100 sin redondear.
func Percent(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(decimal.NewFromInt(100))
}

// Fixed2 formatea con exactamente 2 decimales ("118.00").
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
