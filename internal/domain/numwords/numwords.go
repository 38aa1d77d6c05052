// Package numwords convierte montos a su representación en letras para la
// leyenda 1000 del comprobante ("CIENTO DIECIOCHO CON 00/100 SOLES").
package numwords

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// OutOfRange se devuelve para montos de un millón o más.
const OutOfRange = "MONTO FUERA DE RANGO"

var limit = decimal.NewFromInt(1_000_000)

var units = [...]string{
	"cero", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve", "diez",
	"once", "doce", "trece", "catorce", "quince", "dieciséis", "diecisiete", "dieciocho", "diecinueve", "veinte",
}

var tens = [...]string{
	"", "", "veinte", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa",
}

var hundreds = [...]string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos",
	"seiscientos", "setecientos", "ochocientos", "novecientos",
}

var upper = cases.Upper(language.Spanish)

// ToWords devuelve "<ENTERO EN LETRAS> CON <CC>/100 <MONEDA>" en mayúsculas.
func ToWords(amount decimal.Decimal, currency string) string {
	amount = amount.Abs().Round(2)
	if amount.GreaterThanOrEqual(limit) {
		return OutOfRange
	}
	integer := amount.Truncate(0)
	cents := amount.Sub(integer).Shift(2).IntPart()

	words := convert(integer.IntPart())
	return upper.String(fmt.Sprintf("%s con %02d/100 %s", words, cents, sunat.CurrencyName(currency)))
}

// convert recorre las bandas de magnitud: unidades, decenas, centenas y miles.
func convert(n int64) string {
	switch {
	case n <= 20:
		return units[n]
	case n < 100:
		t, u := n/10, n%10
		if u == 0 {
			return tens[t]
		}
		return tens[t] + " y " + units[u]
	case n == 100:
		return "cien"
	case n < 1000:
		h, rest := n/100, n%100
		if rest == 0 {
			return hundreds[h]
		}
		return hundreds[h] + " " + convert(rest)
	default:
		th, rest := n/1000, n%1000
		var prefix string
		if th == 1 {
			prefix = "mil"
		} else {
			prefix = apocope(convert(th)) + " mil"
		}
		if rest == 0 {
			return prefix
		}
		return prefix + " " + convert(rest)
	}
}

// apocope "veinte y uno mil" -> "veinte y un mil".
func apocope(s string) string {
	if strings.HasSuffix(s, "uno") {
		return strings.TrimSuffix(s, "uno") + "un"
	}
	return s
}
