// Package payment valida los pagos múltiples declarados para un comprobante.
package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/pkg/money"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrInvalidPayments los pagos declarados no son consistentes con el comprobante.
var ErrInvalidPayments = errors.New("pagos declarados inválidos")

// Entry un medio de pago declarado. No se modifica después de validarse.
type Entry struct {
	TypeCode  string
	Amount    decimal.Decimal
	Reference string
}

// Result resultado de la validación.
type Result struct {
	Valid         bool
	Errors        []string
	TotalDeclared decimal.Decimal
	Shortfall     decimal.Decimal
}

// Validate revisa cada pago y que la suma cubra el total del comprobante.
// Una lista vacía es válida (pago único implícito). Se permite pagar de más
// (vuelto o redondeo) pero no de menos.
func Validate(entries []Entry, totalPayable decimal.Decimal) Result {
	res := Result{TotalDeclared: decimal.Zero, Shortfall: decimal.Zero}
	for i, e := range entries {
		pos := i + 1
		method, ok := sunat.LookupPaymentMethod(strings.TrimSpace(e.TypeCode))
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("pago %d: tipo de pago %q desconocido", pos, e.TypeCode))
			continue
		}
		if !e.Amount.IsPositive() {
			res.Errors = append(res.Errors, fmt.Sprintf("pago %d (%s): el monto debe ser mayor a cero", pos, method.Name))
			continue
		}
		if method.RequiresReference && strings.TrimSpace(e.Reference) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("pago %d (%s): referencia requerida", pos, method.Name))
		}
		res.TotalDeclared = res.TotalDeclared.Add(e.Amount)
	}

	if res.TotalDeclared.IsPositive() && res.TotalDeclared.LessThan(totalPayable) {
		res.Shortfall = totalPayable.Sub(res.TotalDeclared)
		res.Errors = append(res.Errors, fmt.Sprintf(
			"la suma de los pagos (%s) es menor al total del comprobante (%s): faltan %s",
			money.Fixed2(res.TotalDeclared), money.Fixed2(totalPayable), money.Fixed2(res.Shortfall),
		))
	}
	res.Valid = len(res.Errors) == 0
	return res
}

// Err devuelve las infracciones como *domain.ValidationError, o nil si el resultado es válido.
func (r Result) Err() error {
	verr := domain.NewValidationError(ErrInvalidPayments)
	for _, e := range r.Errors {
		verr.Add(e)
	}
	return verr.OrNil()
}
