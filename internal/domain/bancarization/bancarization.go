// Package bancarization evalúa la obligación de usar medios de pago del sistema
// financiero (Ley N° 28194) y valida los datos del medio declarado.
package bancarization

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrMissingPaymentData faltan datos obligatorios del medio de pago.
var ErrMissingPaymentData = errors.New("datos de bancarización incompletos")

// LegalWarning se muestra en el comprobante cuando la operación supera el umbral
// y no se declaró el medio de pago.
const LegalWarning = "Operación sujeta a bancarización (Ley N° 28194): el pago de montos mayores a S/ 2,000.00 o US$ 500.00 debe realizarse mediante medios de pago del sistema financiero para sustentar costo, gasto o crédito fiscal."

var thresholds = map[string]decimal.Decimal{
	sunat.CurrencyPEN: decimal.NewFromInt(2000),
	sunat.CurrencyUSD: decimal.NewFromInt(500),
}

// Threshold devuelve el umbral de la moneda; ok es false si la moneda nunca bancariza.
func Threshold(currency string) (decimal.Decimal, bool) {
	t, ok := thresholds[strings.ToUpper(strings.TrimSpace(currency))]
	return t, ok
}

// PaymentData medio de pago declarado para la operación.
type PaymentData struct {
	MethodCode      string
	OperationNumber string
	BankName        string
	PaymentDate     time.Time
}

// Result resultado de la evaluación.
type Result struct {
	Applies           bool
	Threshold         decimal.Decimal
	PaymentMethodCode string
	Validated         bool
	Warning           *string
}

// Evaluate aplica el umbral (estrictamente mayor) y valida el medio de pago declarado.
// Si faltan datos obligatorios devuelve el resultado junto con un *domain.ValidationError
// que lista cada campo faltante con el nombre del medio de pago.
func Evaluate(totalPayable decimal.Decimal, currency string, data *PaymentData) (Result, error) {
	threshold, ok := Threshold(currency)
	if !ok || !totalPayable.GreaterThan(threshold) {
		return Result{Applies: false, Threshold: threshold}, nil
	}

	res := Result{Applies: true, Threshold: threshold}
	if data == nil || strings.TrimSpace(data.MethodCode) == "" {
		res.Warning = warning()
		return res, nil
	}

	code := strings.TrimSpace(data.MethodCode)
	res.PaymentMethodCode = code
	if err := validatePaymentData(code, data); err != nil {
		res.Warning = warning()
		return res, err
	}
	res.Validated = true
	return res, nil
}

func validatePaymentData(code string, data *PaymentData) error {
	verr := domain.NewValidationError(ErrMissingPaymentData)
	method, ok := sunat.LookupPaymentMethod(code)
	if !ok {
		verr.Add(fmt.Sprintf("el medio de pago %q no existe en el Catálogo 59", code))
		return verr
	}
	if !method.Banking {
		verr.Add(fmt.Sprintf("%s: no es un medio de pago del sistema financiero", method.Name))
	}
	if method.RequiresOperationNumber && strings.TrimSpace(data.OperationNumber) == "" {
		verr.Add(fmt.Sprintf("%s: número de operación requerido", method.Name))
	}
	if method.RequiresBank && strings.TrimSpace(data.BankName) == "" {
		verr.Add(fmt.Sprintf("%s: entidad bancaria requerida", method.Name))
	}
	if method.RequiresDate && data.PaymentDate.IsZero() {
		verr.Add(fmt.Sprintf("%s: fecha de pago requerida", method.Name))
	}
	return verr.OrNil()
}

func warning() *string {
	w := LegalWarning
	return &w
}
