// Package detraction resuelve códigos del Catálogo 54 (SPOT) y calcula el monto
// a depositar en la cuenta de detracciones del Banco de la Nación.
package detraction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/pkg/money"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrCatalogCodeNotFound el código no existe en el Catálogo 54. Es fatal: no hay porcentaje por defecto.
var ErrCatalogCodeNotFound = errors.New("código de detracción no encontrado en el catálogo")

// Entry porcentaje y descripción de un bien o servicio sujeto a detracción.
type Entry struct {
	Code        string
	Description string
	Percentage  decimal.Decimal
}

// Calculation monto retenido para un total y código.
type Calculation struct {
	Code       string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// Request datos declarados por el emisor para la detracción del documento.
type Request struct {
	Code               string
	PercentageOverride *decimal.Decimal
	BankAccount        string
	PaymentMethodCode  string
}

// Result detracción lista para persistir e informar en el comprobante.
type Result struct {
	Code              string
	Description       string
	Percentage        decimal.Decimal
	Amount            decimal.Decimal
	PaymentMethodCode string
	BankAccount       string
}

// NormalizeCode completa con ceros a la izquierda hasta 3 dígitos ("1" -> "001").
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || len(code) >= 3 {
		return code
	}
	return strings.Repeat("0", 3-len(code)) + code
}

// Resolve devuelve porcentaje y descripción del código.
func Resolve(code string) (Entry, error) {
	normalized := NormalizeCode(code)
	e, ok := sunat.LookupDetraction(normalized)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrCatalogCodeNotFound, code)
	}
	return Entry{Code: e.Code, Description: e.Description, Percentage: e.Percentage}, nil
}

// Calculate aplica el porcentaje del catálogo (o el override) sobre el total a pagar.
// El override no evita la validación de pertenencia al catálogo.
func Calculate(totalPayable decimal.Decimal, code string, percentageOverride *decimal.Decimal) (Calculation, error) {
	entry, err := Resolve(code)
	if err != nil {
		return Calculation{}, err
	}
	pct := entry.Percentage
	if percentageOverride != nil {
		pct = *percentageOverride
	}
	return Calculation{
		Code:       entry.Code,
		Percentage: pct,
		Amount:     money.Round2(money.Percent(totalPayable, pct)),
	}, nil
}

// ResolveBankAccount prioridad: cuenta declarada -> cuenta por defecto de la empresa -> vacío.
func ResolveBankAccount(input, companyDefault string) string {
	if s := strings.TrimSpace(input); s != "" {
		return s
	}
	return strings.TrimSpace(companyDefault)
}

// ResolvePaymentMethod devuelve el medio de pago declarado si existe en el Catálogo 59;
// en cualquier otro caso usa el medio por defecto sin reportar error.
func ResolvePaymentMethod(input, fallback string) string {
	if fallback == "" {
		fallback = sunat.DefaultDetractionPaymentMethod
	}
	code := strings.TrimSpace(input)
	if code == "" {
		return fallback
	}
	if _, ok := sunat.LookupPaymentMethod(code); !ok {
		return fallback
	}
	return code
}

// Build calcula la detracción completa del documento.
func Build(totalPayable decimal.Decimal, req Request, companyDefaultAccount, defaultPaymentMethod string) (Result, error) {
	entry, err := Resolve(req.Code)
	if err != nil {
		return Result{}, err
	}
	calc, err := Calculate(totalPayable, entry.Code, req.PercentageOverride)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Code:              calc.Code,
		Description:       entry.Description,
		Percentage:        calc.Percentage,
		Amount:            calc.Amount,
		PaymentMethodCode: ResolvePaymentMethod(req.PaymentMethodCode, defaultPaymentMethod),
		BankAccount:       ResolveBankAccount(req.BankAccount, companyDefaultAccount),
	}, nil
}
