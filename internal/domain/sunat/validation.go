// Package sunat contiene las validaciones de consistencia de un comprobante antes de
// persistirlo: RUC del emisor y del cliente, serie y correlativo por tipo de documento y
// cuadre de los totales. Usa los catálogos de pkg/sunat.
package sunat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrInvalidDocument agrupa errores de validación del comprobante.
var ErrInvalidDocument = errors.New("comprobante inválido para SUNAT")

// BoletaIdentificationThreshold monto desde el cual la boleta exige identificar al cliente.
var BoletaIdentificationThreshold = decimal.NewFromInt(700)

// ValidateDocument valida cabecera, líneas y totales. Reporta todas las infracciones.
func ValidateDocument(issuerRUC string, doc *entity.Document, lines []*entity.DocumentLine) error {
	verr := domain.NewValidationError(ErrInvalidDocument)
	if doc == nil {
		verr.Add("comprobante nulo")
		return verr
	}

	if err := sunat.ValidateRUC(issuerRUC); err != nil {
		verr.Add("emisor: " + err.Error())
	}
	if !sunat.IsSupportedCurrency(doc.Currency) {
		verr.Add(fmt.Sprintf("moneda %q no soportada", doc.Currency))
	}
	if !sunat.IsValidDocumentType(doc.DocumentType) {
		verr.Add(fmt.Sprintf("tipo de comprobante %q no soportado", doc.DocumentType))
	} else if err := ValidateSeries(doc.DocumentType, doc.Series); err != nil {
		verr.Add(err.Error())
	}
	if err := ValidateNumber(doc.Number); err != nil {
		verr.Add(err.Error())
	}

	for _, msg := range customerViolations(doc) {
		verr.Add(msg)
	}

	if len(lines) == 0 {
		verr.Add("el comprobante debe tener al menos una línea")
	}

	for _, msg := range totalsViolations(doc.Totals) {
		verr.Add(msg)
	}
	return verr.OrNil()
}

// ValidateSeries serie de 4 caracteres: F para factura, B para boleta; las notas
// aceptan F o B según el comprobante que modifican.
func ValidateSeries(documentType, series string) error {
	if len(series) != 4 || !isAlnum(series) {
		return fmt.Errorf("serie %q inválida: se esperan 4 caracteres alfanuméricos", series)
	}
	first := strings.ToUpper(series[:1])
	switch documentType {
	case sunat.DocumentTypeFactura:
		if first != "F" {
			return fmt.Errorf("serie %q inválida: las facturas usan series que empiezan con F", series)
		}
	case sunat.DocumentTypeBoleta:
		if first != "B" {
			return fmt.Errorf("serie %q inválida: las boletas usan series que empiezan con B", series)
		}
	case sunat.DocumentTypeCreditNote, sunat.DocumentTypeDebitNote:
		if first != "F" && first != "B" {
			return fmt.Errorf("serie %q inválida: las notas usan series F o B", series)
		}
	}
	return nil
}

// ValidateNumber correlativo numérico de 1 a 8 dígitos.
func ValidateNumber(number string) error {
	if number == "" || len(number) > 8 {
		return fmt.Errorf("correlativo %q inválido: se esperan de 1 a 8 dígitos", number)
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return fmt.Errorf("correlativo %q inválido: solo dígitos", number)
		}
	}
	return nil
}

func customerViolations(doc *entity.Document) []string {
	var out []string
	if doc.CustomerDocType != "" && !sunat.IsValidIdentityType(doc.CustomerDocType) {
		out = append(out, fmt.Sprintf("tipo de documento de identidad %q inválido", doc.CustomerDocType))
	}
	switch doc.DocumentType {
	case sunat.DocumentTypeFactura:
		if doc.CustomerDocType != sunat.IdentityTypeRUC {
			out = append(out, "la factura requiere un cliente identificado con RUC")
		} else if err := sunat.ValidateRUC(doc.CustomerDocNumber); err != nil {
			out = append(out, "cliente: "+err.Error())
		}
	case sunat.DocumentTypeBoleta:
		if doc.Currency == sunat.CurrencyPEN &&
			doc.Totals.Payable.GreaterThan(BoletaIdentificationThreshold) &&
			strings.TrimSpace(doc.CustomerDocNumber) == "" {
			out = append(out, "boletas mayores a S/ 700.00 requieren el documento de identidad del cliente")
		}
	}
	return out
}

func totalsViolations(t entity.DocumentTotals) []string {
	var out []string
	if want := t.TaxableValueSum.Add(t.TotalTaxes); !t.Subtotal.Equal(want) {
		out = append(out, fmt.Sprintf("subtotal (%s) no coincide con valor de venta + tributos (%s)",
			t.Subtotal.StringFixed(2), want.StringFixed(2)))
	}
	want := t.Subtotal.Sub(t.AdvancesTotal).Add(t.Rounding).Sub(t.NonBaseDiscount)
	if !t.Payable.Equal(want) {
		out = append(out, fmt.Sprintf("importe total (%s) no coincide con subtotal - anticipos + redondeo - descuentos (%s)",
			t.Payable.StringFixed(2), want.StringFixed(2)))
	}
	if t.Payable.IsNegative() {
		out = append(out, "el importe total no puede ser negativo")
	}
	return out
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}
