package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del comprobante. El envío a SUNAT lo realiza un servicio externo.
const (
	DocumentStatusDraft    = "DRAFT"    // Calculado y guardado, pendiente de envío
	DocumentStatusSent     = "SENT"     // Entregado al servicio de envío
	DocumentStatusAccepted = "ACCEPTED" // CDR aceptado
	DocumentStatusRejected = "REJECTED" // CDR con observaciones o rechazo
)

// Document cabecera de un comprobante electrónico con sus totales calculados.
type Document struct {
	ID           string
	CompanyID    string
	DocumentType string // Catálogo 01
	Series       string
	Number       string
	IssueDate    time.Time
	Currency     string

	CustomerDocType   string // Catálogo 06
	CustomerDocNumber string
	CustomerName      string

	Totals DocumentTotals

	Detraction   *DocumentDetraction
	Bancarizable bool
	// BancarizationValidated verdadero si se declaró un medio de pago financiero completo.
	BancarizationValidated bool
	PaymentMethodCode      string

	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentTotals montos agregados del comprobante, redondeados a 2 decimales.
type DocumentTotals struct {
	TaxedSales      decimal.Decimal
	IVAPBase        decimal.Decimal
	IVAPAmount      decimal.Decimal
	ExemptSales     decimal.Decimal
	UnaffectedSales decimal.Decimal
	ExportSales     decimal.Decimal
	FreeSales       decimal.Decimal
	FreeIGV         decimal.Decimal
	IGV             decimal.Decimal
	ISC             decimal.Decimal
	ICBPER          decimal.Decimal
	OtherTaxes      decimal.Decimal
	TotalTaxes      decimal.Decimal
	TaxableValueSum decimal.Decimal
	Subtotal        decimal.Decimal
	LineDiscounts   decimal.Decimal
	TotalDiscounts  decimal.Decimal
	GlobalDiscount  decimal.Decimal
	NonBaseDiscount decimal.Decimal
	AdvancesTotal   decimal.Decimal
	Rounding        decimal.Decimal
	Payable         decimal.Decimal

	TaxesBeforeAdvance    decimal.Decimal
	SubtotalBeforeAdvance decimal.Decimal
}

// DocumentDetraction detracción (SPOT) aplicada al comprobante.
type DocumentDetraction struct {
	Code              string
	Percentage        decimal.Decimal
	Amount            decimal.Decimal
	BankAccount       string
	PaymentMethodCode string
}

// FullNumber serie y correlativo en el formato impreso (F001-123).
func (d *Document) FullNumber() string {
	return d.Series + "-" + d.Number
}
