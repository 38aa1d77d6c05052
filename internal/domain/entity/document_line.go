package entity

import "github.com/shopspring/decimal"

// DocumentLine línea del comprobante con los montos resueltos.
type DocumentLine struct {
	ID              string
	DocumentID      string
	LineNumber      int
	Description     string
	UnitCode        string
	Quantity        decimal.Decimal
	AffectationCode string
	UnitValue       decimal.Decimal
	UnitPrice       decimal.Decimal
	Discounts       decimal.Decimal
	NetValue        decimal.Decimal
	TaxBase         decimal.Decimal
	IGV             decimal.Decimal
	ISC             decimal.Decimal
	ICBPER          decimal.Decimal
	TotalTaxes      decimal.Decimal
	FreeValue       decimal.Decimal
}

// DocumentLegend leyenda impresa en el comprobante (Catálogo 52).
type DocumentLegend struct {
	DocumentID string
	Code       string
	Value      string
}

// DocumentPayment medio de pago declarado cuando el comprobante se paga con varios medios.
type DocumentPayment struct {
	ID         string
	DocumentID string
	TypeCode   string // Catálogo 59
	Amount     decimal.Decimal
	Reference  string
}
