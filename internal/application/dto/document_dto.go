package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateDocumentRequest body para POST /api/documents/calculate y POST /api/documents.
type CalculateDocumentRequest struct {
	DocumentType string          `json:"tipo_documento" validate:"required,oneof=01 03 07 08"`
	Series       string          `json:"serie" validate:"required,len=4,alphanum"`
	Number       string          `json:"correlativo,omitempty" validate:"omitempty,numeric,max=8"` // vacío: siguiente correlativo de la serie
	IssueDate    string          `json:"fecha_emision,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Currency     string          `json:"moneda" validate:"required,oneof=PEN USD EUR"`
	Customer     CustomerRequest `json:"cliente"`

	Items     []DocumentItemRequest `json:"items" validate:"required,min=1,dive"`
	Discounts []DiscountRequest     `json:"descuentos_globales,omitempty" validate:"dive"`
	Advances  []AdvanceRequest      `json:"anticipos,omitempty" validate:"dive"`
	Rounding  decimal.Decimal       `json:"redondeo"`

	Detraction   *DetractionRequest   `json:"detraccion,omitempty"`
	PaymentMedia *PaymentMediaRequest `json:"medio_pago,omitempty"`
	Payments     []PaymentRequest     `json:"pagos,omitempty" validate:"dive"`
}

// Validate aplica las reglas de formato; las reglas tributarias se validan en el dominio.
func (r *CalculateDocumentRequest) Validate() error { return validateStruct(r) }

// CustomerRequest adquiriente o usuario.
type CustomerRequest struct {
	DocType   string `json:"tipo_documento,omitempty" validate:"omitempty,oneof=0 1 4 6 7 A"`
	DocNumber string `json:"numero_documento,omitempty" validate:"omitempty,max=15"`
	Name      string `json:"razon_social,omitempty" validate:"omitempty,max=500"`
}

// DocumentItemRequest línea del comprobante. Se informa precio_unitario (con IGV) o
// valor_unitario (sin IGV); si llegan ambos prevalece valor_unitario.
type DocumentItemRequest struct {
	Description     string            `json:"descripcion" validate:"required,max=500"`
	UnitCode        string            `json:"unidad,omitempty" validate:"omitempty,max=3"`
	Quantity        decimal.Decimal   `json:"cantidad"`
	UnitPrice       *decimal.Decimal  `json:"precio_unitario,omitempty"`
	UnitValue       *decimal.Decimal  `json:"valor_unitario,omitempty"`
	AffectationCode string            `json:"tipo_afectacion_igv" validate:"required,len=2,numeric"`
	TaxRate         *decimal.Decimal  `json:"porcentaje_igv,omitempty"`
	ISC             *ISCRequest       `json:"isc,omitempty"`
	PlasticBag      bool              `json:"afecto_icbper,omitempty"`
	OtherTaxRate    *decimal.Decimal  `json:"porcentaje_otros_tributos,omitempty"`
	ReferenceValue  *decimal.Decimal  `json:"valor_referencial,omitempty"`
	Discounts       []DiscountRequest `json:"descuentos,omitempty" validate:"dive"`
}

// ISCRequest datos del Impuesto Selectivo al Consumo de la línea.
type ISCRequest struct {
	Scheme      string           `json:"sistema" validate:"required,oneof=01 02 03"`
	Rate        decimal.Decimal  `json:"tasa"`
	PublicPrice *decimal.Decimal `json:"precio_publico,omitempty"`
}

// DiscountRequest descuento identificado por su código del Catálogo 53.
type DiscountRequest struct {
	Code   string          `json:"codigo" validate:"required,len=2,numeric"`
	Amount decimal.Decimal `json:"monto"`
}

// AdvanceRequest anticipo previamente facturado.
type AdvanceRequest struct {
	DocumentType string          `json:"tipo_documento" validate:"required,oneof=01 03"`
	Series       string          `json:"serie" validate:"required,len=4"`
	Number       string          `json:"correlativo" validate:"required,numeric,max=8"`
	Amount       decimal.Decimal `json:"monto"`
}

// DetractionRequest detracción (SPOT) declarada.
type DetractionRequest struct {
	Code              string           `json:"codigo" validate:"required,max=3"`
	Percentage        *decimal.Decimal `json:"porcentaje,omitempty"`
	BankAccount       string           `json:"cuenta_banco,omitempty" validate:"omitempty,max=30"`
	PaymentMethodCode string           `json:"medio_pago,omitempty"`
}

// PaymentMediaRequest medio de pago usado para la bancarización.
type PaymentMediaRequest struct {
	Code            string `json:"codigo"`
	OperationNumber string `json:"numero_operacion,omitempty"`
	BankName        string `json:"entidad_financiera,omitempty"`
	PaymentDate     string `json:"fecha_pago,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PaymentRequest uno de los pagos cuando el comprobante se paga con varios medios.
type PaymentRequest struct {
	TypeCode  string          `json:"tipo"`
	Amount    decimal.Decimal `json:"monto"`
	Reference string          `json:"referencia,omitempty"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Respuestas
// ──────────────────────────────────────────────────────────────────────────────

// CalculationResponse resultado del motor de cálculo.
type CalculationResponse struct {
	Items         []LineResponse             `json:"items"`
	Totals        TotalsResponse             `json:"totales"`
	Legends       []LegendResponse           `json:"leyendas"`
	Detraction    *DetractionResponse        `json:"detraccion,omitempty"`
	Bancarization BancarizationResponse      `json:"bancarizacion"`
	Payments      *PaymentValidationResponse `json:"pagos,omitempty"`
}

// LineResponse línea resuelta.
type LineResponse struct {
	LineNumber      int             `json:"numero"`
	Description     string          `json:"descripcion"`
	UnitCode        string          `json:"unidad"`
	Quantity        decimal.Decimal `json:"cantidad"`
	AffectationCode string          `json:"tipo_afectacion_igv"`
	UnitValue       decimal.Decimal `json:"valor_unitario"`
	UnitPrice       decimal.Decimal `json:"precio_unitario"`
	Discounts       decimal.Decimal `json:"descuentos"`
	NetValue        decimal.Decimal `json:"valor_venta"`
	TaxBase         decimal.Decimal `json:"base_igv"`
	IGV             decimal.Decimal `json:"igv"`
	ISC             decimal.Decimal `json:"isc"`
	ICBPER          decimal.Decimal `json:"icbper"`
	TotalTaxes      decimal.Decimal `json:"total_tributos"`
	FreeValue       decimal.Decimal `json:"valor_gratuito"`
}

// TotalsResponse totales del comprobante.
type TotalsResponse struct {
	TaxedSales            decimal.Decimal `json:"total_gravadas"`
	IVAPBase              decimal.Decimal `json:"total_base_ivap"`
	IVAPAmount            decimal.Decimal `json:"total_ivap"`
	ExemptSales           decimal.Decimal `json:"total_exoneradas"`
	UnaffectedSales       decimal.Decimal `json:"total_inafectas"`
	ExportSales           decimal.Decimal `json:"total_exportacion"`
	FreeSales             decimal.Decimal `json:"total_gratuitas"`
	FreeIGV               decimal.Decimal `json:"total_igv_gratuitas"`
	IGV                   decimal.Decimal `json:"total_igv"`
	ISC                   decimal.Decimal `json:"total_isc"`
	ICBPER                decimal.Decimal `json:"total_icbper"`
	OtherTaxes            decimal.Decimal `json:"total_otros_tributos"`
	TotalTaxes            decimal.Decimal `json:"total_tributos"`
	TaxableValueSum       decimal.Decimal `json:"valor_venta"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	TaxesBeforeAdvance    decimal.Decimal `json:"total_tributos_antes_anticipos"`
	SubtotalBeforeAdvance decimal.Decimal `json:"subtotal_antes_anticipos"`
	LineDiscounts         decimal.Decimal `json:"descuentos_linea"`
	GlobalDiscount        decimal.Decimal `json:"descuento_global"`
	NonBaseDiscount       decimal.Decimal `json:"descuentos_no_base"`
	TotalDiscounts        decimal.Decimal `json:"total_descuentos"`
	AdvancesTotal         decimal.Decimal `json:"total_anticipos"`
	Rounding              decimal.Decimal `json:"redondeo"`
	Payable               decimal.Decimal `json:"importe_total"`
}

// LegendResponse leyenda del Catálogo 52.
type LegendResponse struct {
	Code  string `json:"codigo"`
	Value string `json:"valor"`
}

// DetractionResponse detracción calculada.
type DetractionResponse struct {
	Code              string          `json:"codigo"`
	Description       string          `json:"descripcion,omitempty"`
	Percentage        decimal.Decimal `json:"porcentaje"`
	Amount            decimal.Decimal `json:"monto"`
	PaymentMethodCode string          `json:"medio_pago"`
	BankAccount       string          `json:"cuenta_banco,omitempty"`
}

// BancarizationResponse resultado de la evaluación de bancarización.
type BancarizationResponse struct {
	Applies           bool            `json:"aplica"`
	Threshold         decimal.Decimal `json:"umbral"`
	PaymentMethodCode string          `json:"medio_pago,omitempty"`
	Validated         bool            `json:"validado"`
	Warning           *string         `json:"advertencia,omitempty"`
}

// PaymentValidationResponse resultado de la validación de pagos múltiples.
type PaymentValidationResponse struct {
	Valid         bool            `json:"valido"`
	Errors        []string        `json:"errores,omitempty"`
	TotalDeclared decimal.Decimal `json:"total_declarado"`
}

// DocumentResponse comprobante persistido con su cálculo.
type DocumentResponse struct {
	ID           string          `json:"id"`
	CompanyID    string          `json:"empresa_id"`
	DocumentType string          `json:"tipo_documento"`
	Series       string          `json:"serie"`
	Number       string          `json:"correlativo"`
	FullNumber   string          `json:"numero"`
	IssueDate    time.Time       `json:"fecha_emision"`
	Currency     string          `json:"moneda"`
	Customer     CustomerRequest `json:"cliente"`
	Status       string          `json:"estado"`
	CalculationResponse
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogos
// ──────────────────────────────────────────────────────────────────────────────

// DetractionCatalogEntry entrada del Catálogo 54.
type DetractionCatalogEntry struct {
	Code        string          `json:"codigo"`
	Description string          `json:"descripcion"`
	Percentage  decimal.Decimal `json:"porcentaje"`
}

// PaymentMethodEntry entrada del Catálogo 59.
type PaymentMethodEntry struct {
	Code                    string `json:"codigo"`
	Name                    string `json:"descripcion"`
	Banking                 bool   `json:"sistema_financiero"`
	RequiresOperationNumber bool   `json:"requiere_numero_operacion"`
	RequiresBank            bool   `json:"requiere_entidad"`
	RequiresDate            bool   `json:"requiere_fecha"`
	RequiresReference       bool   `json:"requiere_referencia"`
}
