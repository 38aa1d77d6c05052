// Package sunat contiene los catálogos y validaciones alineados a los anexos de
// Comprobantes de Pago Electrónicos de SUNAT (Perú).
//
// Las tablas son de solo lectura: se inicializan una vez al cargar el paquete y
// solo se exponen mediante funciones de consulta que devuelven copias.
package sunat

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Catálogo 01 - Tipo de documento
// =============================================================================

const (
	DocumentTypeFactura    = "01"
	DocumentTypeBoleta     = "03"
	DocumentTypeCreditNote = "07"
	DocumentTypeDebitNote  = "08"
)

// validDocumentTypes tipos de comprobante que emite el sistema.
var validDocumentTypes = map[string]bool{
	DocumentTypeFactura:    true,
	DocumentTypeBoleta:     true,
	DocumentTypeCreditNote: true,
	DocumentTypeDebitNote:  true,
}

// IsValidDocumentType indica si el código pertenece al Catálogo 01 soportado.
func IsValidDocumentType(code string) bool { return validDocumentTypes[code] }

// =============================================================================
// Catálogo 06 - Tipo de documento de identidad
// =============================================================================

const (
	IdentityTypeNonDomiciled = "0"
	IdentityTypeDNI          = "1"
	IdentityTypeForeignCard  = "4"
	IdentityTypeRUC          = "6"
	IdentityTypePassport     = "7"
	IdentityTypeDiplomatic   = "A"
)

var identityTypes = map[string]bool{
	IdentityTypeNonDomiciled: true,
	IdentityTypeDNI:          true,
	IdentityTypeForeignCard:  true,
	IdentityTypeRUC:          true,
	IdentityTypePassport:     true,
	IdentityTypeDiplomatic:   true,
}

// IsValidIdentityType indica si el código pertenece al Catálogo 06.
func IsValidIdentityType(code string) bool { return identityTypes[code] }

// =============================================================================
// Catálogo 07 - Tipo de afectación del IGV
// =============================================================================

// AffectationCode código de afectación del IGV de una línea.
type AffectationCode string

const (
	AffectationTaxed          AffectationCode = "10" // Gravado - Operación onerosa
	AffectationTaxedFree11    AffectationCode = "11" // Gravado - Retiro por premio
	AffectationTaxedFree12    AffectationCode = "12" // Gravado - Retiro por donación
	AffectationTaxedFree13    AffectationCode = "13" // Gravado - Retiro
	AffectationTaxedFree14    AffectationCode = "14" // Gravado - Retiro por publicidad
	AffectationTaxedFree15    AffectationCode = "15" // Gravado - Bonificaciones
	AffectationTaxedFree16    AffectationCode = "16" // Gravado - Retiro por entrega a trabajadores
	AffectationIVAP           AffectationCode = "17" // Gravado - IVAP
	AffectationExempt         AffectationCode = "20" // Exonerado - Operación onerosa
	AffectationUnaffected     AffectationCode = "30" // Inafecto - Operación onerosa
	AffectationUnaffectedFr31 AffectationCode = "31" // Inafecto - Retiro por bonificación
	AffectationUnaffectedFr32 AffectationCode = "32" // Inafecto - Retiro
	AffectationUnaffectedFr33 AffectationCode = "33" // Inafecto - Retiro por muestras médicas
	AffectationUnaffectedFr34 AffectationCode = "34" // Inafecto - Retiro por convenio colectivo
	AffectationUnaffectedFr35 AffectationCode = "35" // Inafecto - Retiro por premio
	AffectationUnaffectedFr36 AffectationCode = "36" // Inafecto - Retiro por publicidad
	AffectationExport         AffectationCode = "40" // Exportación de bienes o servicios
)

// AffectationKind agrupa los códigos por su tratamiento tributario.
type AffectationKind int

const (
	KindUnknown AffectationKind = iota
	KindTaxed
	KindIVAP
	KindExempt
	KindUnaffected
	KindExport
	KindFreeTaxed      // 11-16: gratuito, IGV referencial sobre el valor gratuito
	KindFreeUnaffected // 31-36: gratuito, sin IGV
)

var affectationKinds = map[AffectationCode]AffectationKind{
	AffectationTaxed:          KindTaxed,
	AffectationTaxedFree11:    KindFreeTaxed,
	AffectationTaxedFree12:    KindFreeTaxed,
	AffectationTaxedFree13:    KindFreeTaxed,
	AffectationTaxedFree14:    KindFreeTaxed,
	AffectationTaxedFree15:    KindFreeTaxed,
	AffectationTaxedFree16:    KindFreeTaxed,
	AffectationIVAP:           KindIVAP,
	AffectationExempt:         KindExempt,
	AffectationUnaffected:     KindUnaffected,
	AffectationUnaffectedFr31: KindFreeUnaffected,
	AffectationUnaffectedFr32: KindFreeUnaffected,
	AffectationUnaffectedFr33: KindFreeUnaffected,
	AffectationUnaffectedFr34: KindFreeUnaffected,
	AffectationUnaffectedFr35: KindFreeUnaffected,
	AffectationUnaffectedFr36: KindFreeUnaffected,
	AffectationExport:         KindExport,
}

// Kind devuelve el tratamiento del código (KindUnknown si no está en el catálogo).
func (c AffectationCode) Kind() AffectationKind { return affectationKinds[c] }

// IsFree indica si el código corresponde a una transferencia gratuita.
func (c AffectationCode) IsFree() bool {
	k := c.Kind()
	return k == KindFreeTaxed || k == KindFreeUnaffected
}

// =============================================================================
// Catálogo 08 - Sistema de cálculo del ISC
// =============================================================================

const (
	ISCSchemeAdValorem   = "01" // Sistema al valor
	ISCSchemeFixedAmount = "02" // Aplicación del monto fijo
	ISCSchemePublicPrice = "03" // Sistema de precios de venta al público
)

// =============================================================================
// Catálogo 52 - Leyendas
// =============================================================================

const (
	LegendAmountInWords = "1000" // Monto expresado en letras
	LegendFreeTransfer  = "1002" // Transferencia gratuita
	LegendDetraction    = "2006" // Operación sujeta a detracción
	LegendIVAP          = "2007" // Operación sujeta a IVAP
	// LegendBancarization no pertenece al Catálogo 52; se imprime en la representación.
	LegendBancarization = "BANC"
)

const (
	LegendTextFreeTransfer = "TRANSFERENCIA GRATUITA DE UN BIEN Y/O SERVICIO PRESTADO GRATUITAMENTE"
	LegendTextDetraction   = "Operación sujeta a detracción"
	LegendTextIVAP         = "Leyenda: Operación sujeta a IVAP"
)

// =============================================================================
// Catálogo 53 - Cargos y descuentos
// =============================================================================

// DiscountClass clasificación de un descuento respecto de la base imponible.
type DiscountClass int

const (
	DiscountUnknown DiscountClass = iota
	DiscountAffectsBase
	DiscountNotAffectsBase
	DiscountAdvancePayment
)

// DiscountLevel indica si el código se usa a nivel de línea o de documento.
type DiscountLevel int

const (
	LevelLine DiscountLevel = iota
	LevelGlobal
)

// Códigos del Catálogo 53.
const (
	DiscountLineBase          = "00"
	DiscountLineNonBase       = "01"
	DiscountGlobalBase        = "02"
	DiscountGlobalNonBase     = "03"
	DiscountAdvanceTaxed      = "04"
	DiscountAdvanceExempt     = "05"
	DiscountAdvanceUnaffected = "06"
)

type discountEntry struct {
	class DiscountClass
	level DiscountLevel
}

var discountCodes = map[string]discountEntry{
	DiscountLineBase:          {DiscountAffectsBase, LevelLine},
	DiscountLineNonBase:       {DiscountNotAffectsBase, LevelLine},
	DiscountGlobalBase:        {DiscountAffectsBase, LevelGlobal},
	DiscountGlobalNonBase:     {DiscountNotAffectsBase, LevelGlobal},
	DiscountAdvanceTaxed:      {DiscountAdvancePayment, LevelGlobal},
	DiscountAdvanceExempt:     {DiscountAdvancePayment, LevelGlobal},
	DiscountAdvanceUnaffected: {DiscountAdvancePayment, LevelGlobal},
}

// ClassifyDiscount devuelve la clasificación del código y el nivel donde es válido.
// ok es false si el código no existe en el catálogo.
func ClassifyDiscount(code string) (DiscountClass, DiscountLevel, bool) {
	e, ok := discountCodes[code]
	if !ok {
		return DiscountUnknown, LevelLine, false
	}
	return e.class, e.level, true
}

// =============================================================================
// Catálogo 54 - Bienes y servicios sujetos a detracción
// =============================================================================

// DetractionEntry entrada del catálogo de detracciones.
type DetractionEntry struct {
	Code        string
	Description string
	Percentage  decimal.Decimal
}

var detractionCatalog = map[string]DetractionEntry{}

func addDetraction(code, description, pct string) {
	detractionCatalog[code] = DetractionEntry{Code: code, Description: description, Percentage: decimal.RequireFromString(pct)}
}

func init() {
	addDetraction("001", "Azúcar y melaza de caña", "10")
	addDetraction("003", "Alcohol etílico", "10")
	addDetraction("004", "Recursos hidrobiológicos", "4")
	addDetraction("005", "Maíz amarillo duro", "4")
	addDetraction("007", "Caña de azúcar", "10")
	addDetraction("008", "Madera", "4")
	addDetraction("009", "Arena y piedra", "10")
	addDetraction("010", "Residuos, subproductos, desechos, recortes y desperdicios", "15")
	addDetraction("011", "Bienes gravados con el IGV, o renuncia a la exoneración", "10")
	addDetraction("012", "Intermediación laboral y tercerización", "12")
	addDetraction("014", "Carnes y despojos comestibles", "4")
	addDetraction("016", "Aceite de pescado", "10")
	addDetraction("017", "Harina, polvo y pellets de pescado, crustáceos, moluscos y demás invertebrados acuáticos", "4")
	addDetraction("019", "Arrendamiento de bienes muebles", "10")
	addDetraction("020", "Mantenimiento y reparación de bienes muebles", "12")
	addDetraction("021", "Movimiento de carga", "10")
	addDetraction("022", "Otros servicios empresariales", "12")
	addDetraction("023", "Leche", "4")
	addDetraction("024", "Comisión mercantil", "10")
	addDetraction("025", "Fabricación de bienes por encargo", "10")
	addDetraction("026", "Servicio de transporte de personas", "10")
	addDetraction("027", "Servicio de transporte de carga", "4")
	addDetraction("030", "Contratos de construcción", "4")
	addDetraction("031", "Oro gravado con el IGV", "10")
	addDetraction("032", "Páprika y otros frutos de los géneros capsicum o pimienta", "10")
	addDetraction("034", "Minerales metálicos no auríferos", "10")
	addDetraction("035", "Bienes exonerados del IGV", "1.5")
	addDetraction("036", "Oro y demás minerales metálicos exonerados del IGV", "1.5")
	addDetraction("037", "Demás servicios gravados con el IGV", "12")
	addDetraction("039", "Minerales no metálicos", "10")
	addDetraction("040", "Bien inmueble gravado con IGV", "4")
	addDetraction("041", "Plomo", "15")
	addDetraction("099", "Ley 30737", "4")
}

// LookupDetraction busca un código (ya normalizado a 3 dígitos) en el Catálogo 54.
func LookupDetraction(code string) (DetractionEntry, bool) {
	e, ok := detractionCatalog[code]
	return e, ok
}

// DetractionEntries devuelve una copia del catálogo ordenada por código.
func DetractionEntries() []DetractionEntry {
	out := make([]DetractionEntry, 0, len(detractionCatalog))
	for _, e := range detractionCatalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// =============================================================================
// Catálogo 59 - Medios de pago
// =============================================================================

// PaymentMethod entrada del catálogo de medios de pago con los datos exigidos.
type PaymentMethod struct {
	Code                    string
	Name                    string
	Banking                 bool // medio de pago del sistema financiero (válido para bancarización)
	RequiresOperationNumber bool
	RequiresBank            bool
	RequiresDate            bool
	RequiresReference       bool // referencia obligatoria al declarar pagos múltiples
}

// DefaultDetractionPaymentMethod medio de pago usado para depositar la detracción.
const DefaultDetractionPaymentMethod = "001"

var paymentMethods = map[string]PaymentMethod{
	"001": {Code: "001", Name: "Depósito en cuenta", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"002": {Code: "002", Name: "Giro", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"003": {Code: "003", Name: "Transferencia de fondos", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"004": {Code: "004", Name: "Orden de pago", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"005": {Code: "005", Name: "Tarjeta de débito", Banking: true, RequiresOperationNumber: true, RequiresDate: true, RequiresReference: true},
	"006": {Code: "006", Name: "Tarjeta de crédito emitida en el país por una empresa del sistema financiero", Banking: true, RequiresOperationNumber: true, RequiresDate: true, RequiresReference: true},
	"007": {Code: "007", Name: "Cheques con la cláusula de NO NEGOCIABLE", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"008": {Code: "008", Name: "Efectivo, por operaciones en las que no existe obligación de utilizar medio de pago"},
	"009": {Code: "009", Name: "Efectivo, en los demás casos"},
	"010": {Code: "010", Name: "Medios de pago usados en comercio exterior", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresReference: true},
	"011": {Code: "011", Name: "Documentos emitidos por las EDPYMES y las cooperativas de ahorro y crédito", Banking: true, RequiresOperationNumber: true, RequiresDate: true, RequiresReference: true},
	"012": {Code: "012", Name: "Tarjeta de crédito emitida en el país o en el exterior por una empresa no perteneciente al sistema financiero", Banking: true, RequiresOperationNumber: true, RequiresDate: true, RequiresReference: true},
	"013": {Code: "013", Name: "Tarjetas de crédito emitidas en el exterior por empresas bancarias o financieras no domiciliadas", Banking: true, RequiresOperationNumber: true, RequiresDate: true, RequiresReference: true},
	"101": {Code: "101", Name: "Transferencias - Comercio exterior", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresDate: true, RequiresReference: true},
	"102": {Code: "102", Name: "Cheques bancarios - Comercio exterior", Banking: true, RequiresOperationNumber: true, RequiresBank: true, RequiresReference: true},
	"999": {Code: "999", Name: "Otros medios de pago"},
}

// LookupPaymentMethod busca un medio de pago del Catálogo 59.
func LookupPaymentMethod(code string) (PaymentMethod, bool) {
	m, ok := paymentMethods[code]
	return m, ok
}

// PaymentMethods devuelve una copia del catálogo ordenada por código.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, 0, len(paymentMethods))
	for _, m := range paymentMethods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// =============================================================================
// Catálogo 02 - Monedas
// =============================================================================

const (
	CurrencyPEN = "PEN"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

var currencyNames = map[string]string{
	CurrencyPEN: "SOLES",
	CurrencyUSD: "DÓLARES AMERICANOS",
	CurrencyEUR: "EUROS",
}

// IsSupportedCurrency indica si la moneda puede usarse en el comprobante.
func IsSupportedCurrency(code string) bool {
	_, ok := currencyNames[code]
	return ok
}

// CurrencyName nombre legal de la moneda para la leyenda; si no se conoce devuelve el código.
func CurrencyName(code string) string {
	if n, ok := currencyNames[code]; ok {
		return n
	}
	return code
}
