package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/pkg/money"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrInvalidAdjustment descuentos globales, anticipos o redondeo inválidos.
var ErrInvalidAdjustment = errors.New("ajustes globales inválidos")

// AdvanceIGVRate tasa con la que se recalcula el IGV cuando hay anticipos gravados.
var AdvanceIGVRate = decimal.NewFromInt(18)

// Advance anticipo previamente facturado que se aplica al documento.
type Advance struct {
	DocumentType string
	Series       string
	Number       string
	Amount       decimal.Decimal
}

// GlobalAdjustments ajustes a nivel de documento.
type GlobalAdjustments struct {
	Discounts []Discount
	Advances  []Advance
	Rounding  decimal.Decimal
}

// Totals totales del comprobante, todos redondeados a 2 decimales.
type Totals struct {
	TaxedSales      decimal.Decimal
	IVAPBase        decimal.Decimal
	IVAPAmount      decimal.Decimal
	ExemptSales     decimal.Decimal
	UnaffectedSales decimal.Decimal
	ExportSales     decimal.Decimal
	FreeSales       decimal.Decimal
	FreeIGV         decimal.Decimal // IGV referencial de operaciones gratuitas; no se suma al IGV

	IGV        decimal.Decimal
	ISC        decimal.Decimal
	ICBPER     decimal.Decimal
	OtherTaxes decimal.Decimal
	TotalTaxes decimal.Decimal

	TaxableValueSum decimal.Decimal // valor de venta: gravado + IVAP + exonerado + inafecto + exportación
	Subtotal        decimal.Decimal // valor de venta + tributos

	TaxesBeforeAdvance    decimal.Decimal
	SubtotalBeforeAdvance decimal.Decimal

	LineDiscounts   decimal.Decimal
	GlobalDiscount  decimal.Decimal // descuentos globales que afectan la base (02) más anticipos (04-06)
	NonBaseDiscount decimal.Decimal // descuentos globales que no afectan la base (03)
	TotalDiscounts  decimal.Decimal

	AdvancesTotal decimal.Decimal
	Rounding      decimal.Decimal
	Payable       decimal.Decimal
}

// HasFreeLines indica si el documento tiene transferencias gratuitas.
func (t Totals) HasFreeLines() bool { return t.FreeSales.IsPositive() }

// IsPurelyFree el documento solo contiene transferencias gratuitas.
func (t Totals) IsPurelyFree() bool {
	return t.TaxableValueSum.IsZero() && t.FreeSales.IsPositive()
}

// Aggregator suma las líneas resueltas y aplica los ajustes globales.
// No guarda tasas: el IGV de cada línea ya viene resuelto.
type Aggregator struct{}

// NewAggregator construye el agregador.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

type accumulator struct {
	taxed, ivapBase, exempt, unaffected, export, free decimal.Decimal
	igv, ivap, isc, icbper, other, freeIGV            decimal.Decimal
	lineDiscounts                                     decimal.Decimal
}

func (a *accumulator) add(l ResolvedLine) {
	r := l.raw
	a.icbper = a.icbper.Add(r.icbper)
	if l.Free {
		a.free = a.free.Add(r.free)
		a.freeIGV = a.freeIGV.Add(r.freeTax)
		return
	}
	switch l.Kind {
	case sunat.KindTaxed:
		a.taxed = a.taxed.Add(r.net)
		a.igv = a.igv.Add(r.tax)
	case sunat.KindIVAP:
		a.ivapBase = a.ivapBase.Add(r.net)
		a.ivap = a.ivap.Add(r.tax)
	case sunat.KindExempt:
		a.exempt = a.exempt.Add(r.net)
	case sunat.KindUnaffected:
		a.unaffected = a.unaffected.Add(r.net)
	case sunat.KindExport:
		a.export = a.export.Add(r.net)
	}
	a.isc = a.isc.Add(r.isc)
	a.other = a.other.Add(r.other)
	a.lineDiscounts = a.lineDiscounts.Add(r.baseDisc).Add(r.nonBaseDisc)
}

func (a *accumulator) taxableSum() decimal.Decimal {
	return a.taxed.Add(a.ivapBase).Add(a.exempt).Add(a.unaffected).Add(a.export)
}

func (a *accumulator) taxes() decimal.Decimal {
	return a.igv.Add(a.ivap).Add(a.isc).Add(a.icbper).Add(a.other)
}

// Aggregate calcula los totales del documento.
//
// Orden de aplicación: descuentos globales que afectan la base (02) reducen
// gravado, valor de venta e IGV; luego los anticipos (04) reducen solo el gravado y
// el IGV se recalcula sobre el gravado resultante; 05 y 06 reducen exonerado e
// inafecto. Los descuentos 03 se restan únicamente del importe total.
func (ag *Aggregator) Aggregate(lines []ResolvedLine, adj GlobalAdjustments) (Totals, error) {
	var acc accumulator
	for _, l := range lines {
		acc.add(l)
	}
	taxable := acc.taxableSum()

	verr := domain.NewValidationError(ErrInvalidAdjustment)
	var baseGlobal, nonBaseGlobal, advTaxed, advExempt, advUnaffected decimal.Decimal
	for _, d := range adj.Discounts {
		class, level, ok := sunat.ClassifyDiscount(d.Code)
		switch {
		case !ok:
			verr.Add(fmt.Sprintf("código de descuento global %q desconocido", d.Code))
			continue
		case level != sunat.LevelGlobal:
			verr.Add(fmt.Sprintf("el código de descuento %q solo es válido a nivel de línea", d.Code))
			continue
		case d.Amount.IsNegative():
			verr.Add(fmt.Sprintf("el descuento global %q no puede ser negativo", d.Code))
			continue
		}
		switch class {
		case sunat.DiscountAffectsBase:
			baseGlobal = baseGlobal.Add(d.Amount)
		case sunat.DiscountNotAffectsBase:
			nonBaseGlobal = nonBaseGlobal.Add(d.Amount)
		case sunat.DiscountAdvancePayment:
			switch d.Code {
			case sunat.DiscountAdvanceExempt:
				advExempt = advExempt.Add(d.Amount)
			case sunat.DiscountAdvanceUnaffected:
				advUnaffected = advUnaffected.Add(d.Amount)
			default:
				advTaxed = advTaxed.Add(d.Amount)
			}
		}
	}

	advancesTotal := decimal.Zero
	for i, a := range adj.Advances {
		if a.Amount.IsNegative() {
			verr.Add(fmt.Sprintf("anticipo %d: el monto no puede ser negativo", i+1))
			continue
		}
		advancesTotal = advancesTotal.Add(a.Amount)
	}

	if baseGlobal.Add(advTaxed).GreaterThan(acc.taxed) {
		verr.Add(fmt.Sprintf("los descuentos globales (%s) exceden las operaciones gravadas (%s)",
			money.Fixed2(baseGlobal.Add(advTaxed)), money.Fixed2(acc.taxed)))
	}
	if advExempt.GreaterThan(acc.exempt) {
		verr.Add("los anticipos exonerados exceden las operaciones exoneradas")
	}
	if advUnaffected.GreaterThan(acc.unaffected) {
		verr.Add("los anticipos inafectos exceden las operaciones inafectas")
	}
	if err := verr.OrNil(); err != nil {
		return Totals{}, err
	}

	if baseGlobal.IsPositive() {
		taxable = taxable.Sub(baseGlobal)
		// el IGV se reduce a la tasa efectiva de las líneas gravadas
		if acc.taxed.IsPositive() {
			acc.igv = decimal.Max(decimal.Zero, acc.igv.Sub(baseGlobal.Mul(acc.igv).Div(acc.taxed)))
		}
		acc.taxed = acc.taxed.Sub(baseGlobal)
	}

	taxesBefore := money.Round2(acc.taxes())
	subtotalBefore := money.Round2(taxable).Add(taxesBefore)

	if advTaxed.IsPositive() {
		acc.taxed = acc.taxed.Sub(advTaxed)
		acc.igv = money.Percent(acc.taxed, AdvanceIGVRate)
	}
	acc.exempt = acc.exempt.Sub(advExempt)
	acc.unaffected = acc.unaffected.Sub(advUnaffected)

	t := Totals{
		TaxedSales:      money.Round2(acc.taxed),
		IVAPBase:        money.Round2(acc.ivapBase),
		IVAPAmount:      money.Round2(acc.ivap),
		ExemptSales:     money.Round2(acc.exempt),
		UnaffectedSales: money.Round2(acc.unaffected),
		ExportSales:     money.Round2(acc.export),
		FreeSales:       money.Round2(acc.free),
		FreeIGV:         money.Round2(acc.freeIGV),
		IGV:             money.Round2(acc.igv),
		ISC:             money.Round2(acc.isc),
		ICBPER:          money.Round2(acc.icbper),
		OtherTaxes:      money.Round2(acc.other),
		TaxableValueSum: money.Round2(taxable),
		LineDiscounts:   money.Round2(acc.lineDiscounts),
		GlobalDiscount:  money.Round2(baseGlobal.Add(advTaxed).Add(advExempt).Add(advUnaffected)),
		NonBaseDiscount: money.Round2(nonBaseGlobal),
		AdvancesTotal:   money.Round2(advancesTotal),
		Rounding:        money.Round2(adj.Rounding),

		TaxesBeforeAdvance:    taxesBefore,
		SubtotalBeforeAdvance: subtotalBefore,
	}
	t.TotalDiscounts = t.LineDiscounts.Add(t.GlobalDiscount).Add(t.NonBaseDiscount)
	t.TotalTaxes = t.IGV.Add(t.IVAPAmount).Add(t.ISC).Add(t.ICBPER).Add(t.OtherTaxes)
	t.Subtotal = t.TaxableValueSum.Add(t.TotalTaxes)
	t.Payable = t.Subtotal.Sub(t.AdvancesTotal).Add(t.Rounding).Sub(t.NonBaseDiscount)

	if t.IsPurelyFree() {
		t.TotalTaxes = decimal.Zero
		t.Subtotal = decimal.Zero
		t.Payable = decimal.Zero
		t.TaxesBeforeAdvance = decimal.Zero
		t.SubtotalBeforeAdvance = decimal.Zero
	}

	if t.Payable.IsNegative() {
		verr.Add(fmt.Sprintf("el importe total no puede ser negativo (%s)", money.Fixed2(t.Payable)))
		return Totals{}, verr
	}
	return t, nil
}
