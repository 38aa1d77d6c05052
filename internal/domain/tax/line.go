// Package tax calcula impuestos por línea (IGV, IVAP, ISC, ICBPER) y los totales
// del comprobante electrónico a partir de las líneas resueltas y los ajustes globales.
//
// Los cálculos intermedios usan decimal sin redondear; cada monto publicado se
// redondea a 2 decimales una sola vez.
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/pkg/money"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ErrInvalidLine la línea no puede resolverse.
var ErrInvalidLine = errors.New("línea de comprobante inválida")

var hundred = decimal.NewFromInt(100)

// Rates tasas nominales usadas cuando la línea no trae la suya.
type Rates struct {
	IGV  decimal.Decimal
	IVAP decimal.Decimal
}

// DefaultRates IGV 18% e IVAP 4%.
func DefaultRates() Rates {
	return Rates{IGV: decimal.NewFromInt(18), IVAP: decimal.NewFromInt(4)}
}

// PriceMode modo en que se informó el precio de la línea.
type PriceMode int

const (
	priceUnset PriceMode = iota
	// PriceTaxInclusive precio unitario con impuestos (venta minorista).
	PriceTaxInclusive
	// PriceTaxExclusive valor unitario sin impuestos (venta mayorista).
	PriceTaxExclusive
)

// PriceInput precio unitario de la línea: con impuestos o sin impuestos, nunca ambos.
type PriceInput struct {
	mode   PriceMode
	amount decimal.Decimal
}

// TaxInclusive construye un precio unitario que incluye impuestos.
func TaxInclusive(amount decimal.Decimal) PriceInput {
	return PriceInput{mode: PriceTaxInclusive, amount: amount}
}

// TaxExclusive construye un valor unitario sin impuestos.
func TaxExclusive(amount decimal.Decimal) PriceInput {
	return PriceInput{mode: PriceTaxExclusive, amount: amount}
}

// Mode indica si el monto incluye impuestos.
func (p PriceInput) Mode() PriceMode { return p.mode }

// Amount devuelve el monto tal como se declaró.
func (p PriceInput) Amount() decimal.Decimal { return p.amount }

// IsSet es false para el valor cero de PriceInput (línea sin precio).
func (p PriceInput) IsSet() bool { return p.mode != priceUnset }

// Discount descuento de línea o global identificado por su código del Catálogo 53.
type Discount struct {
	Code   string
	Amount decimal.Decimal
}

// LineItem línea tal como llega del emisor.
type LineItem struct {
	Quantity    decimal.Decimal
	Price       PriceInput
	Affectation sunat.AffectationCode
	// TaxRate porcentaje nominal de IGV o IVAP; cero usa la tasa por defecto.
	TaxRate decimal.Decimal

	ISCScheme   string
	ISCRate     decimal.Decimal // porcentaje (01, 03) o monto fijo por unidad (02)
	PublicPrice decimal.Decimal // precio de venta al público sugerido (sistema 03)

	ICBPERFactor decimal.Decimal
	OtherTaxRate decimal.Decimal

	// ReferenceValue valor unitario referencial de operaciones gratuitas.
	ReferenceValue decimal.Decimal
	Discounts      []Discount
}

// amounts valores sin redondear que consume el agregador.
type amounts struct {
	gross       decimal.Decimal
	baseDisc    decimal.Decimal
	nonBaseDisc decimal.Decimal
	net         decimal.Decimal
	taxBase     decimal.Decimal
	isc         decimal.Decimal
	icbper      decimal.Decimal
	tax         decimal.Decimal
	other       decimal.Decimal
	free        decimal.Decimal
	freeTax     decimal.Decimal
}

// ResolvedLine línea anotada con sus montos derivados (redondeados a 2 decimales).
type ResolvedLine struct {
	Item LineItem
	Kind sunat.AffectationKind
	Free bool

	TaxRate   decimal.Decimal // tasa aplicada (IGV o IVAP); cero para exonerado/inafecto/exportación
	UnitValue decimal.Decimal // valor unitario sin impuestos
	UnitPrice decimal.Decimal // precio unitario con impuestos para la representación

	GrossValue       decimal.Decimal // cantidad x valor unitario, antes de descuentos
	BaseDiscounts    decimal.Decimal
	NonBaseDiscounts decimal.Decimal
	NetValue         decimal.Decimal // valor de venta de la línea
	TaxBase          decimal.Decimal // base imponible del IGV/IVAP (incluye ISC)

	ISC        decimal.Decimal
	ICBPER     decimal.Decimal
	IGV        decimal.Decimal // IGV o IVAP según la afectación
	OtherTaxes decimal.Decimal
	TotalTaxes decimal.Decimal

	FreeValue decimal.Decimal

	raw amounts
}

// Resolver resuelve líneas con las tasas por defecto configuradas.
type Resolver struct {
	rates Rates
}

// NewResolver construye el resolvedor.
func NewResolver(rates Rates) *Resolver {
	return &Resolver{rates: rates}
}

// ResolveAll resuelve todas las líneas y reporta las infracciones de todas ellas.
func (r *Resolver) ResolveAll(items []LineItem) ([]ResolvedLine, error) {
	out := make([]ResolvedLine, 0, len(items))
	verr := domain.NewValidationError(ErrInvalidLine)
	for i, item := range items {
		line, err := r.Resolve(item)
		if err != nil {
			for _, v := range domain.Violations(err) {
				verr.Add(fmt.Sprintf("línea %d: %s", i+1, v))
			}
			continue
		}
		out = append(out, line)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// Resolve determina modo de precio, valor unitario, descuentos, ISC, ICBPER e IGV/IVAP.
func (r *Resolver) Resolve(item LineItem) (ResolvedLine, error) {
	verr := domain.NewValidationError(ErrInvalidLine)
	kind := item.Affectation.Kind()
	if kind == sunat.KindUnknown {
		verr.Add(fmt.Sprintf("código de afectación %q desconocido", item.Affectation))
		return ResolvedLine{}, verr
	}
	if item.Quantity.IsNegative() {
		verr.Add("la cantidad no puede ser negativa")
	}
	if item.Price.IsSet() && item.Price.Amount().IsNegative() {
		verr.Add("el precio no puede ser negativo")
	}
	if err := verr.OrNil(); err != nil {
		return ResolvedLine{}, err
	}

	rate := r.rateFor(kind, item.TaxRate)
	if item.Affectation.IsFree() {
		return r.resolveFree(item, kind, rate)
	}
	return r.resolveOnerous(item, kind, rate)
}

func (r *Resolver) rateFor(kind sunat.AffectationKind, lineRate decimal.Decimal) decimal.Decimal {
	switch kind {
	case sunat.KindTaxed, sunat.KindFreeTaxed:
		if lineRate.IsPositive() {
			return lineRate
		}
		return r.rates.IGV
	case sunat.KindIVAP:
		if lineRate.IsPositive() {
			return lineRate
		}
		return r.rates.IVAP
	default:
		return decimal.Zero
	}
}

// unitValue valor unitario sin impuestos: el precio con impuestos se divide entre (1 + tasa/100).
func unitValue(p PriceInput, rate decimal.Decimal) decimal.Decimal {
	if p.Mode() == PriceTaxInclusive && rate.IsPositive() {
		return p.Amount().Div(decimal.NewFromInt(1).Add(rate.Div(hundred)))
	}
	return p.Amount()
}

func (r *Resolver) resolveOnerous(item LineItem, kind sunat.AffectationKind, rate decimal.Decimal) (ResolvedLine, error) {
	verr := domain.NewValidationError(ErrInvalidLine)
	if !item.Price.IsSet() {
		verr.Add("se requiere precio unitario o valor unitario")
		return ResolvedLine{}, verr
	}
	q := item.Quantity
	unit := unitValue(item.Price, rate)
	gross := q.Mul(unit)

	var baseDisc, nonBaseDisc decimal.Decimal
	for _, d := range item.Discounts {
		class, level, ok := sunat.ClassifyDiscount(d.Code)
		switch {
		case !ok:
			verr.Add(fmt.Sprintf("código de descuento %q desconocido", d.Code))
			continue
		case level != sunat.LevelLine:
			verr.Add(fmt.Sprintf("el código de descuento %q solo es válido a nivel global", d.Code))
			continue
		case d.Amount.IsNegative():
			verr.Add(fmt.Sprintf("el descuento %q no puede ser negativo", d.Code))
			continue
		}
		if class == sunat.DiscountAffectsBase {
			baseDisc = baseDisc.Add(d.Amount)
		} else {
			nonBaseDisc = nonBaseDisc.Add(d.Amount)
		}
	}

	base := gross.Sub(baseDisc)
	if base.IsNegative() {
		verr.Add("los descuentos que afectan la base exceden el valor de la línea")
	}
	net := base.Sub(nonBaseDisc)
	if net.IsNegative() {
		verr.Add("los descuentos exceden el valor de la línea")
	}

	isc, unitISC := decimal.Zero, decimal.Zero
	if item.ISCScheme != "" {
		switch item.ISCScheme {
		case sunat.ISCSchemeAdValorem:
			isc = money.Percent(base, item.ISCRate)
			unitISC = money.Percent(unit, item.ISCRate)
		case sunat.ISCSchemeFixedAmount:
			isc = q.Mul(item.ISCRate)
			unitISC = item.ISCRate
		case sunat.ISCSchemePublicPrice:
			if !item.PublicPrice.IsPositive() {
				verr.Add("el sistema de ISC 03 requiere precio de venta al público")
			}
			unitISC = money.Percent(item.PublicPrice, item.ISCRate)
			isc = q.Mul(unitISC)
		default:
			verr.Add(fmt.Sprintf("sistema de ISC %q desconocido", item.ISCScheme))
		}
	}
	if err := verr.OrNil(); err != nil {
		return ResolvedLine{}, err
	}

	taxBase := base
	tax := decimal.Zero
	if kind == sunat.KindTaxed || kind == sunat.KindIVAP {
		taxBase = base.Add(isc)
		tax = money.Percent(taxBase, rate)
	}
	icbper := q.Mul(item.ICBPERFactor)
	other := money.Percent(base, item.OtherTaxRate)

	// el precio de la representación incluye el ISC antes de aplicar la tasa
	unitPrice := unit
	if rate.IsPositive() {
		unitPrice = unit.Add(unitISC).Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
	}

	raw := amounts{
		gross:       gross,
		baseDisc:    baseDisc,
		nonBaseDisc: nonBaseDisc,
		net:         net,
		taxBase:     taxBase,
		isc:         isc,
		icbper:      icbper,
		tax:         tax,
		other:       other,
	}
	return annotate(item, kind, false, rate, unit, money.RoundHalfDown(unitPrice, 2), raw), nil
}

// resolveFree operaciones gratuitas: no aplican descuentos ni ISC; el valor sale del
// valor referencial y solo 11-16 calculan IGV (referencial) sobre ese valor.
func (r *Resolver) resolveFree(item LineItem, kind sunat.AffectationKind, rate decimal.Decimal) (ResolvedLine, error) {
	unit := item.ReferenceValue
	if !unit.IsPositive() {
		if !item.Price.IsSet() {
			verr := domain.NewValidationError(ErrInvalidLine)
			verr.Add("la operación gratuita requiere valor referencial")
			return ResolvedLine{}, verr
		}
		unit = unitValue(item.Price, rate)
	}
	q := item.Quantity
	free := q.Mul(unit)
	freeTax := decimal.Zero
	unitPrice := unit
	if kind == sunat.KindFreeTaxed {
		freeTax = money.Percent(free, rate)
		unitPrice = unit.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
	} else {
		rate = decimal.Zero
	}
	raw := amounts{
		gross:   free,
		net:     free,
		taxBase: free,
		icbper:  q.Mul(item.ICBPERFactor),
		free:    free,
		freeTax: freeTax,
	}
	return annotate(item, kind, true, rate, unit, money.RoundHalfDown(unitPrice, 2), raw), nil
}

func annotate(item LineItem, kind sunat.AffectationKind, free bool, rate, unit, unitPrice decimal.Decimal, raw amounts) ResolvedLine {
	line := ResolvedLine{
		Item:             item,
		Kind:             kind,
		Free:             free,
		TaxRate:          rate,
		UnitValue:        money.Round2(unit),
		UnitPrice:        unitPrice,
		GrossValue:       money.Round2(raw.gross),
		BaseDiscounts:    money.Round2(raw.baseDisc),
		NonBaseDiscounts: money.Round2(raw.nonBaseDisc),
		NetValue:         money.Round2(raw.net),
		TaxBase:          money.Round2(raw.taxBase),
		ISC:              money.Round2(raw.isc),
		ICBPER:           money.Round2(raw.icbper),
		OtherTaxes:       money.Round2(raw.other),
		FreeValue:        money.Round2(raw.free),
		raw:              raw,
	}
	if free {
		line.IGV = money.Round2(raw.freeTax)
		line.TotalTaxes = money.Round2(raw.freeTax.Add(raw.icbper))
	} else {
		line.IGV = money.Round2(raw.tax)
		line.TotalTaxes = money.Round2(raw.tax.Add(raw.isc).Add(raw.icbper).Add(raw.other))
	}
	return line
}
