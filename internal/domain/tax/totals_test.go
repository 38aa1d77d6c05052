package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/bancarization"
	"github.com/jhoicas/facturacion-sunat/internal/domain/detraction"
	"github.com/jhoicas/facturacion-sunat/internal/domain/tax"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

func taxed(qty, value string) tax.LineItem {
	return tax.LineItem{Quantity: dec(qty), Price: tax.TaxExclusive(dec(value)), Affectation: sunat.AffectationTaxed}
}

func compute(t *testing.T, items []tax.LineItem, adj tax.GlobalAdjustments) tax.Totals {
	t.Helper()
	lines, err := newResolver().ResolveAll(items)
	require.NoError(t, err)
	totals, err := tax.NewAggregator().Aggregate(lines, adj)
	require.NoError(t, err)
	return totals
}

func assertInvariants(t *testing.T, tt tax.Totals) {
	t.Helper()
	assert.True(t, tt.Subtotal.Equal(tt.TaxableValueSum.Add(tt.TotalTaxes)), "subtotal = valor de venta + tributos")
	want := tt.Subtotal.Sub(tt.AdvancesTotal).Add(tt.Rounding).Sub(tt.NonBaseDiscount)
	assert.True(t, tt.Payable.Equal(want), "importe total: %s != %s", tt.Payable, want)
}

// ──────────────────────────────────────────────────────────────────────────────
// Acumulación por categoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_Categorias(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		taxed("1", "100"),
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("50")), Affectation: sunat.AffectationExempt},
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("30")), Affectation: sunat.AffectationUnaffected},
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("20")), Affectation: sunat.AffectationExport},
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("200")), Affectation: sunat.AffectationIVAP},
	}, tax.GlobalAdjustments{})

	assertDec(t, "100.00", totals.TaxedSales, "gravado")
	assertDec(t, "50.00", totals.ExemptSales, "exonerado")
	assertDec(t, "30.00", totals.UnaffectedSales, "inafecto")
	assertDec(t, "20.00", totals.ExportSales, "exportación")
	assertDec(t, "200.00", totals.IVAPBase, "base ivap")
	assertDec(t, "8.00", totals.IVAPAmount, "ivap")
	assertDec(t, "18.00", totals.IGV, "igv")
	assertDec(t, "400.00", totals.TaxableValueSum, "valor de venta")
	assertDec(t, "26.00", totals.TotalTaxes, "tributos")
	assertDec(t, "426.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_IVAPNoSeMezclaConIGV(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		{Quantity: dec("1"), Price: tax.TaxInclusive(dec("104")), Affectation: sunat.AffectationIVAP},
	}, tax.GlobalAdjustments{})
	assert.True(t, totals.TaxedSales.IsZero())
	assert.True(t, totals.IGV.IsZero())
	assertDec(t, "100.00", totals.IVAPBase, "base ivap")
	assertDec(t, "4.00", totals.IVAPAmount, "ivap")
}

func TestAggregate_RedondeaUnaSolaVez(t *testing.T) {
	// 3 x 0.018 = 0.054 -> 0.05; redondeando por línea serían 0.06
	totals := compute(t, []tax.LineItem{taxed("1", "0.10"), taxed("1", "0.10"), taxed("1", "0.10")}, tax.GlobalAdjustments{})
	assertDec(t, "0.30", totals.TaxedSales, "gravado")
	assertDec(t, "0.05", totals.IGV, "igv")
	assertDec(t, "0.35", totals.Payable, "importe total")
}

func TestAggregate_ISCYICBPER(t *testing.T) {
	item := taxed("2", "100")
	item.ISCScheme = sunat.ISCSchemeAdValorem
	item.ISCRate = dec("10")
	bag := taxed("4", "0.10")
	bag.ICBPERFactor = dec("0.50")

	totals := compute(t, []tax.LineItem{item, bag}, tax.GlobalAdjustments{})
	assertDec(t, "200.40", totals.TaxedSales, "gravado")
	assertDec(t, "20.00", totals.ISC, "isc")
	assertDec(t, "2.00", totals.ICBPER, "icbper")
	// (200 + 20) x 18% + 0.40 x 18%
	assertDec(t, "39.67", totals.IGV, "igv")
	assertInvariants(t, totals)
}

func TestAggregate_DescuentosDeLinea(t *testing.T) {
	item := taxed("1", "100")
	item.Discounts = []tax.Discount{{Code: "00", Amount: dec("10")}, {Code: "01", Amount: dec("5")}}
	totals := compute(t, []tax.LineItem{item}, tax.GlobalAdjustments{})
	assertDec(t, "15.00", totals.LineDiscounts, "descuentos de línea")
	assertDec(t, "15.00", totals.TotalDiscounts, "total descuentos")
	assertDec(t, "85.00", totals.TaxedSales, "gravado")
	assertDec(t, "16.20", totals.IGV, "igv")
	assertInvariants(t, totals)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes globales
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_DescuentoGlobalAfectaBase(t *testing.T) {
	totals := compute(t, []tax.LineItem{taxed("1", "1000")}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: "02", Amount: dec("100")}},
	})
	assertDec(t, "900.00", totals.TaxedSales, "gravado")
	assertDec(t, "900.00", totals.TaxableValueSum, "valor de venta")
	assertDec(t, "162.00", totals.IGV, "igv")
	assertDec(t, "100.00", totals.GlobalDiscount, "descuento global")
	assertDec(t, "1062.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_DescuentoGlobalUsaTasaDeLaLinea(t *testing.T) {
	line := taxed("1", "100")
	line.TaxRate = dec("10")
	totals := compute(t, []tax.LineItem{line}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: sunat.DiscountGlobalBase, Amount: dec("50")}},
	})
	assertDec(t, "50.00", totals.TaxedSales, "gravado")
	assertDec(t, "5.00", totals.IGV, "igv")
	assertDec(t, "55.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_DescuentoGlobalConTasasMixtas(t *testing.T) {
	reduced := taxed("1", "100")
	reduced.TaxRate = dec("10")
	totals := compute(t, []tax.LineItem{taxed("1", "100"), reduced}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: sunat.DiscountGlobalBase, Amount: dec("100")}},
	})
	assertDec(t, "100.00", totals.TaxedSales, "gravado")
	assertDec(t, "14.00", totals.IGV, "igv proporcional")
	assertDec(t, "114.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_AnticipoRecalculaIGVSinReducirValorDeVenta(t *testing.T) {
	totals := compute(t, []tax.LineItem{taxed("1", "1000")}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: "04", Amount: dec("200")}},
	})
	assertDec(t, "800.00", totals.TaxedSales, "gravado")
	assertDec(t, "144.00", totals.IGV, "igv recalculado")
	assertDec(t, "1000.00", totals.TaxableValueSum, "valor de venta")
	assertDec(t, "144.00", totals.TotalTaxes, "tributos")
	assertDec(t, "180.00", totals.TaxesBeforeAdvance, "tributos antes del anticipo")
	assertDec(t, "1180.00", totals.SubtotalBeforeAdvance, "subtotal antes del anticipo")
	assertDec(t, "1144.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_AnticiposYRedondeo(t *testing.T) {
	totals := compute(t, []tax.LineItem{taxed("1", "1000")}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: "04", Amount: dec("200")}},
		Advances:  []tax.Advance{{DocumentType: sunat.DocumentTypeFactura, Series: "F001", Number: "12", Amount: dec("236")}},
		Rounding:  dec("-0.10"),
	})
	assertDec(t, "236.00", totals.AdvancesTotal, "anticipos")
	assertDec(t, "907.90", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_DescuentoGlobalNoAfectaBase(t *testing.T) {
	totals := compute(t, []tax.LineItem{taxed("1", "100")}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: "03", Amount: dec("10")}},
		Rounding:  dec("-0.20"),
	})
	assertDec(t, "18.00", totals.IGV, "igv")
	assertDec(t, "118.00", totals.Subtotal, "subtotal")
	assertDec(t, "10.00", totals.NonBaseDiscount, "descuento no base")
	assertDec(t, "107.80", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_AnticiposExoneradoEInafecto(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("300")), Affectation: sunat.AffectationExempt},
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("200")), Affectation: sunat.AffectationUnaffected},
	}, tax.GlobalAdjustments{
		Discounts: []tax.Discount{
			{Code: sunat.DiscountAdvanceExempt, Amount: dec("100")},
			{Code: sunat.DiscountAdvanceUnaffected, Amount: dec("50")},
		},
	})
	assertDec(t, "200.00", totals.ExemptSales, "exonerado")
	assertDec(t, "150.00", totals.UnaffectedSales, "inafecto")
	assertDec(t, "500.00", totals.TaxableValueSum, "valor de venta")
	assert.True(t, totals.IGV.IsZero())
	assertInvariants(t, totals)
}

func TestAggregate_AjustesInvalidos(t *testing.T) {
	lines, err := newResolver().ResolveAll([]tax.LineItem{taxed("1", "100")})
	require.NoError(t, err)

	_, err = tax.NewAggregator().Aggregate(lines, tax.GlobalAdjustments{
		Discounts: []tax.Discount{
			{Code: "00", Amount: dec("1")},
			{Code: "88", Amount: dec("1")},
			{Code: "02", Amount: dec("150")},
		},
		Advances: []tax.Advance{{Amount: dec("-1")}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, tax.ErrInvalidAdjustment)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, domain.Violations(err), 4)
}

func TestAggregate_ImporteNegativo(t *testing.T) {
	lines, err := newResolver().ResolveAll([]tax.LineItem{taxed("1", "10")})
	require.NoError(t, err)
	_, err = tax.NewAggregator().Aggregate(lines, tax.GlobalAdjustments{
		Discounts: []tax.Discount{{Code: "03", Amount: dec("50")}},
	})
	assert.ErrorIs(t, err, tax.ErrInvalidAdjustment)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones gratuitas y documentos vacíos
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_DocumentoSoloGratuito(t *testing.T) {
	totals := compute(t, []tax.LineItem{{
		Quantity:       dec("2"),
		Affectation:    sunat.AffectationTaxedFree11,
		ReferenceValue: dec("50"),
		ICBPERFactor:   dec("0.50"),
	}}, tax.GlobalAdjustments{})

	assert.True(t, totals.IsPurelyFree())
	assertDec(t, "100.00", totals.FreeSales, "gratuito")
	assertDec(t, "18.00", totals.FreeIGV, "igv gratuito")
	assertDec(t, "1.00", totals.ICBPER, "icbper")
	assert.True(t, totals.IGV.IsZero())
	assert.True(t, totals.TotalTaxes.IsZero())
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Payable.IsZero())
}

func TestAggregate_GratuitoMixto(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		taxed("1", "100"),
		{Quantity: dec("1"), Affectation: sunat.AffectationTaxedFree13, ReferenceValue: dec("10")},
		{Quantity: dec("1"), Affectation: sunat.AffectationUnaffectedFr33, ReferenceValue: dec("5")},
	}, tax.GlobalAdjustments{})
	assertDec(t, "15.00", totals.FreeSales, "gratuito")
	assertDec(t, "1.80", totals.FreeIGV, "igv gratuito")
	assertDec(t, "18.00", totals.IGV, "igv")
	assertDec(t, "100.00", totals.TaxableValueSum, "valor de venta")
	assertDec(t, "118.00", totals.Payable, "importe total")
	assertInvariants(t, totals)
}

func TestAggregate_DocumentoVacio(t *testing.T) {
	totals := compute(t, nil, tax.GlobalAdjustments{})
	assert.True(t, totals.Payable.IsZero())
	assert.False(t, totals.IsPurelyFree())
	assertInvariants(t, totals)
}

// ──────────────────────────────────────────────────────────────────────────────
// Leyendas
// ──────────────────────────────────────────────────────────────────────────────

func TestComposeLegends(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		taxed("1", "100"),
		{Quantity: dec("1"), Affectation: sunat.AffectationTaxedFree13, ReferenceValue: dec("10")},
	}, tax.GlobalAdjustments{})

	det := &detraction.Result{Code: "037", Percentage: dec("12"), Amount: decimal.Zero}
	warning := bancarization.LegalWarning
	banc := &bancarization.Result{Applies: true, Warning: &warning}

	legends := tax.ComposeLegends(totals, sunat.CurrencyPEN, det, banc)
	require.Len(t, legends, 4)
	assert.Equal(t, tax.Legend{Code: "1000", Value: "CIENTO DIECIOCHO CON 00/100 SOLES"}, legends[0])
	assert.Equal(t, sunat.LegendFreeTransfer, legends[1].Code)
	assert.Equal(t, sunat.LegendDetraction, legends[2].Code)
	assert.Equal(t, sunat.LegendBancarization, legends[3].Code)
	assert.Equal(t, bancarization.LegalWarning, legends[3].Value)
}

func TestComposeLegends_IVAP(t *testing.T) {
	totals := compute(t, []tax.LineItem{
		{Quantity: dec("1"), Price: tax.TaxExclusive(dec("100")), Affectation: sunat.AffectationIVAP},
	}, tax.GlobalAdjustments{})
	legends := tax.ComposeLegends(totals, sunat.CurrencyUSD, nil, nil)
	require.Len(t, legends, 2)
	assert.Equal(t, "CIENTO CUATRO CON 00/100 DÓLARES AMERICANOS", legends[0].Value)
	assert.Equal(t, sunat.LegendIVAP, legends[1].Code)
}
