package billing

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain/bancarization"
	"github.com/jhoicas/facturacion-sunat/internal/domain/detraction"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/payment"
	"github.com/jhoicas/facturacion-sunat/internal/domain/tax"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

const (
	dateLayout      = "2006-01-02"
	defaultUnitCode = "NIU"
)

// ──────────────────────────────────────────────────────────────────────────────
// Request -> dominio
// ──────────────────────────────────────────────────────────────────────────────

func lineItems(items []dto.DocumentItemRequest, icbperFactor decimal.Decimal) []tax.LineItem {
	return lo.Map(items, func(it dto.DocumentItemRequest, _ int) tax.LineItem {
		li := tax.LineItem{
			Quantity:       it.Quantity,
			Affectation:    sunat.AffectationCode(strings.TrimSpace(it.AffectationCode)),
			TaxRate:        lo.FromPtrOr(it.TaxRate, decimal.Zero),
			OtherTaxRate:   lo.FromPtrOr(it.OtherTaxRate, decimal.Zero),
			ReferenceValue: lo.FromPtrOr(it.ReferenceValue, decimal.Zero),
			Discounts:      discounts(it.Discounts),
		}
		// valor_unitario (mayorista) prevalece sobre precio_unitario
		switch {
		case it.UnitValue != nil:
			li.Price = tax.TaxExclusive(*it.UnitValue)
		case it.UnitPrice != nil:
			li.Price = tax.TaxInclusive(*it.UnitPrice)
		}
		if it.ISC != nil {
			li.ISCScheme = it.ISC.Scheme
			li.ISCRate = it.ISC.Rate
			li.PublicPrice = lo.FromPtrOr(it.ISC.PublicPrice, decimal.Zero)
		}
		if it.PlasticBag {
			li.ICBPERFactor = icbperFactor
		}
		return li
	})
}

func discounts(in []dto.DiscountRequest) []tax.Discount {
	return lo.Map(in, func(d dto.DiscountRequest, _ int) tax.Discount {
		return tax.Discount{Code: strings.TrimSpace(d.Code), Amount: d.Amount}
	})
}

func globalAdjustments(in *dto.CalculateDocumentRequest, roundingEnabled bool) tax.GlobalAdjustments {
	adj := tax.GlobalAdjustments{
		Discounts: discounts(in.Discounts),
		Advances: lo.Map(in.Advances, func(a dto.AdvanceRequest, _ int) tax.Advance {
			return tax.Advance{DocumentType: a.DocumentType, Series: a.Series, Number: a.Number, Amount: a.Amount}
		}),
	}
	if roundingEnabled {
		adj.Rounding = in.Rounding
	}
	return adj
}

func paymentData(in *dto.PaymentMediaRequest) *bancarization.PaymentData {
	if in == nil {
		return nil
	}
	data := &bancarization.PaymentData{
		MethodCode:      in.Code,
		OperationNumber: in.OperationNumber,
		BankName:        in.BankName,
	}
	if d, err := time.Parse(dateLayout, in.PaymentDate); err == nil {
		data.PaymentDate = d
	}
	return data
}

func paymentEntries(in []dto.PaymentRequest) []payment.Entry {
	return lo.Map(in, func(p dto.PaymentRequest, _ int) payment.Entry {
		return payment.Entry{TypeCode: p.TypeCode, Amount: p.Amount, Reference: p.Reference}
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Cálculo -> entidades
// ──────────────────────────────────────────────────────────────────────────────

func documentTotals(t tax.Totals) entity.DocumentTotals {
	return entity.DocumentTotals{
		TaxedSales:            t.TaxedSales,
		IVAPBase:              t.IVAPBase,
		IVAPAmount:            t.IVAPAmount,
		ExemptSales:           t.ExemptSales,
		UnaffectedSales:       t.UnaffectedSales,
		ExportSales:           t.ExportSales,
		FreeSales:             t.FreeSales,
		FreeIGV:               t.FreeIGV,
		IGV:                   t.IGV,
		ISC:                   t.ISC,
		ICBPER:                t.ICBPER,
		OtherTaxes:            t.OtherTaxes,
		TotalTaxes:            t.TotalTaxes,
		TaxableValueSum:       t.TaxableValueSum,
		Subtotal:              t.Subtotal,
		LineDiscounts:         t.LineDiscounts,
		TotalDiscounts:        t.TotalDiscounts,
		GlobalDiscount:        t.GlobalDiscount,
		NonBaseDiscount:       t.NonBaseDiscount,
		AdvancesTotal:         t.AdvancesTotal,
		Rounding:              t.Rounding,
		Payable:               t.Payable,
		TaxesBeforeAdvance:    t.TaxesBeforeAdvance,
		SubtotalBeforeAdvance: t.SubtotalBeforeAdvance,
	}
}

func documentLines(documentID string, items []dto.DocumentItemRequest, resolved []tax.ResolvedLine) []*entity.DocumentLine {
	return lo.Map(resolved, func(l tax.ResolvedLine, i int) *entity.DocumentLine {
		it := items[i]
		return &entity.DocumentLine{
			DocumentID:      documentID,
			LineNumber:      i + 1,
			Description:     it.Description,
			UnitCode:        lo.Ternary(it.UnitCode == "", defaultUnitCode, it.UnitCode),
			Quantity:        l.Item.Quantity,
			AffectationCode: string(l.Item.Affectation),
			UnitValue:       l.UnitValue,
			UnitPrice:       l.UnitPrice,
			Discounts:       l.BaseDiscounts.Add(l.NonBaseDiscounts),
			NetValue:        l.NetValue,
			TaxBase:         l.TaxBase,
			IGV:             l.IGV,
			ISC:             l.ISC,
			ICBPER:          l.ICBPER,
			TotalTaxes:      l.TotalTaxes,
			FreeValue:       l.FreeValue,
		}
	})
}

func documentLegends(documentID string, legends []tax.Legend) []*entity.DocumentLegend {
	return lo.Map(legends, func(l tax.Legend, _ int) *entity.DocumentLegend {
		return &entity.DocumentLegend{DocumentID: documentID, Code: l.Code, Value: l.Value}
	})
}

func documentPayments(documentID string, in []dto.PaymentRequest) []*entity.DocumentPayment {
	return lo.Map(in, func(p dto.PaymentRequest, _ int) *entity.DocumentPayment {
		return &entity.DocumentPayment{DocumentID: documentID, TypeCode: p.TypeCode, Amount: p.Amount, Reference: p.Reference}
	})
}

func documentDetraction(r *detraction.Result) *entity.DocumentDetraction {
	if r == nil {
		return nil
	}
	return &entity.DocumentDetraction{
		Code:              r.Code,
		Percentage:        r.Percentage,
		Amount:            r.Amount,
		BankAccount:       r.BankAccount,
		PaymentMethodCode: r.PaymentMethodCode,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Entidades -> respuesta
// ──────────────────────────────────────────────────────────────────────────────

func totalsResponse(t entity.DocumentTotals) dto.TotalsResponse {
	return dto.TotalsResponse{
		TaxedSales:            t.TaxedSales,
		IVAPBase:              t.IVAPBase,
		IVAPAmount:            t.IVAPAmount,
		ExemptSales:           t.ExemptSales,
		UnaffectedSales:       t.UnaffectedSales,
		ExportSales:           t.ExportSales,
		FreeSales:             t.FreeSales,
		FreeIGV:               t.FreeIGV,
		IGV:                   t.IGV,
		ISC:                   t.ISC,
		ICBPER:                t.ICBPER,
		OtherTaxes:            t.OtherTaxes,
		TotalTaxes:            t.TotalTaxes,
		TaxableValueSum:       t.TaxableValueSum,
		Subtotal:              t.Subtotal,
		TaxesBeforeAdvance:    t.TaxesBeforeAdvance,
		SubtotalBeforeAdvance: t.SubtotalBeforeAdvance,
		LineDiscounts:         t.LineDiscounts,
		GlobalDiscount:        t.GlobalDiscount,
		NonBaseDiscount:       t.NonBaseDiscount,
		TotalDiscounts:        t.TotalDiscounts,
		AdvancesTotal:         t.AdvancesTotal,
		Rounding:              t.Rounding,
		Payable:               t.Payable,
	}
}

func lineResponses(lines []*entity.DocumentLine) []dto.LineResponse {
	return lo.Map(lines, func(l *entity.DocumentLine, _ int) dto.LineResponse {
		return dto.LineResponse{
			LineNumber:      l.LineNumber,
			Description:     l.Description,
			UnitCode:        l.UnitCode,
			Quantity:        l.Quantity,
			AffectationCode: l.AffectationCode,
			UnitValue:       l.UnitValue,
			UnitPrice:       l.UnitPrice,
			Discounts:       l.Discounts,
			NetValue:        l.NetValue,
			TaxBase:         l.TaxBase,
			IGV:             l.IGV,
			ISC:             l.ISC,
			ICBPER:          l.ICBPER,
			TotalTaxes:      l.TotalTaxes,
			FreeValue:       l.FreeValue,
		}
	})
}

func legendResponses(legends []*entity.DocumentLegend) []dto.LegendResponse {
	return lo.Map(legends, func(l *entity.DocumentLegend, _ int) dto.LegendResponse {
		return dto.LegendResponse{Code: l.Code, Value: l.Value}
	})
}

func detractionResponse(d *entity.DocumentDetraction) *dto.DetractionResponse {
	if d == nil {
		return nil
	}
	resp := &dto.DetractionResponse{
		Code:              d.Code,
		Percentage:        d.Percentage,
		Amount:            d.Amount,
		PaymentMethodCode: d.PaymentMethodCode,
		BankAccount:       d.BankAccount,
	}
	if e, err := detraction.Resolve(d.Code); err == nil {
		resp.Description = e.Description
	}
	return resp
}

func bancarizationResponse(r bancarization.Result) dto.BancarizationResponse {
	return dto.BancarizationResponse{
		Applies:           r.Applies,
		Threshold:         r.Threshold,
		PaymentMethodCode: r.PaymentMethodCode,
		Validated:         r.Validated,
		Warning:           r.Warning,
	}
}

// storedBancarization reconstruye la evaluación a partir de los campos persistidos.
func storedBancarization(doc *entity.Document) bancarization.Result {
	threshold, _ := bancarization.Threshold(doc.Currency)
	r := bancarization.Result{
		Applies:           doc.Bancarizable,
		Threshold:         threshold,
		PaymentMethodCode: doc.PaymentMethodCode,
		Validated:         doc.BancarizationValidated,
	}
	if r.Applies && !r.Validated {
		w := bancarization.LegalWarning
		r.Warning = &w
	}
	return r
}

func paymentsResponse(r *payment.Result) *dto.PaymentValidationResponse {
	if r == nil {
		return nil
	}
	return &dto.PaymentValidationResponse{Valid: r.Valid, Errors: r.Errors, TotalDeclared: r.TotalDeclared}
}

func customerResponse(doc *entity.Document) dto.CustomerRequest {
	return dto.CustomerRequest{DocType: doc.CustomerDocType, DocNumber: doc.CustomerDocNumber, Name: doc.CustomerName}
}
