package tax

import (
	"github.com/jhoicas/facturacion-sunat/internal/domain/bancarization"
	"github.com/jhoicas/facturacion-sunat/internal/domain/detraction"
	"github.com/jhoicas/facturacion-sunat/internal/domain/numwords"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// Legend leyenda del comprobante (Catálogo 52).
type Legend struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// ComposeLegends arma las leyendas en el orden en que se imprimen: monto en letras,
// transferencia gratuita, detracción, IVAP y bancarización.
func ComposeLegends(t Totals, currency string, det *detraction.Result, banc *bancarization.Result) []Legend {
	legends := []Legend{{
		Code:  sunat.LegendAmountInWords,
		Value: numwords.ToWords(t.Payable, currency),
	}}
	if t.HasFreeLines() {
		legends = append(legends, Legend{Code: sunat.LegendFreeTransfer, Value: sunat.LegendTextFreeTransfer})
	}
	if det != nil {
		legends = append(legends, Legend{Code: sunat.LegendDetraction, Value: sunat.LegendTextDetraction})
	}
	if t.IVAPBase.IsPositive() {
		legends = append(legends, Legend{Code: sunat.LegendIVAP, Value: sunat.LegendTextIVAP})
	}
	if banc != nil && banc.Warning != nil {
		legends = append(legends, Legend{Code: sunat.LegendBancarization, Value: *banc.Warning})
	}
	return legends
}
