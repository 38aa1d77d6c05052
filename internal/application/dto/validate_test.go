package dto_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
)

func validRequest() dto.CalculateDocumentRequest {
	price := decimal.NewFromInt(118)
	return dto.CalculateDocumentRequest{
		DocumentType: "03",
		Series:       "B001",
		Currency:     "PEN",
		Items: []dto.DocumentItemRequest{{
			Description:     "Producto",
			Quantity:        decimal.NewFromInt(1),
			UnitPrice:       &price,
			AffectationCode: "10",
		}},
	}
}

func TestCalculateDocumentRequest_Valida(t *testing.T) {
	r := validRequest()
	assert.NoError(t, r.Validate())
}

func TestCalculateDocumentRequest_MensajesPorCampo(t *testing.T) {
	r := validRequest()
	r.DocumentType = "09"
	r.IssueDate = "19/10/2026"
	r.Items[0].AffectationCode = "X"
	r.Discounts = []dto.DiscountRequest{{Code: ""}}

	err := r.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	violations := domain.Violations(err)
	require.Len(t, violations, 4)
	assert.Contains(t, violations, "tipo_documento: debe ser uno de [01 03 07 08]")
	assert.Contains(t, violations, "fecha_emision: fecha inválida, formato 2006-01-02")
	assert.Contains(t, violations, "items[0].tipo_afectacion_igv: debe tener longitud 2")
	assert.Contains(t, violations, "descuentos_globales[0].codigo: campo requerido")
}

func TestLoginRequest_Validate(t *testing.T) {
	r := dto.LoginRequest{Email: "no-es-email", Password: ""}
	violations := domain.Violations(r.Validate())
	assert.ElementsMatch(t, []string{"email: email inválido", "password: campo requerido"}, violations)
}
