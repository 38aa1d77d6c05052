package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// CatalogHandler expone los catálogos SUNAT que necesita el cliente para armar un comprobante.
type CatalogHandler struct{}

// NewCatalogHandler construye el handler.
func NewCatalogHandler() *CatalogHandler { return &CatalogHandler{} }

// Detractions godoc
// @Summary  Catálogo 54: bienes y servicios sujetos a detracción
// @Tags     catalogs
// @Produce  json
// @Success  200  {array}  dto.DetractionCatalogEntry
// @Router   /api/catalogs/detractions [get]
func (h *CatalogHandler) Detractions(c *fiber.Ctx) error {
	return c.JSON(lo.Map(sunat.DetractionEntries(), func(e sunat.DetractionEntry, _ int) dto.DetractionCatalogEntry {
		return dto.DetractionCatalogEntry{Code: e.Code, Description: e.Description, Percentage: e.Percentage}
	}))
}

// PaymentMethods godoc
// @Summary  Catálogo 59: medios de pago
// @Tags     catalogs
// @Produce  json
// @Success  200  {array}  dto.PaymentMethodEntry
// @Router   /api/catalogs/payment-methods [get]
func (h *CatalogHandler) PaymentMethods(c *fiber.Ctx) error {
	return c.JSON(lo.Map(sunat.PaymentMethods(), func(m sunat.PaymentMethod, _ int) dto.PaymentMethodEntry {
		return dto.PaymentMethodEntry{
			Code:                    m.Code,
			Name:                    m.Name,
			Banking:                 m.Banking,
			RequiresOperationNumber: m.RequiresOperationNumber,
			RequiresBank:            m.RequiresBank,
			RequiresDate:            m.RequiresDate,
			RequiresReference:       m.RequiresReference,
		}
	}))
}
