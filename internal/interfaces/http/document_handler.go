package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
)

// DocumentHandler cálculo y registro de comprobantes (protegido).
type DocumentHandler struct {
	calc   *billing.CalculateUseCase
	create *billing.CreateDocumentUseCase
	log    *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(calc *billing.CalculateUseCase, create *billing.CreateDocumentUseCase, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{calc: calc, create: create, log: log}
}

// Calculate godoc
// @Summary      Calcular totales de un comprobante
// @Description  Resuelve líneas, totales, detracción, bancarización, pagos y leyendas sin persistir.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CalculateDocumentRequest  true  "comprobante"
// @Success      200   {object}  dto.CalculationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/documents/calculate [post]
func (h *DocumentHandler) Calculate(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingClaims(c)
	}
	var in dto.CalculateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.calc.CalculateForCompany(companyID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar comprobante
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CalculateDocumentRequest  true  "comprobante"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return missingClaims(c)
	}
	var in dto.CalculateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	doc, err := h.create.CreateDocument(c.Context(), companyID, userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetByID obtiene un comprobante registrado.
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return missingClaims(c)
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, err := h.create.GetDocument(companyID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(doc)
}
