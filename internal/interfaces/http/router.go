package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/facturacion-sunat/internal/application/auth"
	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CalculateUC *billing.CalculateUseCase
	DocumentUC  *billing.CreateDocumentUseCase
	CompanyRepo repository.CompanyRepository
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)

	// Catálogos (público)
	catalogHandler := NewCatalogHandler()
	catalogs := api.Group("/catalogs")
	catalogs.Get("/detractions", catalogHandler.Detractions)
	catalogs.Get("/payment-methods", catalogHandler.PaymentMethods)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Post("/users", RequireRole(entity.RoleAdmin), authHandler.RegisterUser)

	// Comprobantes: cualquier rol calcula y consulta; solo admin y emisor registran.
	documentHandler := NewDocumentHandler(deps.CalculateUC, deps.DocumentUC, deps.Log)
	documents := protected.Group("/documents")
	documents.Post("/calculate", documentHandler.Calculate)
	documents.Post("/",
		RequireRole(entity.RoleAdmin, entity.RoleIssuer),
		RequireActiveCompany(deps.CompanyRepo),
		documentHandler.Create,
	)
	documents.Get("/:id", documentHandler.GetByID)
}
