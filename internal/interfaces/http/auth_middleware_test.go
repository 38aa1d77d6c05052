package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	apphttp "github.com/jhoicas/facturacion-sunat/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/facturacion-sunat/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "facturacion-sunat-test"
	testExpMin    = 60
)

// ──────────────────────────────────────────────────────────────────────────────
// Cadena de middlewares de comprobantes
// ──────────────────────────────────────────────────────────────────────────────

type brokenCompanies struct{}

func (brokenCompanies) GetByID(string) (*entity.Company, error) {
	return nil, errors.New("conexión rechazada")
}

// middlewareApp monta las mismas protecciones que el router con handlers que solo
// responden 200, para probar la autorización sin el motor de cálculo.
func middlewareApp(companies repository.CompanyRepository) *fiber.App {
	ok := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    apphttp.GetUserID(c),
			"company_id": apphttp.GetCompanyID(c),
			"role":       apphttp.GetRole(c),
		})
	}
	app := fiber.New()
	api := app.Group("/", apphttp.AuthMiddleware(testJWTSecret))
	api.Post("/calcular", ok)
	api.Post("/registrar",
		apphttp.RequireRole(entity.RoleAdmin, entity.RoleIssuer),
		apphttp.RequireActiveCompany(companies),
		ok,
	)
	api.Post("/usuarios", apphttp.RequireRole(entity.RoleAdmin), ok)
	return app
}

func activeCompanies() memCompanies {
	return memCompanies{
		testCompanyID:      {ID: testCompanyID, Status: entity.CompanyStatusActive},
		suspendedCompanyID: {ID: suspendedCompanyID, Status: entity.CompanyStatusSuspended},
	}
}

func bearer(t *testing.T, companyID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, companyID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func post(t *testing.T, app *fiber.App, path, authHeader string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Permisos por rol
// ──────────────────────────────────────────────────────────────────────────────

func TestPermisosPorRol(t *testing.T) {
	app := middlewareApp(activeCompanies())

	tests := []struct {
		role     string
		path     string
		status   int
		codeWant string
	}{
		{entity.RoleAdmin, "/calcular", http.StatusOK, ""},
		{entity.RoleAdmin, "/registrar", http.StatusOK, ""},
		{entity.RoleAdmin, "/usuarios", http.StatusOK, ""},
		{entity.RoleIssuer, "/calcular", http.StatusOK, ""},
		{entity.RoleIssuer, "/registrar", http.StatusOK, ""},
		{entity.RoleIssuer, "/usuarios", http.StatusForbidden, "FORBIDDEN"},
		{entity.RoleReadOnly, "/calcular", http.StatusOK, ""},
		{entity.RoleReadOnly, "/registrar", http.StatusForbidden, "FORBIDDEN"},
		{entity.RoleReadOnly, "/usuarios", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.role+tt.path, func(t *testing.T) {
			status, body := post(t, app, tt.path, bearer(t, testCompanyID, tt.role))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.codeWant, body.Code)
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	app := middlewareApp(activeCompanies())

	// calcular no exige rol; registrar sí
	status, _ := post(t, app, "/calcular", bearer(t, testCompanyID, ""))
	assert.Equal(t, http.StatusOK, status)

	status, body := post(t, app, "/registrar", bearer(t, testCompanyID, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresa activa
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireActiveCompany(t *testing.T) {
	app := middlewareApp(activeCompanies())

	tests := []struct {
		name      string
		companyID string
		status    int
		code      string
	}{
		{"activa", testCompanyID, http.StatusOK, ""},
		{"suspendida", suspendedCompanyID, http.StatusForbidden, "COMPANY_INACTIVE"},
		{"inexistente", "00000000-0000-0000-0000-0000000000ff", http.StatusForbidden, "COMPANY_INACTIVE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/registrar", bearer(t, tt.companyID, entity.RoleIssuer))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRequireActiveCompany_EmpresaSuspendidaSigueCalculando(t *testing.T) {
	app := middlewareApp(activeCompanies())
	status, _ := post(t, app, "/calcular", bearer(t, suspendedCompanyID, entity.RoleIssuer))
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireActiveCompany_FalloDeBase(t *testing.T) {
	app := middlewareApp(brokenCompanies{})
	status, body := post(t, app, "/registrar", bearer(t, testCompanyID, entity.RoleAdmin))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "COMPANY_CHECK_FAILED", body.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaClaims(t *testing.T) {
	app := middlewareApp(activeCompanies())
	req := httptest.NewRequest(http.MethodPost, "/calcular", nil)
	req.Header.Set("Authorization", bearer(t, testCompanyID, entity.RoleReadOnly))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, entity.RoleReadOnly, body["role"])
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := middlewareApp(activeCompanies())
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, entity.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)
	foreign, err := pkgjwt.Generate("otra-clave", testUserID, testCompanyID, entity.RoleAdmin, testIssuer, testExpMin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"otra clave", "Bearer " + foreign, "INVALID_TOKEN"},
		{"sin empresa", bearer(t, "", entity.RoleAdmin), "INVALID_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, app, "/calcular", tt.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// pkg/jwt
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_IdaYVuelta(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, entity.RoleIssuer, testIssuer, testExpMin)
	require.NoError(t, err)

	userID, companyID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
	assert.Equal(t, testCompanyID, companyID)
	assert.Equal(t, entity.RoleIssuer, role)
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", testUserID, testCompanyID, entity.RoleAdmin, testIssuer, testExpMin)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)
}
