package billing_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/facturacion-sunat/internal/application/billing"
	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/bancarization"
	"github.com/jhoicas/facturacion-sunat/internal/domain/detraction"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/payment"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.companies[id], nil
}

type fakeDocumentRepo struct {
	docs     map[string]*entity.Document
	lines    map[string][]*entity.DocumentLine
	legends  map[string][]*entity.DocumentLegend
	payments map[string][]*entity.DocumentPayment
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:     map[string]*entity.Document{},
		lines:    map[string][]*entity.DocumentLine{},
		legends:  map[string][]*entity.DocumentLegend{},
		payments: map[string][]*entity.DocumentPayment{},
	}
}

func (r *fakeDocumentRepo) Create(doc *entity.Document) error { r.docs[doc.ID] = doc; return nil }
func (r *fakeDocumentRepo) CreateLine(l *entity.DocumentLine) error {
	r.lines[l.DocumentID] = append(r.lines[l.DocumentID], l)
	return nil
}
func (r *fakeDocumentRepo) CreateLegend(l *entity.DocumentLegend) error {
	r.legends[l.DocumentID] = append(r.legends[l.DocumentID], l)
	return nil
}
func (r *fakeDocumentRepo) CreatePayment(p *entity.DocumentPayment) error {
	r.payments[p.DocumentID] = append(r.payments[p.DocumentID], p)
	return nil
}
func (r *fakeDocumentRepo) GetByID(id string) (*entity.Document, error) { return r.docs[id], nil }
func (r *fakeDocumentRepo) GetLines(id string) ([]*entity.DocumentLine, error) {
	return r.lines[id], nil
}
func (r *fakeDocumentRepo) GetLegends(id string) ([]*entity.DocumentLegend, error) {
	return r.legends[id], nil
}
func (r *fakeDocumentRepo) GetPayments(id string) ([]*entity.DocumentPayment, error) {
	return r.payments[id], nil
}
func (r *fakeDocumentRepo) ExistsNumber(companyID, documentType, series, number string) (bool, error) {
	for _, d := range r.docs {
		if d.CompanyID == companyID && d.DocumentType == documentType && d.Series == series && d.Number == number {
			return true, nil
		}
	}
	return false, nil
}
func (r *fakeDocumentRepo) NextNumber(companyID, documentType, series string) (string, error) {
	max := 0
	for _, d := range r.docs {
		if d.CompanyID == companyID && d.DocumentType == documentType && d.Series == series {
			if n, _ := strconv.Atoi(d.Number); n > max {
				max = n
			}
		}
	}
	return strconv.Itoa(max + 1), nil
}

// fakeTxRunner no tiene rollback real: basta para verificar que todo pasa por la transacción.
type fakeTxRunner struct {
	repo  *fakeDocumentRepo
	calls int
}

func (r *fakeTxRunner) RunDocument(_ context.Context, fn func(repository.DocumentRepository) error) error {
	r.calls++
	return fn(r.repo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID   = "c-1"
	issuerRUC   = "20131312955"
	customerRUC = "20100070970"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s", want, got.String())
}

func setup() (*billing.CalculateUseCase, *billing.CreateDocumentUseCase, *fakeDocumentRepo, *fakeCompanyRepo, *fakeTxRunner) {
	companies := &fakeCompanyRepo{companies: map[string]*entity.Company{
		companyID: {ID: companyID, RUC: issuerRUC, Name: "Empresa SAC", DetractionAccount: "00-000-123456", Status: entity.CompanyStatusActive},
		"c-2":     {ID: "c-2", RUC: "20100070970", Name: "Suspendida SAC", Status: entity.CompanyStatusSuspended},
	}}
	docs := newFakeDocumentRepo()
	tx := &fakeTxRunner{repo: docs}
	calc := billing.NewCalculateUseCase(billing.DefaultEngineConfig(), companies, logger.Nop())
	create := billing.NewCreateDocumentUseCase(calc, tx, companies, docs, logger.Nop())
	return calc, create, docs, companies, tx
}

func factura(qty string) dto.CalculateDocumentRequest {
	return dto.CalculateDocumentRequest{
		DocumentType: "01",
		Series:       "F001",
		Currency:     "PEN",
		Customer:     dto.CustomerRequest{DocType: "6", DocNumber: customerRUC, Name: "Cliente SAC"},
		Items: []dto.DocumentItemRequest{{
			Description:     "Servicio de mantenimiento",
			Quantity:        dec(qty),
			UnitPrice:       ptr(dec("118")),
			AffectationCode: "10",
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cálculo
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_FacturaSimple(t *testing.T) {
	calc, _, _, _, _ := setup()

	res, err := calc.CalculateForCompany(companyID, factura("1"))
	require.NoError(t, err)

	require.Len(t, res.Items, 1)
	assertDec(t, "100", res.Items[0].UnitValue)
	assertDec(t, "118", res.Items[0].UnitPrice)
	assert.Equal(t, "NIU", res.Items[0].UnitCode)
	assertDec(t, "100", res.Totals.TaxedSales)
	assertDec(t, "18", res.Totals.IGV)
	assertDec(t, "118", res.Totals.Payable)
	assert.False(t, res.Bancarization.Applies)
	assert.Nil(t, res.Detraction)
	assert.Nil(t, res.Payments)
	require.Len(t, res.Legends, 1)
	assert.Equal(t, "1000", res.Legends[0].Code)
	assert.Equal(t, "CIENTO DIECIOCHO CON 00/100 SOLES", res.Legends[0].Value)
}

func TestCalculate_DetraccionYBancarizacion(t *testing.T) {
	calc, _, _, _, _ := setup()
	in := factura("20")
	in.Detraction = &dto.DetractionRequest{Code: "37"}

	res, err := calc.CalculateForCompany(companyID, in)
	require.NoError(t, err)

	assertDec(t, "2360", res.Totals.Payable)
	require.NotNil(t, res.Detraction)
	assert.Equal(t, "037", res.Detraction.Code)
	assertDec(t, "12", res.Detraction.Percentage)
	assertDec(t, "283.20", res.Detraction.Amount)
	assert.Equal(t, "00-000-123456", res.Detraction.BankAccount, "cuenta por defecto de la empresa")
	assert.Equal(t, "001", res.Detraction.PaymentMethodCode)
	assert.NotEmpty(t, res.Detraction.Description)

	assert.True(t, res.Bancarization.Applies)
	assert.False(t, res.Bancarization.Validated)
	require.NotNil(t, res.Bancarization.Warning)

	codes := make([]string, 0, len(res.Legends))
	for _, l := range res.Legends {
		codes = append(codes, l.Code)
	}
	assert.Equal(t, []string{"1000", "2006", "BANC"}, codes)
}

func TestCalculate_CodigoDetraccionDesconocido(t *testing.T) {
	calc, _, _, _, _ := setup()
	in := factura("1")
	in.Detraction = &dto.DetractionRequest{Code: "998"}

	_, err := calc.CalculateForCompany(companyID, in)
	assert.ErrorIs(t, err, detraction.ErrCatalogCodeNotFound)
}

func TestCalculate_BancarizacionYPagosSeReportanJuntos(t *testing.T) {
	calc, _, _, _, _ := setup()
	in := factura("20")
	in.PaymentMedia = &dto.PaymentMediaRequest{Code: "001"}
	in.Payments = []dto.PaymentRequest{{TypeCode: "009", Amount: dec("1000")}}

	_, err := calc.CalculateForCompany(companyID, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, bancarization.ErrMissingPaymentData)
	assert.ErrorIs(t, err, payment.ErrInvalidPayments)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	violations := domain.Violations(err)
	// operación, entidad y fecha del depósito + faltante de pagos
	assert.Len(t, violations, 4)
}

func TestCalculate_PagosCompletos(t *testing.T) {
	calc, _, _, _, _ := setup()
	in := factura("1")
	in.Payments = []dto.PaymentRequest{
		{TypeCode: "009", Amount: dec("100")},
		{TypeCode: "005", Amount: dec("18"), Reference: "VISA-0001"},
	}

	res, err := calc.CalculateForCompany(companyID, in)
	require.NoError(t, err)
	require.NotNil(t, res.Payments)
	assert.True(t, res.Payments.Valid)
	assertDec(t, "118", res.Payments.TotalDeclared)
}

func TestCalculate_RedondeoDeshabilitado(t *testing.T) {
	cfg := billing.DefaultEngineConfig()
	cfg.RoundingEnabled = false
	calc := billing.NewCalculateUseCase(cfg, nil, logger.Nop())
	in := factura("1")
	in.Rounding = dec("0.05")

	res, err := calc.CalculateForCompany("", in)
	require.NoError(t, err)
	assertDec(t, "0", res.Totals.Rounding)
	assertDec(t, "118", res.Totals.Payable)
}

func TestCalculate_EntradaInvalida(t *testing.T) {
	calc, _, _, _, _ := setup()
	in := factura("1")
	in.Items = nil
	in.Currency = "JPY"

	_, err := calc.CalculateForCompany(companyID, in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, domain.Violations(err), 2)
}

func TestCalculate_EmpresaInexistente(t *testing.T) {
	calc, _, _, _, _ := setup()
	_, err := calc.CalculateForCompany("no-existe", factura("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDocument_AsignaCorrelativoYPersiste(t *testing.T) {
	_, create, docs, _, tx := setup()
	in := factura("1")
	in.Payments = []dto.PaymentRequest{{TypeCode: "009", Amount: dec("118")}}

	first, err := create.CreateDocument(context.Background(), companyID, "u-1", in)
	require.NoError(t, err)
	second, err := create.CreateDocument(context.Background(), companyID, "u-1", in)
	require.NoError(t, err)

	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, "1", first.Number)
	assert.Equal(t, "F001-2", second.FullNumber)
	assert.Equal(t, entity.DocumentStatusDraft, first.Status)

	require.Contains(t, docs.docs, first.ID)
	assert.Len(t, docs.lines[first.ID], 1)
	assert.Len(t, docs.legends[first.ID], 1)
	assert.Len(t, docs.payments[first.ID], 1)
	assertDec(t, "118", docs.docs[first.ID].Totals.Payable)
}

func TestCreateDocument_CorrelativoDuplicado(t *testing.T) {
	_, create, _, _, _ := setup()
	in := factura("1")
	in.Number = "15"

	_, err := create.CreateDocument(context.Background(), companyID, "u-1", in)
	require.NoError(t, err)
	_, err = create.CreateDocument(context.Background(), companyID, "u-1", in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateDocument_ValidacionSUNAT(t *testing.T) {
	_, create, docs, _, _ := setup()
	in := factura("1")
	in.Customer = dto.CustomerRequest{DocType: "1", DocNumber: "12345678"}

	_, err := create.CreateDocument(context.Background(), companyID, "u-1", in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, docs.docs, "no se persiste un comprobante inválido")
}

func TestCreateDocument_EmpresaSuspendida(t *testing.T) {
	_, create, _, _, _ := setup()
	_, err := create.CreateDocument(context.Background(), "c-2", "u-1", factura("1"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = create.CreateDocument(context.Background(), "c-9", "u-1", factura("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetDocument(t *testing.T) {
	_, create, _, _, _ := setup()
	in := factura("20")
	in.PaymentMedia = &dto.PaymentMediaRequest{
		Code:            "001",
		OperationNumber: "OP-123",
		BankName:        "BCP",
		PaymentDate:     "2026-10-01",
	}
	created, err := create.CreateDocument(context.Background(), companyID, "u-1", in)
	require.NoError(t, err)

	got, err := create.GetDocument(companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.FullNumber, got.FullNumber)
	assertDec(t, "2360", got.Totals.Payable)
	assert.True(t, got.Bancarization.Applies)
	assert.True(t, got.Bancarization.Validated)
	assert.Nil(t, got.Bancarization.Warning)
	assert.Equal(t, "001", got.Bancarization.PaymentMethodCode)
	assert.Len(t, got.Items, 1)

	_, err = create.GetDocument("c-2", created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = create.GetDocument(companyID, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
