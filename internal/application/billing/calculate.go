package billing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/bancarization"
	"github.com/jhoicas/facturacion-sunat/internal/domain/detraction"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/payment"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	"github.com/jhoicas/facturacion-sunat/internal/domain/tax"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
	"github.com/jhoicas/facturacion-sunat/pkg/money"
)

// EngineConfig parámetros tributarios del motor (vienen de config.SUNATConfig).
type EngineConfig struct {
	IGVRate                 decimal.Decimal
	IVAPRate                decimal.Decimal
	ICBPERFactor            decimal.Decimal
	DetractionPaymentMethod string
	RoundingEnabled         bool
}

// DefaultEngineConfig valores vigentes: IGV 18%, IVAP 4%, ICBPER S/ 0.50.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		IGVRate:                 decimal.NewFromInt(18),
		IVAPRate:                decimal.NewFromInt(4),
		ICBPERFactor:            decimal.RequireFromString("0.50"),
		DetractionPaymentMethod: "001",
		RoundingEnabled:         true,
	}
}

// Calculation resultado completo del motor para un comprobante.
type Calculation struct {
	Items         []dto.DocumentItemRequest
	Lines         []tax.ResolvedLine
	Totals        tax.Totals
	Legends       []tax.Legend
	Detraction    *detraction.Result
	Bancarization bancarization.Result
	Payments      *payment.Result
}

// CalculateUseCase ejecuta el motor de totales sin persistir.
type CalculateUseCase struct {
	resolver    *tax.Resolver
	aggregator  *tax.Aggregator
	cfg         EngineConfig
	companyRepo repository.CompanyRepository
	log         *logger.Logger
}

// NewCalculateUseCase construye el caso de uso. companyRepo puede ser nil si solo se usa Calculate.
func NewCalculateUseCase(cfg EngineConfig, companyRepo repository.CompanyRepository, log *logger.Logger) *CalculateUseCase {
	rates := tax.Rates{IGV: cfg.IGVRate, IVAP: cfg.IVAPRate}
	return &CalculateUseCase{
		resolver:    tax.NewResolver(rates),
		aggregator:  tax.NewAggregator(),
		cfg:         cfg,
		companyRepo: companyRepo,
		log:         log,
	}
}

// Calculate resuelve líneas, agrega totales, calcula detracción, evalúa bancarización,
// valida pagos múltiples y arma las leyendas.
//
// Los errores de catálogo (afectación, detracción) se devuelven de inmediato. Las
// infracciones de bancarización y de pagos se reportan juntas con errors.Join.
func (uc *CalculateUseCase) Calculate(in dto.CalculateDocumentRequest, company *entity.Company) (*Calculation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	lines, err := uc.resolver.ResolveAll(lineItems(in.Items, uc.cfg.ICBPERFactor))
	if err != nil {
		return nil, err
	}
	totals, err := uc.aggregator.Aggregate(lines, globalAdjustments(&in, uc.cfg.RoundingEnabled))
	if err != nil {
		return nil, err
	}

	calc := &Calculation{Items: in.Items, Lines: lines, Totals: totals}

	if in.Detraction != nil {
		defaultAccount := ""
		if company != nil {
			defaultAccount = company.DetractionAccount
		}
		det, err := detraction.Build(totals.Payable, detraction.Request{
			Code:               in.Detraction.Code,
			PercentageOverride: in.Detraction.Percentage,
			BankAccount:        in.Detraction.BankAccount,
			PaymentMethodCode:  in.Detraction.PaymentMethodCode,
		}, defaultAccount, uc.cfg.DetractionPaymentMethod)
		if err != nil {
			return nil, err
		}
		calc.Detraction = &det
	}

	banc, bancErr := bancarization.Evaluate(totals.Payable, in.Currency, paymentData(in.PaymentMedia))
	calc.Bancarization = banc

	var payErr error
	if len(in.Payments) > 0 {
		res := payment.Validate(paymentEntries(in.Payments), totals.Payable)
		calc.Payments = &res
		payErr = res.Err()
	}
	if err := errors.Join(bancErr, payErr); err != nil {
		return nil, err
	}

	calc.Legends = tax.ComposeLegends(totals, in.Currency, calc.Detraction, &calc.Bancarization)

	uc.log.Debug().
		Str("currency", in.Currency).
		Str("payable", money.Fixed2(totals.Payable)).
		Bool("bancarization", banc.Applies).
		Bool("detraction", calc.Detraction != nil).
		Int("lines", len(lines)).
		Msg("comprobante calculado")
	return calc, nil
}

// CalculateForCompany carga la empresa (para la cuenta de detracciones por defecto) y calcula.
func (uc *CalculateUseCase) CalculateForCompany(companyID string, in dto.CalculateDocumentRequest) (*dto.CalculationResponse, error) {
	var company *entity.Company
	if uc.companyRepo != nil && companyID != "" {
		c, err := uc.companyRepo.GetByID(companyID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, domain.ErrNotFound
		}
		company = c
	}
	calc, err := uc.Calculate(in, company)
	if err != nil {
		return nil, err
	}
	resp := calc.Response()
	return &resp, nil
}

// Response convierte el cálculo a la respuesta HTTP.
func (c *Calculation) Response() dto.CalculationResponse {
	return dto.CalculationResponse{
		Items:         lineResponses(documentLines("", c.Items, c.Lines)),
		Totals:        totalsResponse(documentTotals(c.Totals)),
		Legends:       legendResponses(documentLegends("", c.Legends)),
		Detraction:    detractionResponse(documentDetraction(c.Detraction)),
		Bancarization: bancarizationResponse(c.Bancarization),
		Payments:      paymentsResponse(c.Payments),
	}
}
