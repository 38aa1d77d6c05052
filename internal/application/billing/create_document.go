package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-sunat/internal/application/dto"
	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/payment"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
	domsunat "github.com/jhoicas/facturacion-sunat/internal/domain/sunat"
	"github.com/jhoicas/facturacion-sunat/pkg/logger"
	"github.com/jhoicas/facturacion-sunat/pkg/money"
)

// CreateDocumentUseCase calcula un comprobante y lo guarda (cabecera, líneas, leyendas y
// pagos) en una sola transacción. El envío a SUNAT lo hace otro servicio a partir del
// estado DRAFT.
type CreateDocumentUseCase struct {
	calculator  *CalculateUseCase
	txRunner    DocumentTxRunner
	companyRepo repository.CompanyRepository
	docRepo     repository.DocumentRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewCreateDocumentUseCase construye el caso de uso.
func NewCreateDocumentUseCase(
	calculator *CalculateUseCase,
	txRunner DocumentTxRunner,
	companyRepo repository.CompanyRepository,
	docRepo repository.DocumentRepository,
	log *logger.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{
		calculator:  calculator,
		txRunner:    txRunner,
		companyRepo: companyRepo,
		docRepo:     docRepo,
		log:         log,
		now:         time.Now,
	}
}

// CreateDocument valida la empresa, ejecuta el motor y persiste el resultado.
// Si el correlativo viene vacío se asigna el siguiente de la serie dentro de la transacción.
func (uc *CreateDocumentUseCase) CreateDocument(ctx context.Context, companyID, userID string, in dto.CalculateDocumentRequest) (*dto.DocumentResponse, error) {
	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !company.IsActive() {
		return nil, domain.ErrForbidden
	}

	calc, err := uc.calculator.Calculate(in, company)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	issueDate := now
	if in.IssueDate != "" {
		if d, err := time.Parse(dateLayout, in.IssueDate); err == nil {
			issueDate = d
		}
	}

	doc := &entity.Document{
		ID:                     uuid.New().String(),
		CompanyID:              companyID,
		DocumentType:           in.DocumentType,
		Series:                 in.Series,
		Number:                 in.Number,
		IssueDate:              issueDate,
		Currency:               in.Currency,
		CustomerDocType:        in.Customer.DocType,
		CustomerDocNumber:      in.Customer.DocNumber,
		CustomerName:           in.Customer.Name,
		Totals:                 documentTotals(calc.Totals),
		Detraction:             documentDetraction(calc.Detraction),
		Bancarizable:           calc.Bancarization.Applies,
		BancarizationValidated: calc.Bancarization.Validated,
		PaymentMethodCode:      calc.Bancarization.PaymentMethodCode,
		Status:                 entity.DocumentStatusDraft,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	lines := documentLines(doc.ID, calc.Items, calc.Lines)
	legends := documentLegends(doc.ID, calc.Legends)
	payments := documentPayments(doc.ID, in.Payments)

	err = uc.txRunner.RunDocument(ctx, func(docRepo repository.DocumentRepository) error {
		if doc.Number == "" {
			next, err := docRepo.NextNumber(companyID, doc.DocumentType, doc.Series)
			if err != nil {
				return err
			}
			doc.Number = next
		} else {
			exists, err := docRepo.ExistsNumber(companyID, doc.DocumentType, doc.Series, doc.Number)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s ya fue emitido", domain.ErrDuplicate, doc.FullNumber())
			}
		}
		if err := domsunat.ValidateDocument(company.RUC, doc, lines); err != nil {
			return err
		}

		if err := docRepo.Create(doc); err != nil {
			return err
		}
		for _, l := range lines {
			if err := docRepo.CreateLine(l); err != nil {
				return err
			}
		}
		for _, l := range legends {
			if err := docRepo.CreateLegend(l); err != nil {
				return err
			}
		}
		for _, p := range payments {
			if err := docRepo.CreatePayment(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("company_id", companyID).
		Str("user_id", userID).
		Str("number", doc.FullNumber()).
		Str("currency", doc.Currency).
		Str("payable", money.Fixed2(doc.Totals.Payable)).
		Bool("bancarization", doc.Bancarizable).
		Bool("detraction", doc.Detraction != nil).
		Msg("comprobante registrado")

	return documentResponse(doc, lines, legends, payments), nil
}

// GetDocument devuelve un comprobante persistido de la empresa.
func (uc *CreateDocumentUseCase) GetDocument(companyID, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.docRepo.GetLines(id)
	if err != nil {
		return nil, err
	}
	legends, err := uc.docRepo.GetLegends(id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.docRepo.GetPayments(id)
	if err != nil {
		return nil, err
	}
	return documentResponse(doc, lines, legends, payments), nil
}

func documentResponse(doc *entity.Document, lines []*entity.DocumentLine, legends []*entity.DocumentLegend, payments []*entity.DocumentPayment) *dto.DocumentResponse {
	var payRes *payment.Result
	if len(payments) > 0 {
		entries := make([]payment.Entry, 0, len(payments))
		for _, p := range payments {
			entries = append(entries, payment.Entry{TypeCode: p.TypeCode, Amount: p.Amount, Reference: p.Reference})
		}
		res := payment.Validate(entries, doc.Totals.Payable)
		payRes = &res
	}
	return &dto.DocumentResponse{
		ID:           doc.ID,
		CompanyID:    doc.CompanyID,
		DocumentType: doc.DocumentType,
		Series:       doc.Series,
		Number:       doc.Number,
		FullNumber:   doc.FullNumber(),
		IssueDate:    doc.IssueDate,
		Currency:     doc.Currency,
		Customer:     customerResponse(doc),
		Status:       doc.Status,
		CalculationResponse: dto.CalculationResponse{
			Items:         lineResponses(lines),
			Totals:        totalsResponse(doc.Totals),
			Legends:       legendResponses(legends),
			Detraction:    detractionResponse(doc.Detraction),
			Bancarization: bancarizationResponse(storedBancarization(doc)),
			Payments:      paymentsResponse(payRes),
		},
	}
}
