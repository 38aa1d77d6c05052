package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `
	id, company_id, document_type, series, number, issue_date, currency,
	customer_doc_type, customer_doc_number, customer_name,
	taxed_sales, ivap_base, ivap_amount, exempt_sales, unaffected_sales, export_sales,
	free_sales, free_igv, igv, isc, icbper, other_taxes, total_taxes,
	taxable_value_sum, subtotal, line_discounts, total_discounts, global_discount,
	non_base_discount, advances_total, rounding, payable,
	taxes_before_advance, subtotal_before_advance,
	detraction_code, detraction_percentage, detraction_amount, detraction_account, detraction_payment_method,
	bancarizable, bancarization_validated, payment_method_code,
	status, created_at, updated_at`

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste la cabecera con sus totales.
func (r *DocumentRepo) Create(doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	t := doc.Totals
	var det entity.DocumentDetraction
	if doc.Detraction != nil {
		det = *doc.Detraction
	}
	query := `INSERT INTO documents (` + documentColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
		$41, $42, $43, $44, $45)`
	_, err := r.q.Exec(context.Background(), query,
		doc.ID, doc.CompanyID, doc.DocumentType, doc.Series, doc.Number, doc.IssueDate, doc.Currency,
		nullIfEmpty(doc.CustomerDocType), nullIfEmpty(doc.CustomerDocNumber), nullIfEmpty(doc.CustomerName),
		t.TaxedSales, t.IVAPBase, t.IVAPAmount, t.ExemptSales, t.UnaffectedSales, t.ExportSales,
		t.FreeSales, t.FreeIGV, t.IGV, t.ISC, t.ICBPER, t.OtherTaxes, t.TotalTaxes,
		t.TaxableValueSum, t.Subtotal, t.LineDiscounts, t.TotalDiscounts, t.GlobalDiscount,
		t.NonBaseDiscount, t.AdvancesTotal, t.Rounding, t.Payable,
		t.TaxesBeforeAdvance, t.SubtotalBeforeAdvance,
		nullIfEmpty(det.Code), det.Percentage, det.Amount, nullIfEmpty(det.BankAccount), nullIfEmpty(det.PaymentMethodCode),
		doc.Bancarizable, doc.BancarizationValidated, nullIfEmpty(doc.PaymentMethodCode),
		doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s ya fue emitido", domain.ErrDuplicate, doc.FullNumber())
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// CreateLine persiste una línea resuelta.
func (r *DocumentRepo) CreateLine(line *entity.DocumentLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO document_lines (id, document_id, line_number, description, unit_code, quantity, affectation_code,
			unit_value, unit_price, discounts, net_value, tax_base, igv, isc, icbper, total_taxes, free_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.DocumentID, line.LineNumber, line.Description, line.UnitCode, line.Quantity, line.AffectationCode,
		line.UnitValue, line.UnitPrice, line.Discounts, line.NetValue, line.TaxBase,
		line.IGV, line.ISC, line.ICBPER, line.TotalTaxes, line.FreeValue,
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

// CreateLegend persiste una leyenda del Catálogo 52.
func (r *DocumentRepo) CreateLegend(legend *entity.DocumentLegend) error {
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO document_legends (document_id, code, value) VALUES ($1, $2, $3)`,
		legend.DocumentID, legend.Code, legend.Value,
	)
	if err != nil {
		return fmt.Errorf("insert document legend: %w", err)
	}
	return nil
}

// CreatePayment persiste un pago declarado.
func (r *DocumentRepo) CreatePayment(p *entity.DocumentPayment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	_, err := r.q.Exec(context.Background(),
		`INSERT INTO document_payments (id, document_id, type_code, amount, reference) VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.DocumentID, p.TypeCode, p.Amount, nullIfEmpty(p.Reference),
	)
	if err != nil {
		return fmt.Errorf("insert document payment: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera por ID. Devuelve nil, nil si no existe.
func (r *DocumentRepo) GetByID(id string) (*entity.Document, error) {
	var doc entity.Document
	t := &doc.Totals
	var det entity.DocumentDetraction
	var customerDocType, customerDocNumber, customerName *string
	var detCode, detAccount, detMethod, paymentMethod *string
	err := r.q.QueryRow(context.Background(), `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id).Scan(
		&doc.ID, &doc.CompanyID, &doc.DocumentType, &doc.Series, &doc.Number, &doc.IssueDate, &doc.Currency,
		&customerDocType, &customerDocNumber, &customerName,
		&t.TaxedSales, &t.IVAPBase, &t.IVAPAmount, &t.ExemptSales, &t.UnaffectedSales, &t.ExportSales,
		&t.FreeSales, &t.FreeIGV, &t.IGV, &t.ISC, &t.ICBPER, &t.OtherTaxes, &t.TotalTaxes,
		&t.TaxableValueSum, &t.Subtotal, &t.LineDiscounts, &t.TotalDiscounts, &t.GlobalDiscount,
		&t.NonBaseDiscount, &t.AdvancesTotal, &t.Rounding, &t.Payable,
		&t.TaxesBeforeAdvance, &t.SubtotalBeforeAdvance,
		&detCode, &det.Percentage, &det.Amount, &detAccount, &detMethod,
		&doc.Bancarizable, &doc.BancarizationValidated, &paymentMethod,
		&doc.Status, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.CustomerDocType = derefString(customerDocType)
	doc.CustomerDocNumber = derefString(customerDocNumber)
	doc.CustomerName = derefString(customerName)
	doc.PaymentMethodCode = derefString(paymentMethod)
	if detCode != nil {
		det.Code = *detCode
		det.BankAccount = derefString(detAccount)
		det.PaymentMethodCode = derefString(detMethod)
		doc.Detraction = &det
	}
	return &doc, nil
}

// GetLines devuelve las líneas ordenadas por número.
func (r *DocumentRepo) GetLines(documentID string) ([]*entity.DocumentLine, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, document_id, line_number, description, unit_code, quantity, affectation_code,
		       unit_value, unit_price, discounts, net_value, tax_base, igv, isc, icbper, total_taxes, free_value
		FROM document_lines WHERE document_id = $1 ORDER BY line_number`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()

	var list []*entity.DocumentLine
	for rows.Next() {
		var l entity.DocumentLine
		if err := rows.Scan(
			&l.ID, &l.DocumentID, &l.LineNumber, &l.Description, &l.UnitCode, &l.Quantity, &l.AffectationCode,
			&l.UnitValue, &l.UnitPrice, &l.Discounts, &l.NetValue, &l.TaxBase,
			&l.IGV, &l.ISC, &l.ICBPER, &l.TotalTaxes, &l.FreeValue,
		); err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetLegends devuelve las leyendas en el orden en que se registraron.
func (r *DocumentRepo) GetLegends(documentID string) ([]*entity.DocumentLegend, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT document_id, code, value FROM document_legends WHERE document_id = $1 ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document legends: %w", err)
	}
	defer rows.Close()

	var list []*entity.DocumentLegend
	for rows.Next() {
		var l entity.DocumentLegend
		if err := rows.Scan(&l.DocumentID, &l.Code, &l.Value); err != nil {
			return nil, fmt.Errorf("scan document legend: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetPayments devuelve los pagos declarados.
func (r *DocumentRepo) GetPayments(documentID string) ([]*entity.DocumentPayment, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT id, document_id, type_code, amount, reference FROM document_payments WHERE document_id = $1 ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document payments: %w", err)
	}
	defer rows.Close()

	var list []*entity.DocumentPayment
	for rows.Next() {
		var p entity.DocumentPayment
		var ref *string
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.TypeCode, &p.Amount, &ref); err != nil {
			return nil, fmt.Errorf("scan document payment: %w", err)
		}
		p.Reference = derefString(ref)
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ExistsNumber indica si la serie y correlativo ya fueron usados por la empresa.
func (r *DocumentRepo) ExistsNumber(companyID, documentType, series, number string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM documents
			 WHERE company_id    = $1
			   AND document_type = $2
			   AND series        = $3
			   AND number::bigint = $4
		)`
	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil {
		return false, fmt.Errorf("%w: correlativo %q", domain.ErrInvalidInput, number)
	}
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, companyID, documentType, series, n).Scan(&exists); err != nil {
		return false, fmt.Errorf("check document number: %w", err)
	}
	return exists, nil
}

// NextNumber siguiente correlativo libre de la serie. Toma un advisory lock de transacción
// sobre la serie, por lo que solo es seguro dentro de RunDocument.
func (r *DocumentRepo) NextNumber(companyID, documentType, series string) (string, error) {
	ctx := context.Background()
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2 || ':' || $3))`,
		companyID, documentType, series); err != nil {
		return "", fmt.Errorf("lock series %s: %w", series, err)
	}
	var next int64
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(MAX(number::bigint), 0) + 1
		FROM documents WHERE company_id = $1 AND document_type = $2 AND series = $3`,
		companyID, documentType, series,
	).Scan(&next)
	if err != nil {
		return "", fmt.Errorf("next document number: %w", err)
	}
	return strconv.FormatInt(next, 10), nil
}
