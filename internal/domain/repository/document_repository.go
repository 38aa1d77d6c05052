package repository

import "github.com/jhoicas/facturacion-sunat/internal/domain/entity"

// DocumentRepository puerto de persistencia del comprobante, sus líneas, leyendas y pagos.
type DocumentRepository interface {
	Create(doc *entity.Document) error
	CreateLine(line *entity.DocumentLine) error
	CreateLegend(legend *entity.DocumentLegend) error
	CreatePayment(payment *entity.DocumentPayment) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(id string) (*entity.Document, error)
	GetLines(documentID string) ([]*entity.DocumentLine, error)
	GetLegends(documentID string) ([]*entity.DocumentLegend, error)
	GetPayments(documentID string) ([]*entity.DocumentPayment, error)
	// ExistsNumber indica si la serie y correlativo ya fueron usados por la empresa.
	ExistsNumber(companyID, documentType, series, number string) (bool, error)
	// NextNumber siguiente correlativo libre de la serie.
	NextNumber(companyID, documentType, series string) (string, error)
}
