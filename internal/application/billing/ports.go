package billing

import (
	"context"

	"github.com/jhoicas/facturacion-sunat/internal/domain/repository"
)

// DocumentTxRunner ejecuta una función dentro de una transacción con el repositorio de comprobantes.
// Si fn retorna error se hace rollback de cabecera, líneas, leyendas y pagos.
type DocumentTxRunner interface {
	RunDocument(ctx context.Context, fn func(docRepo repository.DocumentRepository) error) error
}
