package repository

import "github.com/jhoicas/facturacion-sunat/internal/domain/entity"

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(id string) (*entity.Company, error)
}
