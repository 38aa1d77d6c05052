package entity

import "time"

// Estados de la empresa emisora.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
)

// Company empresa emisora de comprobantes (multiempresa).
type Company struct {
	ID      string
	Name    string
	RUC     string
	Address string
	Email   string
	// DetractionAccount cuenta de detracciones en el Banco de la Nación, usada por defecto.
	DetractionAccount string
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive indica si la empresa puede emitir.
func (c *Company) IsActive() bool { return c.Status == CompanyStatusActive }
