package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleIssuer   = "emisor"   // calcula y emite comprobantes
	RoleReadOnly = "consulta" // solo calcula y consulta
)

// User usuario de una empresa emisora.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

