package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// ValidationError agrupa todas las infracciones encontradas en una validación.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError,
// y errors.Is(err, Kind) cuando Kind está definido.
type ValidationError struct {
	Kind       error
	Violations []string
}

// NewValidationError crea un acumulador de infracciones para el error de dominio kind.
func NewValidationError(kind error) *ValidationError {
	return &ValidationError{Kind: kind}
}

func (e *ValidationError) Error() string {
	msg := strings.Join(e.Violations, "; ")
	if e.Kind == nil {
		return msg
	}
	return e.Kind.Error() + ": " + msg
}

// Is permite comparar contra ErrInvalidInput y contra Kind.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput || (e.Kind != nil && target == e.Kind)
}

// Add registra una infracción.
func (e *ValidationError) Add(msg string) { e.Violations = append(e.Violations, msg) }

// OrNil devuelve nil si no hay infracciones.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Violations) == 0 {
		return nil
	}
	return e
}

// Violations extrae la lista de infracciones de cualquier error (incluidos errors.Join).
func Violations(err error) []string {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, inner := range j.Unwrap() {
			out = append(out, Violations(inner)...)
		}
		return out
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return append([]string(nil), ve.Violations...)
	}
	return []string{err.Error()}
}
