package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// los mensajes usan el nombre JSON del campo
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct aplica las etiquetas validate y devuelve un *domain.ValidationError
// con una infracción por campo.
func validateStruct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	verr := domain.NewValidationError(domain.ErrInvalidInput)
	for _, fe := range fieldErrs {
		verr.Add(fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: campo requerido", field)
	case "oneof":
		return fmt.Sprintf("%s: debe ser uno de [%s]", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s: debe tener longitud %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: máximo %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: mínimo %s", field, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s: solo dígitos", field)
	case "email":
		return fmt.Sprintf("%s: email inválido", field)
	case "datetime":
		return fmt.Sprintf("%s: fecha inválida, formato %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: no cumple la regla %s", field, fe.Tag())
	}
}
