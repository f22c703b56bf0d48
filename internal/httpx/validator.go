package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("notblank", validateNotBlank)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateStruct returns one FieldError per failed constraint, or nil.
func ValidateStruct(s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Message: err.Error()}}
	}

	details := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		var message string
		switch fe.Tag() {
		case "required", "notblank":
			message = "Preenchimento obrigatório"
		case "email":
			message = "E-mail inválido"
		case "max":
			message = fmt.Sprintf("Tamanho máximo de %s caracteres", fe.Param())
		default:
			message = "Valor inválido"
		}
		details = append(details, FieldError{
			Field:   fe.Field(),
			Message: message,
		})
	}
	return details
}
