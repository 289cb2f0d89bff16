package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	// emergencyContact -> emergency Contact, start_date -> start date
	var b strings.Builder
	for i, r := range s {
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

func describe(e validator.FieldError) string {
	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required", "required_if":
		return RequiredField(field).Message
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s cannot exceed %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, formatFieldName(e.Param()))
	default:
		return InvalidField(field).Message
	}
}

// FieldErrors flattens validator errors into json-field -> message.
func FieldErrors(err error) map[string]string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil
	}
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, seen := fields[e.Field()]; seen {
			continue
		}
		fields[e.Field()] = describe(e)
	}
	return fields
}

func MapValidationError(err error) error {
	if fields := FieldErrors(err); len(fields) > 0 {
		return Validation(fields)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
