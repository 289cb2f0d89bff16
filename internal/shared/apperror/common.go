package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrServiceUnavailable = New(
		CodeServiceUnavailable,
		"Unable to reach the server",
		http.StatusServiceUnavailable,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("%s is required", field), http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("%s is invalid", field), http.StatusBadRequest)
}

// Validation builds a field-scoped INVALID_INPUT error.
func Validation(fields map[string]string) *AppError {
	return ErrInvalidInput.WithFields(fields)
}
