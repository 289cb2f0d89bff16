package autherrors

import (
	"net/http"

	"leave-portal/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Invalid credentials",
		http.StatusUnauthorized,
	)

	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Email already registered",
		http.StatusConflict,
	)

	ErrRegistrationFailed = apperror.New(
		apperror.CodeServerError,
		"Registration failed",
		http.StatusBadGateway,
	)

	ErrEmptyToken = apperror.New(
		apperror.CodeServerError,
		"Login succeeded but no token was returned",
		http.StatusBadGateway,
	)
)
