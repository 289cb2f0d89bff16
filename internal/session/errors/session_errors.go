package sessionerrors

import (
	"net/http"

	"leave-portal/internal/shared/apperror"
)

var (
	ErrNotAuthenticated = apperror.New(
		apperror.CodeUnauthorized,
		"please sign in to continue",
		http.StatusUnauthorized,
	)
	ErrSessionExpired = apperror.New(
		apperror.CodeUnauthorized,
		"your session has expired, please sign in again",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"the server returned an unreadable token",
		http.StatusUnauthorized,
	)
	ErrInsufficientRole = apperror.New(
		apperror.CodeForbidden,
		"you don't have permission to access this resource",
		http.StatusForbidden,
	)
	ErrNoAuthenticator = apperror.New(
		apperror.CodeInternalError,
		"login is not available",
		http.StatusInternalServerError,
	)
)
