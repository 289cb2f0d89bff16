package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string            // Error code (e.g., INVALID_INPUT)
	Message    string            // User-facing message
	HTTPStatus int               // HTTP status code
	Err        error             // Wrapped original error (optional)
	Fields     map[string]string // Field-scoped validation messages (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by code and message so that sentinel errors
// survive being copied with WithFields.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithFields returns a copy of e carrying field-scoped messages.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        nil,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func IsValidation(err error) bool    { return HasCode(err, CodeInvalidInput) }
func IsAuth(err error) bool          { return HasCode(err, CodeUnauthorized) }
func IsAuthorization(err error) bool { return HasCode(err, CodeForbidden) }

// IsNetwork reports a transport failure where the server was never reached.
func IsNetwork(err error) bool { return HasCode(err, CodeServiceUnavailable) }

// Message returns the user-facing message for err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	if appErr, ok := As(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP converts any error into the payload the portal writes back.
func ToHTTP(err error) HTTPError {
	appErr, ok := As(err)
	if !ok {
		return HTTPError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternalError,
			Message: ErrInternal.Message,
		}
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	var details any
	if len(appErr.Fields) > 0 {
		details = appErr.Fields
	}
	return HTTPError{
		Status:  status,
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: details,
	}
}
