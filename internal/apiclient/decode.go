package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"leave-portal/internal/shared/apperror"
)

// envelope is the {ok,data,error} wrapper some deployments put around bodies.
type envelope struct {
	Ok      *bool           `json:"ok"`
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeBody(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if out == nil || len(raw) == 0 {
		return nil
	}
	if raw[0] == '{' {
		var env envelope
		if err := json.Unmarshal(raw, &env); err == nil && (env.Ok != nil || env.Success != nil) && len(env.Data) > 0 {
			raw = env.Data
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// serverMessage pulls the human message and code out of an error body.
// Supported shapes: {"message":..}, {"error":".."}, {"error":{"code":..,"message":..}}.
func serverMessage(raw []byte) (code, message string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return "", ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", ""
	}
	code, message = body.Code, body.Message
	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil {
			if message == "" {
				message = s
			}
		} else {
			var nested struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(body.Error, &nested); err == nil {
				if nested.Message != "" {
					message = nested.Message
				}
				if nested.Code != "" {
					code = nested.Code
				}
			}
		}
	}
	return strings.TrimSpace(code), strings.TrimSpace(message)
}

// SessionExpiredMessage is used for a 401 whose body carries no message.
const SessionExpiredMessage = "Your session has expired, please sign in again"

// passthroughCodes are server codes that keep their meaning client side.
var passthroughCodes = map[string]bool{
	apperror.CodeInvalidState: true,
	apperror.CodeConflict:     true,
	apperror.CodeNotFound:     true,
}

func mapStatusError(status int, raw []byte, fallback string) *apperror.AppError {
	serverCode, msg := serverMessage(raw)
	cause := fmt.Errorf("HTTP %d", status)

	var code, defaultMsg string
	switch status {
	case http.StatusUnauthorized:
		code, defaultMsg = apperror.CodeUnauthorized, SessionExpiredMessage
	case http.StatusForbidden:
		code, defaultMsg = apperror.CodeForbidden, apperror.ErrForbidden.Message
	case http.StatusNotFound:
		code, defaultMsg = apperror.CodeNotFound, fallback
	case http.StatusConflict:
		code, defaultMsg = apperror.CodeConflict, fallback
	default:
		code, defaultMsg = apperror.CodeServerError, fallback
	}
	if passthroughCodes[strings.ToUpper(serverCode)] {
		code = strings.ToUpper(serverCode)
	}
	if msg == "" {
		msg = defaultMsg
	}
	return &apperror.AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: status,
		Err:        cause,
	}
}
