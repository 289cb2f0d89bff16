package leaveerrors

import (
	"net/http"

	"leave-portal/internal/shared/apperror"
)

// Fallback messages shown when the server gives none.
const (
	MsgFetchFailed   = "Failed to fetch leaves"
	MsgGetFailed     = "Failed to fetch leave"
	MsgCreateFailed  = "Failed to create leave"
	MsgUpdateFailed  = "Failed to update leave"
	MsgDeleteFailed  = "Failed to delete leave"
	MsgApproveFailed = "Failed to approve leave"
	MsgRejectFailed  = "Failed to reject leave"
)

var (
	ErrInvalidScope = apperror.New(
		apperror.CodeInvalidInput,
		"scope must be one of: all, mine, team",
		http.StatusBadRequest,
	)
	ErrMissingUserID = apperror.New(
		apperror.CodeInvalidInput,
		"your account has no user id, this view is unavailable",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave id",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave not found",
		http.StatusNotFound,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending leave requests can be approved or rejected",
		http.StatusConflict,
	)
	ErrNotEditable = apperror.New(
		apperror.CodeForbidden,
		"you can only edit your own pending leave requests",
		http.StatusForbidden,
	)
	ErrNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"you don't have permission to perform this action",
		http.StatusForbidden,
	)
	ErrRefreshSuperseded = apperror.New(
		apperror.CodeConflict,
		"a newer refresh replaced this one",
		http.StatusConflict,
	)
	ErrAbandoned = apperror.New(
		apperror.CodeConflict,
		"the request finished after the view was closed",
		http.StatusConflict,
	)
)
