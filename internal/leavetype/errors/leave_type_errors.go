package leavetypeerrors

import (
	"net/http"

	"leave-portal/internal/shared/apperror"
)

const (
	MsgFetchFailed  = "Failed to fetch leave types"
	MsgGetFailed    = "Failed to fetch leave type"
	MsgCreateFailed = "Failed to create leave type"
	MsgUpdateFailed = "Failed to update leave type"
	MsgDeleteFailed = "Failed to delete leave type"
)

var (
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrAdminOnly = apperror.New(
		apperror.CodeForbidden,
		"only administrators can manage leave types",
		http.StatusForbidden,
	)
)
