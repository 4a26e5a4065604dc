package employeeerrors

import (
	"go-employee/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	// Duplicate emails are reported as 400 alongside other validation
	// failures.
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid ID",
		http.StatusBadRequest,
	)
	ErrInvalidPayload = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid request body",
		http.StatusBadRequest,
	)
)

const (
	MsgCreateFailed = "Failed to create employee"
	MsgUpdateFailed = "Failed to update employee"
	MsgDeleteFailed = "Failed to delete employee"
	MsgFetchFailed  = "Failed to fetch employees"
	MsgSearchFailed = "Failed to search employees"
)
