package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrTooManyRequests = New(
		CodeTooManyRequests,
		"Too many requests",
		http.StatusTooManyRequests,
	)
)

func RequiredField(field string) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("%s is required", formatFieldName(field))}
}

func InvalidField(field string) FieldError {
	return FieldError{Field: field, Message: fmt.Sprintf("%s is invalid", formatFieldName(field))}
}

// Validation builds a 400 error listing every failed field.
func Validation(message string, fields []FieldError) *AppError {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    strings.Join(msgs, "; "),
		Fields:     fields,
	}
}
