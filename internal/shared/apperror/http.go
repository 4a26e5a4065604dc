package apperror

import "errors"

type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details string
	Fields  []FieldError
}

// ToHTTP resolves any error into the status and body fields sent to clients.
// Errors that are not AppErrors never leak their text.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
			Fields:  appErr.Fields,
		}
	}
	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}
