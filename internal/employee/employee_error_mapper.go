package employee

import (
	"errors"
	"net/http"
	"strings"

	employeeerrors "go-employee/internal/employee/errors"
	"go-employee/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError translates store errors into client-facing errors.
// Anything unrecognised becomes a 500 carrying fallbackMsg.
func mapRepositoryError(err error, fallbackMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	if isDuplicateEmail(err) {
		return employeeerrors.ErrEmployeeAlreadyExists.WithDetails("email already exists")
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return apperror.Wrap(err, apperror.CodeInternalError, fallbackMsg, http.StatusInternalServerError)
}

func isDuplicateEmail(err error) bool {
	if errors.Is(err, ErrDuplicateEmail) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == EmailUniqueIndex
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, EmailUniqueIndex)
}
