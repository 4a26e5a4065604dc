package employee

import (
	"strings"

	"go-employee/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = apperror.NewValidator()

// validateEmployee runs the record rules and returns every failed field, or
// nil when the record is valid.
func validateEmployee(v *validator.Validate, req CreateEmployeeRequest) []apperror.FieldError {
	if err := v.Struct(req); err != nil {
		return apperror.MapValidationError(err)
	}
	return nil
}

func normalizeCreate(req CreateEmployeeRequest) CreateEmployeeRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Position = strings.TrimSpace(req.Position)
	return req
}

// applyUpdate merges the supplied fields onto empl.
func applyUpdate(empl *Employee, req UpdateEmployeeRequest) {
	if req.FirstName != nil {
		empl.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		empl.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		empl.Email = strings.TrimSpace(*req.Email)
	}
	if req.Position != nil {
		empl.Position = strings.TrimSpace(*req.Position)
	}
	if req.Salary != nil {
		empl.Salary = *req.Salary
	}
}

func recordOf(empl Employee) CreateEmployeeRequest {
	return CreateEmployeeRequest{
		FirstName: empl.FirstName,
		LastName:  empl.LastName,
		Email:     empl.Email,
		Position:  empl.Position,
		Salary:    empl.Salary,
	}
}
