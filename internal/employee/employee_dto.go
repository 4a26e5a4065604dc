package employee

import "time"

type CreateEmployeeRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required"`
	Position  string  `json:"position" validate:"required"`
	Salary    float64 `json:"salary" validate:"required,gt=0"`
}

// UpdateEmployeeRequest is a partial payload: nil fields keep their stored
// value.
type UpdateEmployeeRequest struct {
	FirstName *string  `json:"first_name,omitempty"`
	LastName  *string  `json:"last_name,omitempty"`
	Email     *string  `json:"email,omitempty"`
	Position  *string  `json:"position,omitempty"`
	Salary    *float64 `json:"salary,omitempty"`
}

type EmployeeResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	Salary    float64   `json:"salary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
