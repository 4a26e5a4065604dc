package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

type Employee struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	Salary    *float64  `json:"salary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeInput is the payload for create and update.
type EmployeeInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Position  string  `json:"position"`
	Salary    float64 `json:"salary"`
}

type Health struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

type message struct {
	Message string `json:"message"`
}

// Employees wraps the /employees endpoints.
type Employees struct {
	http *HTTPClient
}

func NewEmployees(c *HTTPClient) *Employees {
	return &Employees{http: c}
}

func (e *Employees) List(ctx context.Context) ([]Employee, error) {
	out := []Employee{}
	if err := e.http.Do(ctx, http.MethodGet, "/employees", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Employees) Search(ctx context.Context, q string) ([]Employee, error) {
	out := []Employee{}
	if err := e.http.Do(ctx, http.MethodGet, "/employees/search", url.Values{"q": {q}}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Employees) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	var out Employee
	err := e.http.Do(ctx, http.MethodPost, "/employees", nil, in, &out)
	return out, err
}

func (e *Employees) Update(ctx context.Context, id string, in EmployeeInput) (Employee, error) {
	var out Employee
	err := e.http.Do(ctx, http.MethodPut, "/employees/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

// Delete removes the employee and returns the server's confirmation text.
func (e *Employees) Delete(ctx context.Context, id string) (string, error) {
	var out message
	if err := e.http.Do(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (e *Employees) Health(ctx context.Context) (Health, error) {
	var out Health
	err := e.http.Do(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}
