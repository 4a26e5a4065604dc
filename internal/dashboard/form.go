package dashboard

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go-employee/internal/client"
)

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldPosition  = "position"
	FieldSalary    = "salary"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPosition, FieldSalary}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form holds the raw text of the employee form.
type Form struct {
	FirstName string
	LastName  string
	Email     string
	Position  string
	Salary    string
}

func (f Form) Get(field string) string {
	switch field {
	case FieldFirstName:
		return f.FirstName
	case FieldLastName:
		return f.LastName
	case FieldEmail:
		return f.Email
	case FieldPosition:
		return f.Position
	case FieldSalary:
		return f.Salary
	}
	return ""
}

func (f *Form) Set(field, value string) {
	switch field {
	case FieldFirstName:
		f.FirstName = value
	case FieldLastName:
		f.LastName = value
	case FieldEmail:
		f.Email = value
	case FieldPosition:
		f.Position = value
	case FieldSalary:
		f.Salary = value
	}
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Validate checks the form and returns one message per failing field. An
// empty result means the form can be submitted.
func Validate(f Form) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.FirstName) == "" {
		errs[FieldFirstName] = "First name is required."
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs[FieldLastName] = "Last name is required."
	}
	if strings.TrimSpace(f.Email) == "" {
		errs[FieldEmail] = "Email is required."
	} else if !emailPattern.MatchString(strings.TrimSpace(f.Email)) {
		errs[FieldEmail] = "Email looks invalid."
	}
	if strings.TrimSpace(f.Position) == "" {
		errs[FieldPosition] = "Position is required."
	}
	if f.Salary == "" {
		errs[FieldSalary] = "Salary is required."
	} else if v, ok := parseSalary(f.Salary); !ok {
		errs[FieldSalary] = "Salary must be a number."
	} else if v <= 0 {
		errs[FieldSalary] = "Salary must be > 0."
	}
	return errs
}

// Normalize turns a validated form into the request payload.
func Normalize(f Form) client.EmployeeInput {
	salary, _ := parseSalary(f.Salary)
	return client.EmployeeInput{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Email:     strings.ToLower(strings.TrimSpace(f.Email)),
		Position:  strings.TrimSpace(f.Position),
		Salary:    salary,
	}
}

// FormFrom fills the form with an existing record for editing.
func FormFrom(e client.Employee) Form {
	f := Form{
		FirstName: e.FirstName,
		LastName:  e.LastName,
		Email:     e.Email,
		Position:  e.Position,
	}
	if e.Salary != nil {
		f.Salary = strconv.FormatFloat(*e.Salary, 'f', -1, 64)
	}
	return f
}

// parseSalary reads s as a number. Blank text counts as zero.
func parseSalary(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
