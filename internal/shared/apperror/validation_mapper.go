package apperror

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// first_name -> First Name
func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts validator output into field errors. Any other
// error yields a single generic entry.
func MapValidationError(err error) []FieldError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []FieldError{{Field: "", Message: "Invalid input"}}
	}

	fields := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		name := e.Field()
		switch e.Tag() {
		case "required":
			fields = append(fields, RequiredField(name))
		case "gt":
			fields = append(fields, FieldError{
				Field:   name,
				Message: fmt.Sprintf("%s must be greater than %s", formatFieldName(name), e.Param()),
			})
		default:
			fields = append(fields, InvalidField(name))
		}
	}
	return fields
}
