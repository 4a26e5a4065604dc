package dashboard

import (
	"sort"
	"strings"

	"go-employee/internal/client"
)

type SortKey string

const (
	SortFirstName SortKey = FieldFirstName
	SortLastName  SortKey = FieldLastName
	SortEmail     SortKey = FieldEmail
	SortPosition  SortKey = FieldPosition
	SortSalary    SortKey = FieldSalary
)

type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

type Sort struct {
	Key SortKey
	Dir SortDir
}

// DefaultSort is last name ascending.
var DefaultSort = Sort{Key: SortLastName, Dir: Asc}

// Toggle returns the sort after a click on key: the same key flips the
// direction, another key starts ascending.
func (s Sort) Toggle(key SortKey) Sort {
	if s.Key == key {
		if s.Dir == Asc {
			return Sort{Key: key, Dir: Desc}
		}
		return Sort{Key: key, Dir: Asc}
	}
	return Sort{Key: key, Dir: Asc}
}

// Apply returns a sorted copy. Records missing the key go last in either
// direction, and equal values keep their order.
func (s Sort) Apply(in []client.Employee) []client.Employee {
	out := make([]client.Employee, len(in))
	copy(out, in)

	sort.SliceStable(out, func(i, j int) bool {
		return s.less(out[i], out[j])
	})
	return out
}

func (s Sort) less(a, b client.Employee) bool {
	if s.Key == SortSalary {
		switch {
		case a.Salary == nil:
			return false
		case b.Salary == nil:
			return true
		case s.Dir == Desc:
			return *a.Salary > *b.Salary
		default:
			return *a.Salary < *b.Salary
		}
	}

	av, bv := textValue(a, s.Key), textValue(b, s.Key)
	switch {
	case av == "":
		return false
	case bv == "":
		return true
	}
	av, bv = strings.ToLower(av), strings.ToLower(bv)
	if s.Dir == Desc {
		return av > bv
	}
	return av < bv
}

func textValue(e client.Employee, key SortKey) string {
	switch key {
	case SortFirstName:
		return e.FirstName
	case SortLastName:
		return e.LastName
	case SortEmail:
		return e.Email
	case SortPosition:
		return e.Position
	}
	return ""
}
