package student

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Order selects one fragment of a formatted student line.
type Order int

const (
	OrderID Order = iota
	OrderName
	OrderYear
	OrderDepartment
	OrderFullDepartment
)

// DefaultOrder is the layout used when the caller does not supply one.
var DefaultOrder = []Order{OrderYear, OrderDepartment, OrderID, OrderName}

var ErrInvalidOrder = errors.New("invalid format order")

// FormatStudent renders one student as a line of fragments joined by
// space-wide separators. The id encodes the enrollment year and the
// department; 9-digit ids shift both fields right by one. An unknown
// order tag fails the whole call, producing no partial output. A
// missing name triggers a student lookup; when the id resolves to
// nothing the whole call renders as the empty string.
func (s *Service) FormatStudent(ctx context.Context, id, name string, order []Order, space int) (string, error) {
	if order == nil {
		order = DefaultOrder
	}
	if name == "" {
		var err error
		name, err = s.GetStudentByID(ctx, id)
		if err != nil {
			return "", err
		}
		if name == "" {
			return "", nil
		}
	}

	shift := 0
	if len(id) == 9 {
		shift = 1
	}

	parts := make([]string, 0, len(order))
	for _, o := range order {
		switch o {
		case OrderID:
			parts = append(parts, id)

		case OrderName:
			parts = append(parts, name)

		case OrderYear:
			if len(id) < 3+shift {
				return "", fmt.Errorf("student id %q too short", id)
			}
			parts = append(parts, id[1:3+shift])

		case OrderDepartment:
			code, err := departmentCode(id, shift, false)
			if err != nil {
				return "", err
			}
			parts = append(parts, DepartmentName[code]+"系")

		case OrderFullDepartment:
			code, err := departmentCode(id, shift, true)
			if err != nil {
				return "", err
			}
			if comp, ok := compositeDepartments[code]; ok {
				parts = append(parts, comp.Parent+"\n"+comp.Track)
			} else {
				parts = append(parts, FullDepartmentName[code])
			}

		default:
			return "", ErrInvalidOrder
		}
	}
	return strings.Join(parts, strings.Repeat(" ", space)), nil
}

// departmentCode extracts the department code from a student id,
// widening to three digits for the prefixes that need the extra
// disambiguating digit.
func departmentCode(id string, shift int, full bool) (string, error) {
	if len(id) < 5+shift {
		return "", fmt.Errorf("student id %q too short", id)
	}
	code := id[3+shift : 5+shift]
	extra := false
	if full {
		extra = extraDigitPrefixes[code]
	} else {
		extra = code == shortFormExtraDigitPrefix
	}
	if extra {
		if len(id) < 6+shift {
			return "", fmt.Errorf("student id %q too short", id)
		}
		code = id[3+shift : 6+shift]
	}
	return code, nil
}
