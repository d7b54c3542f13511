package student

import (
	"context"
	"fmt"
	"strings"
)

const rosterLineSpace = 3

// FormatRoster renders the full roster message for one department and
// enrollment year: one line per student, a blank line, then a summary
// trailer. Law rosters belong to groups rather than departments and
// the trailer says so.
func (s *Service) FormatRoster(ctx context.Context, year int, departmentCode string, students []Student) (string, error) {
	name := DepartmentName[departmentCode]
	kind := "系"
	if strings.HasPrefix(departmentCode, "71") {
		kind = "組"
	}

	if len(students) == 0 {
		return fmt.Sprintf("%d學年度%s%s好像沒有人耶OAO", year, name, kind), nil
	}

	lines := make([]string, 0, len(students))
	for _, st := range students {
		line, err := s.FormatStudent(ctx, st.ID, st.Name, []Order{OrderID, OrderName}, rosterLineSpace)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	trailer := fmt.Sprintf("%d學年度%s%s共有%d位學生", year, name, kind, len(students))
	return strings.Join(lines, "\n") + "\n\n" + trailer, nil
}
