package course

import (
	"fmt"
	"strconv"
)

// UID is the decoded form of a composite course identifier: admission
// year, term and course number packed into one string. Identifiers are
// 8 characters long, or 9 once the ROC year passed 99, which shifts
// every later field boundary right by one.
type UID struct {
	Year     int
	Term     int
	CourseNo string
}

func DecodeUID(uid string) (UID, error) {
	if len(uid) != 8 && len(uid) != 9 {
		return UID{}, fmt.Errorf("uid %q: want 8 or 9 characters, got %d", uid, len(uid))
	}

	shift := 0
	if len(uid) == 9 {
		shift = 1
	}

	year, err := strconv.Atoi(uid[:2+shift])
	if err != nil {
		return UID{}, fmt.Errorf("uid %q: bad year: %w", uid, err)
	}
	term, err := strconv.Atoi(uid[2+shift : 3+shift])
	if err != nil {
		return UID{}, fmt.Errorf("uid %q: bad term: %w", uid, err)
	}

	return UID{
		Year:     year,
		Term:     term,
		CourseNo: uid[3+shift:],
	}, nil
}

func (u UID) String() string {
	return fmt.Sprintf("%d%d%s", u.Year, u.Term, u.CourseNo)
}
