package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		panic(err)
	}
}

// force timezone to be in Taipei because the school's identifiers and
// semesters are all defined against local ROC calendar dates, and our
// servers don't always run in that timezone
func Now() time.Time {
	return time.Now().In(Location)
}

// ROCYear converts a Gregorian timestamp into a Republic-of-China
// calendar year (Gregorian year minus 1911).
func ROCYear(t time.Time) int {
	return t.In(Location).Year() - 1911
}

const (
	// FoundingYear is the ROC year the school was established; no
	// student ids exist before it.
	FoundingYear = 89
	// CourseDataStartYear is the earliest ROC year the course query
	// system has data for.
	CourseDataStartYear = 90
)

// ValidCourseYear reports whether the course portal can have data for
// the given ROC year.
func ValidCourseYear(year int) bool {
	return year >= CourseDataStartYear && year <= ROCYear(Now())
}

// ValidStudentYear reports whether student ids can exist for the given
// ROC enrollment year.
func ValidStudentYear(year int) bool {
	return year > FoundingYear && year <= ROCYear(Now())
}
