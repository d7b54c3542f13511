// Package lookup is the facade the delivery surfaces (HTTP handlers,
// CLI) talk to. It hides which backing service owns a record and maps
// every retrieval outcome to found-or-absent; transport problems never
// surface past this package.
package lookup

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"ntpuassist-backend/services/course"
	"ntpuassist-backend/services/student"
)

var tracer = otel.Tracer("ntpuassist.services.lookup")

type ServiceOptions struct {
	Course  *course.Service
	Student *student.Service
}

type Service struct {
	course  *course.Service
	student *student.Service
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		course:  opts.Course,
		student: opts.Student,
	}
}

// LookupCourse resolves a course uid to its full record. The second
// return is false when the uid is malformed, the portal has no such
// course, or the portal could not be reached.
func (s *Service) LookupCourse(ctx context.Context, uid string) (*course.Course, bool) {
	ctx, span := tracer.Start(ctx, "LookupCourse")
	defer span.End()

	c, err := s.course.GetCourseByUID(ctx, uid)
	if err != nil || c == nil {
		if err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Ok, "")
		return nil, false
	}
	span.SetStatus(codes.Ok, "")
	return c, true
}

// LookupCoursesByYear sweeps every course offered in one ROC year,
// keyed by uid.
func (s *Service) LookupCoursesByYear(ctx context.Context, year int) map[string]course.SimpleCourse {
	ctx, span := tracer.Start(ctx, "LookupCoursesByYear")
	defer span.End()

	courses, err := s.course.GetSimpleCoursesByYear(ctx, year)
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Ok, "")
	return courses
}

// LookupStudent resolves a student id to a name; "" means absent.
func (s *Service) LookupStudent(ctx context.Context, id string) (string, bool) {
	ctx, span := tracer.Start(ctx, "LookupStudent")
	defer span.End()

	name, err := s.student.GetStudentByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "")
		return "", false
	}
	span.SetStatus(codes.Ok, "")
	return name, name != ""
}

// LookupStudentsByYearAndDepartment fetches a department roster.
func (s *Service) LookupStudentsByYearAndDepartment(ctx context.Context, year int, departmentCode string) []student.Student {
	ctx, span := tracer.Start(ctx, "LookupStudentsByYearAndDepartment")
	defer span.End()

	students, err := s.student.GetStudentsByYearAndDepartment(ctx, year, departmentCode)
	if err != nil {
		span.RecordError(err)
	}
	span.SetStatus(codes.Ok, "")
	return students
}

// SearchStudentsByName matches cached students whose names contain
// every rune of the query.
func (s *Service) SearchStudentsByName(query string) []student.Student {
	return s.student.SearchStudentsByName(query)
}

// FormatStudent renders one student line with the default layout.
func (s *Service) FormatStudent(ctx context.Context, id, name string, space int) (string, error) {
	return s.student.FormatStudent(ctx, id, name, nil, space)
}

// FormatRoster renders the roster message for one department/year.
func (s *Service) FormatRoster(ctx context.Context, year int, departmentCode string, students []student.Student) (string, error) {
	return s.student.FormatRoster(ctx, year, departmentCode, students)
}

// HealthCheck reports per-portal health. Both services re-resolve
// their endpoints when the active one has gone stale.
func (s *Service) HealthCheck(ctx context.Context) (courseOK, studentOK bool) {
	ctx, span := tracer.Start(ctx, "HealthCheck")
	defer span.End()

	courseOK = s.course.Healthz(ctx)
	studentOK = s.student.Healthz(ctx)
	span.SetStatus(codes.Ok, "")
	return courseOK, studentOK
}
