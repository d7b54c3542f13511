package course

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/kvcache"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ntpuassist.services.course")

const queryPath = "/pls/dev_stud/course_query_all.queryByKeyword"

const (
	cacheTTL        = time.Hour * 24
	cacheMaxEntries = 99
)

// result row cell positions in the portal's query table
const (
	cellTerm         = 2
	cellCourseNo     = 3
	cellTitle        = 7
	cellTeachers     = 8
	cellTimeLocation = 13
)

type Service struct {
	resolver *endpoint.Resolver
	cache    *kvcache.Cache[Record]
}

type ServiceOptions struct {
	Resolver *endpoint.Resolver
	// Cache may be nil, in which case a fresh 24h/99-entry cache is
	// created.
	Cache *kvcache.Cache[Record]
}

func NewService(opts ServiceOptions) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = kvcache.New[Record](cacheTTL, cacheMaxEntries)
	}
	return &Service{
		resolver: opts.Resolver,
		cache:    cache,
	}
}

func (s *Service) Cache() *kvcache.Cache[Record] {
	return s.cache
}

// GetCourseByUID returns the full course record for a composite uid, or
// nil when the portal is unreachable or has no matching row. Results
// are served from the shared cache for 24 hours; a cached year-sweep
// projection does not satisfy a full lookup.
func (s *Service) GetCourseByUID(ctx context.Context, uid string) (*Course, error) {
	ctx, span := tracer.Start(ctx, "GetCourseByUID")
	defer span.End()

	decoded, err := DecodeUID(uid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed uid")
		return nil, err
	}

	if rec, ok := s.cache.Get(uid); ok && rec.Detail {
		span.SetStatus(codes.Ok, "cache hit")
		c := rec.Course
		return &c, nil
	}

	base, err := s.resolver.ActiveOrResolve(ctx)
	if err != nil {
		span.SetStatus(codes.Ok, "no reachable endpoint")
		return nil, nil
	}

	res, err := s.resolver.Client().R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"qYear":    strconv.Itoa(decoded.Year),
			"qTerm":    strconv.Itoa(decoded.Term),
			"courseno": decoded.CourseNo,
			"seq1":     "A",
			"seq2":     "M",
		}).
		Get(base + queryPath)
	if err != nil {
		s.resolver.Invalidate()
		slog.WarnContext(ctx, "course query failed", "uid", uid, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Ok, "transport failure")
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse response body")
		return nil, nil
	}

	row := doc.Find("table tbody tr").First()
	if row.Length() == 0 {
		span.SetStatus(codes.Ok, "no matching rows")
		return nil, nil
	}

	c := s.parseRow(decoded, row, true)
	if c == nil {
		span.SetStatus(codes.Ok, "row missing expected cells")
		return nil, nil
	}

	rec := Record{Course: *c, Detail: true}
	s.cache.Set(c.UID, rec)
	if c.UID != uid {
		s.cache.Set(uid, rec)
	}

	return c, nil
}

// GetSimpleCoursesByYear sweeps every degree-level course-number prefix
// for a year and returns the accumulated uid -> record mapping. The
// first transport failure aborts the whole sweep and yields nil, though
// records already written to the cache stay there.
func (s *Service) GetSimpleCoursesByYear(ctx context.Context, year int) (map[string]SimpleCourse, error) {
	ctx, span := tracer.Start(ctx, "GetSimpleCoursesByYear")
	defer span.End()

	courses := map[string]SimpleCourse{}

	for _, code := range allCourseCodes {
		base, err := s.resolver.ActiveOrResolve(ctx)
		if err != nil {
			span.SetStatus(codes.Ok, "no reachable endpoint")
			return nil, nil
		}

		res, err := s.resolver.Client().R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"qYear":    strconv.Itoa(year),
				"courseno": code,
				"seq1":     "A",
				"seq2":     "M",
			}).
			Get(base + queryPath)
		if err != nil {
			s.resolver.Invalidate()
			slog.WarnContext(ctx, "course sweep failed", "year", year, "code", code, "err", err)
			span.RecordError(err)
			span.SetStatus(codes.Ok, "transport failure")
			return nil, nil
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse response body")
			return nil, nil
		}

		doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
			c := s.parseRow(UID{Year: year}, row, false)
			if c == nil {
				return
			}
			s.cache.Set(c.UID, Record{Course: *c, Detail: false})
			courses[c.UID] = c.SimpleCourse
		})
	}

	return courses, nil
}

// parseRow builds a course record from one result row. full selects
// whether the link/location/note fields are extracted too. Returns nil
// when the row doesn't carry the expected cells.
func (s *Service) parseRow(decoded UID, row *goquery.Selection, full bool) *Course {
	cells := row.Find("td")
	if cells.Length() <= cellTimeLocation {
		return nil
	}

	term, err := strconv.Atoi(strings.TrimSpace(cells.Eq(cellTerm).Text()))
	if err != nil {
		term = decoded.Term
	}
	courseNo := strings.TrimSpace(cells.Eq(cellCourseNo).Text())

	title := ParseTitleField(cells.Eq(cellTitle))
	teachers, teacherURLs := ParseTeacherField(cells.Eq(cellTeachers))
	times, locations := ParseTimeLocationField(cells.Eq(cellTimeLocation))

	c := &Course{
		SimpleCourse: SimpleCourse{
			Year:     decoded.Year,
			Term:     term,
			UID:      UID{Year: decoded.Year, Term: term, CourseNo: courseNo}.String(),
			Title:    title.Title,
			Teachers: teachers,
			Times:    times,
		},
	}
	if full {
		if title.Location != "" {
			locations = append(locations, title.Location)
		}
		c.TeacherURLs = teacherURLs
		c.Locations = locations
		c.DetailURL = title.DetailURL
		c.Note = title.Note
	}
	return c
}

// Healthz probes the active endpoint, re-resolving when it has gone
// stale. Reports false only when no candidate answers at all.
func (s *Service) Healthz(ctx context.Context) bool {
	if s.resolver.Probe(ctx, s.resolver.Active()) {
		return true
	}
	return s.resolver.Resolve(ctx)
}
