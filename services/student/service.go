package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/kvcache"
	"ntpuassist-backend/lib/textutil"
)

var tracer = otel.Tracer("ntpuassist.services.student")

const searchPath = "/portfolio/search.php"

var studentIDRegex = regexp.MustCompile(`\d+`)

// Student is one id/name pair from the portfolio portal.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ServiceOptions struct {
	Resolver *endpoint.Resolver
	// Cache overrides the id -> name cache, used by tests.
	Cache *kvcache.Cache[string]
}

// Service looks up students by id, name and roster keyword against the
// portfolio portal, memoizing every id/name pair it ever sees. The
// cache has no expiry and no size cap.
type Service struct {
	resolver *endpoint.Resolver
	cache    *kvcache.Cache[string]

	renewMu sync.Mutex
	renew   *RenewTask
	// renewCtx parents every renewal sweep; set by StartRenewal.
	renewCtx context.Context
}

func NewService(opts ServiceOptions) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = kvcache.New[string](0, 0)
	}
	return &Service{
		resolver: opts.Resolver,
		cache:    cache,
	}
}

func (s *Service) Cache() *kvcache.Cache[string] {
	return s.cache
}

// GetStudentByID returns the student's name, or "" when the portal has
// no record for the id. Transport failures invalidate the active
// endpoint and also report "".
func (s *Service) GetStudentByID(ctx context.Context, id string) (string, error) {
	ctx, span := tracer.Start(ctx, "GetStudentByID")
	defer span.End()

	if name, ok := s.cache.Get(id); ok {
		span.SetStatus(codes.Ok, "")
		return name, nil
	}

	students, err := s.search(ctx, id, 1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	for _, st := range students {
		s.cache.Set(st.ID, st.Name)
	}

	name, _ := s.cache.Get(id)
	span.SetStatus(codes.Ok, "")
	return name, nil
}

// GetStudentsByYearAndDepartment fetches the roster of one department
// and enrollment year (in ROC form), walking the portal's pagination
// until an empty page. Every pair found lands in the cache.
func (s *Service) GetStudentsByYearAndDepartment(ctx context.Context, year int, departmentCode string) ([]Student, error) {
	ctx, span := tracer.Start(ctx, "GetStudentsByYearAndDepartment")
	defer span.End()

	keyword := fmt.Sprintf("4%d%s", year, departmentCode)

	var all []Student
	for page := 1; ; page++ {
		students, err := s.search(ctx, keyword, page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if len(students) == 0 {
			break
		}
		for _, st := range students {
			s.cache.Set(st.ID, st.Name)
		}
		all = append(all, students...)
	}

	span.SetStatus(codes.Ok, "")
	return all, nil
}

// search runs one portal query page and parses the result listing.
// An unreachable portal or a transport failure yields no students and
// no error, matching the lookup surface's absent-not-failed contract.
func (s *Service) search(ctx context.Context, keyword string, page int) ([]Student, error) {
	base, err := s.resolver.ActiveOrResolve(ctx)
	if err != nil {
		if errors.Is(err, endpoint.ErrNoReachableURL) {
			return nil, nil
		}
		return nil, err
	}

	res, err := s.resolver.Client().R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fmScope":  "2",
			"page":     fmt.Sprint(page),
			"vkeyword": keyword,
		}).
		Get(base + searchPath)
	if err != nil {
		s.resolver.Invalidate()
		slog.WarnContext(ctx, "student portal request failed", "err", err, "keyword", keyword)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		return nil, err
	}
	return parseSearchPage(doc), nil
}

// parseSearchPage pulls id/name pairs out of the result listing. Each
// hit is an anchor inside a div.bloglistTitle whose href carries the
// student id and whose text is the name.
func parseSearchPage(doc *goquery.Document) []Student {
	var students []Student
	doc.Find("div.bloglistTitle").Each(func(_ int, sel *goquery.Selection) {
		anchor := sel.Find("a").First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		id := studentIDRegex.FindString(href)
		if id == "" {
			return
		}
		name := textutil.NormalizeName(anchor.Text())
		if name == "" {
			return
		}
		students = append(students, Student{ID: id, Name: name})
	})
	return students
}

// Healthz probes the active portal, re-resolving when the probe fails.
// A healthy outcome restarts the renewal task so it targets the fresh
// endpoint.
func (s *Service) Healthz(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "Healthz")
	defer span.End()

	if active := s.resolver.Active(); active != "" && s.resolver.Probe(ctx, active) {
		span.SetStatus(codes.Ok, "")
		return true
	}

	s.resolver.Invalidate()
	if !s.resolver.Resolve(ctx) {
		span.SetStatus(codes.Error, "no reachable base url")
		return false
	}

	s.restartRenewal()
	span.SetStatus(codes.Ok, "")
	return true
}
