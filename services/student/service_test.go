package student

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakePortal struct {
	srv *httptest.Server

	queries atomic.Int64
	// pages maps keyword -> paginated result sets; page numbers past
	// the slice yield an empty listing
	pages map[string][][]Student
}

func newFakePortal(t *testing.T) *fakePortal {
	p := &fakePortal{pages: map[string][][]Student{}}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		p.queries.Add(1)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages := p.pages[r.URL.Query().Get("vkeyword")]
		if page < 1 || page > len(pages) {
			fmt.Fprint(w, "<html><body></body></html>")
			return
		}

		fmt.Fprint(w, "<html><body>")
		for _, st := range pages[page-1] {
			fmt.Fprintf(w,
				`<div class="bloglistTitle"><a href="/portfolio/blog.php?id=%s">%s</a></div>`,
				st.ID, st.Name,
			)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func setupService(t *testing.T, portal *fakePortal) *Service {
	resolver := endpoint.NewResolver(endpoint.ResolverOptions{
		Candidates:   []string{portal.srv.URL},
		ProbeTimeout: time.Second * 2,
	})
	return NewService(ServiceOptions{Resolver: resolver})
}

func TestGetStudentByID(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	portal.pages["41185001"] = [][]Student{{{ID: "41185001", Name: "王小明"}}}
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	name, err := svc.GetStudentByID(ctx, "41185001")
	require.NoError(t, err)
	require.Equal(t, "王小明", name)

	// second hit comes from the cache
	before := portal.queries.Load()
	name, err = svc.GetStudentByID(ctx, "41185001")
	require.NoError(t, err)
	require.Equal(t, "王小明", name)
	require.Equal(t, before, portal.queries.Load())
}

func TestGetStudentByIDNotFound(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	name, err := svc.GetStudentByID(ctx, "41185999")
	require.NoError(t, err)
	require.Empty(t, name)
}

func TestGetStudentsByYearAndDepartment(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	portal.pages["411285"] = [][]Student{
		{{ID: "411285001", Name: "王小明"}, {ID: "411285002", Name: "李大仁"}},
		{{ID: "411285003", Name: "張三豐"}},
	}
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	students, err := svc.GetStudentsByYearAndDepartment(ctx, 112, "85")
	require.NoError(t, err)
	require.Equal(t, []Student{
		{ID: "411285001", Name: "王小明"},
		{ID: "411285002", Name: "李大仁"},
		{ID: "411285003", Name: "張三豐"},
	}, students)

	// the roster sweep fills the id cache, so direct lookups are free
	before := portal.queries.Load()
	name, err := svc.GetStudentByID(ctx, "411285003")
	require.NoError(t, err)
	require.Equal(t, "張三豐", name)
	require.Equal(t, before, portal.queries.Load())
}

func TestSearchStudentsByName(t *testing.T) {
	svc := NewService(ServiceOptions{})
	svc.Cache().Set("41185001", "王小明")
	svc.Cache().Set("41185002", "王大明")
	svc.Cache().Set("41185003", "李大仁")

	hits := svc.SearchStudentsByName("王明")
	require.Len(t, hits, 2)
	require.ElementsMatch(t, []Student{
		{ID: "41185001", Name: "王小明"},
		{ID: "41185002", Name: "王大明"},
	}, hits)

	require.Empty(t, svc.SearchStudentsByName("陳"))
	require.Empty(t, svc.SearchStudentsByName(""))
}

func TestFormatRoster(t *testing.T) {
	svc := NewService(ServiceOptions{})

	out, err := svc.FormatRoster(context.Background(), 112, "85", []Student{
		{ID: "411285001", Name: "王小明"},
		{ID: "411285002", Name: "李大仁"},
	})
	require.NoError(t, err)
	// a blank line separates the listing from the trailer
	require.Equal(t,
		"411285001   王小明\n411285002   李大仁\n\n112學年度資工系共有2位學生",
		out,
	)

	out, err = svc.FormatRoster(context.Background(), 112, "714", nil)
	require.NoError(t, err)
	require.Equal(t, "112學年度司法組好像沒有人耶OAO", out)
}

func TestRenewalCancel(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	task := svc.StartRenewal(ctx)
	task.Cancel()
	// redundant cancel is a no-op
	task.Cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second * 10):
		t.Fatal("renewal did not stop after cancel")
	}
}

func TestStartRenewalReplacesPrevious(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	first := svc.StartRenewal(ctx)
	second := svc.StartRenewal(ctx)

	select {
	case <-first.Done():
	case <-time.After(time.Second * 10):
		t.Fatal("first renewal still running after replacement")
	}

	second.Cancel()
	<-second.Done()
}

func TestHealthzRestartOutlivesCallerContext(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	resolver := endpoint.NewResolver(endpoint.ResolverOptions{
		Candidates:   []string{portal.srv.URL},
		ProbeTimeout: time.Second * 2,
	})
	svc := NewService(ServiceOptions{Resolver: resolver})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	task := svc.StartRenewal(ctx)

	// a stale endpoint makes the health check re-resolve and swap in a
	// fresh sweep
	resolver.Invalidate()
	reqCtx, cancelReq := context.WithCancel(ctx)
	require.True(t, svc.Healthz(reqCtx))

	select {
	case <-task.Done():
	case <-time.After(time.Second * 10):
		t.Fatal("previous renewal still running after restart")
	}

	// the replacement sweep is parented on the StartRenewal context, so
	// the health request finishing must not kill it
	cancelReq()
	svc.renewMu.Lock()
	current := svc.renew
	svc.renewMu.Unlock()
	require.NotNil(t, current)

	select {
	case <-current.Done():
		t.Fatal("renewal stopped with the health request context")
	case <-time.After(time.Millisecond * 200):
	}

	current.Cancel()
	<-current.Done()
}

func TestHealthz(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/student")
	defer cleanup()

	portal := newFakePortal(t)
	svc := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	require.True(t, svc.Healthz(ctx))

	dead := endpoint.NewResolver(endpoint.ResolverOptions{
		Candidates:   []string{"http://127.0.0.1:1"},
		ProbeTimeout: time.Second * 2,
	})
	broken := NewService(ServiceOptions{Resolver: dead})
	require.False(t, broken.Healthz(ctx))
}
