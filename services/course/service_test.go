package course

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ntpuassist-backend/lib/endpoint"
	"ntpuassist-backend/lib/kvcache"
	"ntpuassist-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func courseRow(term int, courseNo, title, note string) string {
	cells := make([]string, 14)
	for i := range cells {
		cells[i] = "<td></td>"
	}
	cells[cellTerm] = fmt.Sprintf("<td>%d</td>", term)
	cells[cellCourseNo] = fmt.Sprintf("<td>%s</td>", courseNo)
	cells[cellTitle] = fmt.Sprintf(
		`<td><a href="detail.jsp?no=%s">%s</a><font>備註:%s</font></td>`,
		courseNo, title, note,
	)
	cells[cellTeachers] = `<td><a href="teacher.jsp?id=100">王小明</a></td>`
	cells[cellTimeLocation] = "<td><a href=\"#\">一34\t三教101</a></td>"

	row := "<tr>"
	for _, c := range cells {
		row += c
	}
	return row + "</tr>"
}

type fakePortal struct {
	srv *httptest.Server

	queries atomic.Int64
	// rows returned per courseno query value; missing key yields a
	// page without a table
	rows map[string]string
	// connections for these courseno values are dropped mid-flight to
	// simulate a transport failure
	failCodes map[string]bool
}

func newFakePortal(t *testing.T) *fakePortal {
	p := &fakePortal{rows: map[string]string{}, failCodes: map[string]bool{}}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != queryPath {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}

		if p.failCodes[r.URL.Query().Get("courseno")] {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}

		p.queries.Add(1)
		rows, ok := p.rows[r.URL.Query().Get("courseno")]
		if !ok {
			fmt.Fprint(w, "<html><body>查無資料</body></html>")
			return
		}
		fmt.Fprintf(w, "<html><body><table><tbody>%s</tbody></table></body></html>", rows)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func setupService(t *testing.T, portal *fakePortal) (*Service, *kvcache.Cache[Record], *func() time.Time) {
	now := time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	clockRef := &clock

	cache := kvcache.New[Record](cacheTTL, cacheMaxEntries)
	cache.SetClock(func() time.Time { return (*clockRef)() })

	resolver := endpoint.NewResolver(endpoint.ResolverOptions{
		Candidates:   []string{portal.srv.URL},
		ProbeTimeout: time.Second * 2,
	})
	svc := NewService(ServiceOptions{Resolver: resolver, Cache: cache})

	return svc, cache, clockRef
}

func TestGetCourseByUID(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	portal.rows["U0001"] = courseRow(1, "U0001", "資料結構", "教室:一教302")
	svc, _, _ := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	c, err := svc.GetCourseByUID(ctx, "1131U0001")
	require.NoError(t, err)
	require.NotNil(t, c)

	require.Equal(t, 113, c.Year)
	require.Equal(t, 1, c.Term)
	require.Equal(t, "1131U0001", c.UID)
	require.Equal(t, "資料結構", c.Title)
	require.Equal(t, []string{"王小明"}, c.Teachers)
	require.Equal(t, []string{"?id=100"}, c.TeacherURLs)
	require.Equal(t, []string{"一34"}, c.Times)
	// schedule room plus the classroom recovered from the note
	require.Equal(t, []string{"三教101", "一教302"}, c.Locations)
	require.Equal(t, "?no=U0001", c.DetailURL)
	require.Equal(t, "教室:一教302", c.Note)
}

func TestGetCourseByUIDMemoized(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	portal.rows["U0001"] = courseRow(1, "U0001", "資料結構", "")
	svc, _, clockRef := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := svc.GetCourseByUID(ctx, "1131U0001")
	require.NoError(t, err)
	require.EqualValues(t, 1, portal.queries.Load())

	c, err := svc.GetCourseByUID(ctx, "1131U0001")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.EqualValues(t, 1, portal.queries.Load(), "second lookup within 24h must not hit the network")

	// a full day later the entry has expired and the portal is asked again
	base := (*clockRef)()
	*clockRef = func() time.Time { return base.Add(time.Hour * 24) }

	c, err = svc.GetCourseByUID(ctx, "1131U0001")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.EqualValues(t, 2, portal.queries.Load())
}

func TestGetCourseByUIDNoData(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	svc, cache, _ := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	c, err := svc.GetCourseByUID(ctx, "1131U9999")
	require.NoError(t, err)
	require.Nil(t, c)
	require.Equal(t, 0, cache.Len(), "empty results must not be cached")
}

func TestGetCourseByUIDMalformed(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	svc, _, _ := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := svc.GetCourseByUID(ctx, "x")
	require.Error(t, err)
	require.EqualValues(t, 0, portal.queries.Load())
}

func TestGetSimpleCoursesByYear(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	portal.rows["U"] = courseRow(1, "U0001", "資料結構", "") + courseRow(2, "U0002", "演算法", "")
	portal.rows["M"] = courseRow(1, "M0001", "高等資料結構", "")
	// exact course-number queries hit their own key, not the prefix's
	portal.rows["U0001"] = courseRow(1, "U0001", "資料結構", "")
	svc, cache, _ := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	courses, err := svc.GetSimpleCoursesByYear(ctx, 113)
	require.NoError(t, err)
	require.Len(t, courses, 3)

	sc, ok := courses["1132U0002"]
	require.True(t, ok)
	require.Equal(t, "演算法", sc.Title)
	require.Equal(t, 113, sc.Year)
	require.Equal(t, 2, sc.Term)

	require.Equal(t, 3, cache.Len())

	// sweep projections don't satisfy full lookups: asking for the full
	// record goes back to the portal
	before := portal.queries.Load()
	c, err := svc.GetCourseByUID(ctx, "1131U0001")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.EqualValues(t, before+1, portal.queries.Load())
}

func TestGetSimpleCoursesByYearAbortsOnFailure(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/course")
	defer cleanup()

	portal := newFakePortal(t)
	portal.rows["U"] = courseRow(1, "U0001", "資料結構", "")
	// the first prefix succeeds, then the portal drops the connection
	portal.failCodes["M"] = true
	svc, cache, _ := setupService(t, portal)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	courses, err := svc.GetSimpleCoursesByYear(ctx, 113)
	require.NoError(t, err)
	require.Nil(t, courses, "partial sweep results must be discarded")
	// entries inserted before the failure stay cached
	require.Equal(t, 1, cache.Len())
}
