package course

// SimpleCourse is the projection used for year-wide listings. It omits
// the link/location/note fields to keep bulk payloads small.
type SimpleCourse struct {
	Year     int      `json:"year"`
	Term     int      `json:"term"`
	UID      string   `json:"uid"`
	Title    string   `json:"title"`
	Teachers []string `json:"teachers"`
	Times    []string `json:"times"`
}

// Course is a fully parsed course record.
//
// TeacherURLs parallels Teachers index-for-index. Locations may run
// shorter than Times when slots share a room, and may carry one extra
// trailing entry extracted from the free-text note.
type Course struct {
	SimpleCourse
	TeacherURLs []string `json:"teacher_urls"`
	Locations   []string `json:"locations"`
	DetailURL   string   `json:"detail_url"`
	Note        string   `json:"note"`
}

// Record is a cached course entry. Detail reports whether the entry
// carries the full per-course fields or only the year-sweep projection.
type Record struct {
	Course
	Detail bool
}
