package course

import (
	"regexp"
	"strings"

	"ntpuassist-backend/lib/htmlutil"
	"ntpuassist-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// the note sometimes embeds the classroom after one of these marker
// phrases; anything after the separator up to the next sentence-ending
// delimiter is the location
var classroomRegex = regexp.MustCompile(`(?:教室|上課地點)[:：為]([^ .，。；【` + "\n" + `]*)`)

// anchors whose schedule text carries this sentinel describe slots the
// department never maintained and are skipped entirely
const notMaintainedSentinel = "每週未維護"

// notePrefixRunes is the fixed-width label prefix in front of the note
// annotation text.
const notePrefixRunes = 3

type TitleField struct {
	Title     string
	DetailURL string
	Note      string
	// Location is the classroom pulled out of the note, or "" when the
	// note carries no recognizable marker.
	Location string
}

// ParseTitleField extracts the course title, detail link, note and
// embedded classroom from a title cell. Missing sub-elements degrade to
// empty fields rather than failing.
func ParseTitleField(sel *goquery.Selection) TitleField {
	var out TitleField

	anchor := sel.Find("a").First()
	if anchor.Length() > 0 {
		out.Title = strings.TrimSpace(anchor.Text())
		href, _ := anchor.Attr("href")
		out.DetailURL = htmlutil.HrefQuery(href)
	}

	noteRunes := []rune(sel.Find("font").First().Text())
	if len(noteRunes) > notePrefixRunes {
		out.Note = strings.TrimSpace(string(noteRunes[notePrefixRunes:]))
	}
	if out.Note != "" {
		if m := classroomRegex.FindStringSubmatch(out.Note); m != nil {
			out.Location = textutil.FoldWhitespace(m[1])
		}
	}

	return out
}

// ParseTeacherField collects teacher names and their reference links
// from a teacher cell. The two slices always have the same length: an
// anchor without a query-string href contributes an empty link at its
// position.
func ParseTeacherField(sel *goquery.Selection) (teachers []string, teacherURLs []string) {
	for _, anchor := range htmlutil.GetAnchors(sel.Find("a")) {
		teachers = append(teachers, anchor.Name)
		teacherURLs = append(teacherURLs, htmlutil.HrefQuery(anchor.Href))
	}
	return teachers, teacherURLs
}

// ParseTimeLocationField splits each schedule anchor on the first tab
// into a time slot and an optional room. Rooms may come out shorter
// than times; entries carrying the not-maintained sentinel are dropped
// from both lists.
func ParseTimeLocationField(sel *goquery.Selection) (times []string, locations []string) {
	for _, anchor := range htmlutil.GetAnchors(sel.Find("a")) {
		if strings.Contains(anchor.Name, notMaintainedSentinel) {
			continue
		}

		parts := strings.SplitN(anchor.Name, "\t", 2)
		times = append(times, parts[0])
		if len(parts) > 1 {
			locations = append(locations, parts[1])
		}
	}
	return times, locations
}
