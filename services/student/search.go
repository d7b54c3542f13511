package student

import (
	"sort"

	"github.com/antzucaro/matchr"

	"ntpuassist-backend/lib/textutil"
)

// SearchStudentsByName scans the cache for names containing every rune
// of the query, best matches first. Ranking uses Jaro-Winkler
// similarity so an exact name beats a superset.
func (s *Service) SearchStudentsByName(query string) []Student {
	query = textutil.NormalizeName(query)
	if query == "" {
		return nil
	}

	type scored struct {
		Student
		score float64
	}
	var hits []scored
	s.cache.Range(func(id, name string) bool {
		if textutil.ContainsRunes(name, query) {
			hits = append(hits, scored{
				Student: Student{ID: id, Name: name},
				score:   matchr.JaroWinkler(name, query, false),
			})
		}
		return true
	})

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].ID < hits[j].ID
	})

	students := make([]Student, len(hits))
	for i, h := range hits {
		students[i] = h.Student
	}
	return students
}
