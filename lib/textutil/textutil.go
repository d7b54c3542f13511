package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var whitespaceCharRegex = regexp.MustCompile(`\s`)

func NormalizeName(name string) string {
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// FoldWhitespace replaces every whitespace character with a single
// plain space, leaving the rest of the string untouched.
func FoldWhitespace(s string) string {
	return whitespaceCharRegex.ReplaceAllString(s, " ")
}

// ContainsRunes reports whether every rune of query appears somewhere
// in s, regardless of order.
func ContainsRunes(s, query string) bool {
	for _, r := range query {
		if !strings.ContainsRune(s, r) {
			return false
		}
	}
	return true
}
