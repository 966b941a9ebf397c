package textutil

import (
	"strings"
)

// NormalizeName lowercases name and drops every whitespace rune, so "Politz,  Joseph" and
// "politz, joseph" compare equal.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

// MatchName reports whether the normalized name contains one of matchers, which must already be
// normalized.
func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if m != "" && strings.Contains(name, m) {
			return true
		}
	}
	return false
}
