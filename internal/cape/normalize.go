package cape

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"capescraper/lib/htmlutil"
)

// the field parsers never fail: anything they cannot read becomes an absent value, one odd cell must
// not cost the rest of the page.

func isNotAvailable(input string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(input)), "n/a")
}

// CleanText decodes html entities, trims and collapses whitespace runs into single spaces. It is meant
// for raw markup, text read out of a parsed document is already decoded and goes through cleanNodeText.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	return cleanNodeText(html.UnescapeString(input))
}

// cleanNodeText trims and collapses whitespace without decoding entities a second time, an "&amp;"
// still on the page after parsing is text the portal meant to show.
func cleanNodeText(input string) string {
	return htmlutil.CollapseWhitespace(input)
}

var gradeMarker = regexp.MustCompile(`\s*\([A-Za-z0-9]\)$`)

// StripGradeMarker removes a trailing single letter or digit in parentheses from a course title,
// ex. "Mathematical Reasoning (A)" -> "Mathematical Reasoning".
func StripGradeMarker(input string) string {
	input = strings.TrimSpace(input)
	return strings.TrimSpace(gradeMarker.ReplaceAllString(input, ""))
}

func ParseInt(input string) Optional[int] {
	if isNotAvailable(input) {
		return None[int]()
	}
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return None[int]()
	}
	return Some(v)
}

func ParseReal(input string) Optional[float64] {
	if isNotAvailable(input) {
		return None[float64]()
	}
	input = strings.TrimSpace(input)
	// ParseFloat also reads hex floats and digit separators, neither is a number the portal prints
	if strings.ContainsAny(input, "xXpP_") {
		return None[float64]()
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return None[float64]()
	}
	return Some(v)
}

// ParsePercent parses "87.5 %" style cells.
func ParsePercent(input string) Optional[float64] {
	if isNotAvailable(input) {
		return None[float64]()
	}
	input = strings.TrimSpace(input)
	input = strings.TrimSpace(strings.TrimSuffix(input, "%"))
	return ParseReal(input)
}

// ParseGPA parses "<Letter> (<GPA>)" cells, ex. "B+ (3.42)".
func ParseGPA(input string) Optional[float64] {
	if isNotAvailable(input) {
		return None[float64]()
	}
	segments := strings.Split(input, "(")
	if len(segments) != 2 {
		return None[float64]()
	}
	number, _, _ := strings.Cut(segments[1], ")")
	return ParseReal(number)
}
