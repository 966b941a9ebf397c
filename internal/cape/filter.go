package cape

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// minLabelSimilarity is the Jaro-Winkler score a department label needs to match a free form name.
const minLabelSimilarity = 0.85

// MatchDepartments picks the departments named by wanted, which may be department codes ("CSE") or
// approximate labels ("computer science"). The result keeps dropdown order, unmatched lists the names
// that matched nothing.
func MatchDepartments(departments []Query, wanted []string) (matched []Query, unmatched []string) {
	picked := make([]bool, len(departments))

	for _, w := range wanted {
		name := strings.ToLower(strings.TrimSpace(w))
		if name == "" {
			continue
		}

		best := -1
		for i, d := range departments {
			if strings.EqualFold(d.Group(), name) || strings.EqualFold(d.Value, name) {
				best = i
				break
			}
		}

		if best < 0 {
			var bestScore float64
			for i, d := range departments {
				label := strings.ToLower(d.Label)
				_, title, ok := strings.Cut(label, "-")
				if !ok {
					title = label
				}
				score := max(
					matchr.JaroWinkler(name, label, false),
					matchr.JaroWinkler(name, strings.TrimSpace(title), false),
				)
				if score > bestScore {
					bestScore = score
					best = i
				}
			}
			if bestScore < minLabelSimilarity {
				best = -1
			}
		}

		if best < 0 {
			unmatched = append(unmatched, w)
			continue
		}
		picked[best] = true
	}

	for i, d := range departments {
		if picked[i] {
			matched = append(matched, d)
		}
	}
	return matched, unmatched
}
