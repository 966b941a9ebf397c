package report

import (
	"math"
	"slices"
	"strings"

	"capescraper/internal/cape"
	"capescraper/lib/textutil"
)

// InstructorStats aggregates every evaluation of one instructor.
type InstructorStats struct {
	Instructor string
	// Sections is the number of course offerings, TotalEvaluations the evaluations submitted for them.
	Sections         int
	TotalEvaluations int

	MeanRecommendInstructor   cape.Optional[float64]
	MedianRecommendInstructor cape.Optional[float64]
	StdDevRecommendInstructor cape.Optional[float64]

	MeanGradeExpected   cape.Optional[float64]
	StdDevGradeExpected cape.Optional[float64]
	MeanGradeReceived   cape.Optional[float64]
	StdDevGradeReceived cape.Optional[float64]
}

type samples []float64

func (s *samples) add(o cape.Optional[float64]) {
	v, ok := o.Get()
	if ok {
		*s = append(*s, v)
	}
}

func (s samples) mean() cape.Optional[float64] {
	if len(s) == 0 {
		return cape.None[float64]()
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return cape.Some(sum / float64(len(s)))
}

func (s samples) median() cape.Optional[float64] {
	if len(s) == 0 {
		return cape.None[float64]()
	}
	sorted := slices.Clone(s)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return cape.Some(sorted[mid])
	}
	return cape.Some((sorted[mid-1] + sorted[mid]) / 2)
}

// stddev is the population standard deviation.
func (s samples) stddev() cape.Optional[float64] {
	mean, ok := s.mean().Get()
	if !ok {
		return cape.None[float64]()
	}
	var sum float64
	for _, v := range s {
		sum += (v - mean) * (v - mean)
	}
	return cape.Some(math.Sqrt(sum / float64(len(s))))
}

type accumulator struct {
	name        string
	sections    int
	evaluations int
	recommend   samples
	expected    samples
	received    samples
}

// Filter keeps records whose instructor or course code contains one of the terms, compared without case
// or whitespace. No terms keeps everything.
func Filter(records []cape.EvaluationRecord, terms []string) []cape.EvaluationRecord {
	if len(terms) == 0 {
		return records
	}
	matchers := make([]string, len(terms))
	for i, t := range terms {
		matchers[i] = textutil.NormalizeName(t)
	}

	var out []cape.EvaluationRecord
	for _, r := range records {
		if textutil.MatchName(r.Instructor, matchers) || textutil.MatchName(r.CourseCode, matchers) {
			out = append(out, r)
		}
	}
	return out
}

// Instructors groups records by instructor, sorted by name. Names that only differ in case or spacing
// are the same instructor.
func Instructors(records []cape.EvaluationRecord) []InstructorStats {
	groups := map[string]*accumulator{}
	for _, r := range records {
		name := strings.TrimSpace(r.Instructor)
		if name == "" {
			continue
		}
		key := textutil.NormalizeName(name)
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{name: name}
			groups[key] = acc
		}

		acc.sections++
		acc.evaluations += r.EvaluationsMade.Or(0)
		acc.recommend.add(r.RecommendInstructor)
		acc.expected.add(r.AvgGradeExpected)
		acc.received.add(r.AvgGradeReceived)
	}

	out := make([]InstructorStats, 0, len(groups))
	for _, acc := range groups {
		out = append(out, InstructorStats{
			Instructor:       acc.name,
			Sections:         acc.sections,
			TotalEvaluations: acc.evaluations,

			MeanRecommendInstructor:   acc.recommend.mean(),
			MedianRecommendInstructor: acc.recommend.median(),
			StdDevRecommendInstructor: acc.recommend.stddev(),

			MeanGradeExpected:   acc.expected.mean(),
			StdDevGradeExpected: acc.expected.stddev(),
			MeanGradeReceived:   acc.received.mean(),
			StdDevGradeReceived: acc.received.stddev(),
		})
	}
	slices.SortFunc(out, func(a, b InstructorStats) int {
		return strings.Compare(a.Instructor, b.Instructor)
	})
	return out
}
