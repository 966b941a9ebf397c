package cape

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NotAvailable is how an absent value is rendered in flat text output. The portal uses the same marker,
// so reading it back through the field parsers yields an absent value again.
const NotAvailable = "N/A"

// Optional is a numeric value that the portal may not report (ex. a class with no evaluations has no
// recommend percentage). The zero value is absent.
type Optional[T int | float64] struct {
	value T
	valid bool
}

func Some[T int | float64](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

func None[T int | float64]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Optional[T]) Valid() bool {
	return o.valid
}

// Or returns the value, or fallback when absent.
func (o Optional[T]) Or(fallback T) T {
	if !o.valid {
		return fallback
	}
	return o.value
}

// String renders the value so that strconv parses it back exactly, or NotAvailable when absent.
func (o Optional[T]) String() string {
	if !o.valid {
		return NotAvailable
	}
	switch v := any(o.value).(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(o.value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// EvaluationRecord is one row of the evaluation results table.
type EvaluationRecord struct {
	Instructor  string `json:"instructor"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	Term        string `json:"term"`

	Enrolled            Optional[int]     `json:"enrolled"`
	EvaluationsMade     Optional[int]     `json:"evaluations_made"`
	RecommendClass      Optional[float64] `json:"recommend_class"`
	RecommendInstructor Optional[float64] `json:"recommend_instructor"`
	StudyHoursPerWeek   Optional[float64] `json:"study_hours_per_week"`
	AvgGradeExpected    Optional[float64] `json:"avg_grade_expected"`
	AvgGradeReceived    Optional[float64] `json:"avg_grade_received"`
}

// FieldNames lists the record fields in output order.
var FieldNames = []string{
	"instructor",
	"course_code",
	"course_title",
	"term",
	"enrolled",
	"evaluations_made",
	"recommend_class",
	"recommend_instructor",
	"study_hours_per_week",
	"avg_grade_expected",
	"avg_grade_received",
}

// Fields renders every field in FieldNames order.
func (r EvaluationRecord) Fields() []string {
	return []string{
		r.Instructor,
		r.CourseCode,
		r.CourseTitle,
		r.Term,
		r.Enrolled.String(),
		r.EvaluationsMade.String(),
		r.RecommendClass.String(),
		r.RecommendInstructor.String(),
		r.StudyHoursPerWeek.String(),
		r.AvgGradeExpected.String(),
		r.AvgGradeReceived.String(),
	}
}

// RecordFromFields is the inverse of EvaluationRecord.Fields. Unlike the page parsers it is strict: a
// numeric field that is neither NotAvailable nor a number is an error.
func RecordFromFields(fields []string) (EvaluationRecord, error) {
	if len(fields) != len(FieldNames) {
		return EvaluationRecord{}, fmt.Errorf("expected %d fields, got %d", len(FieldNames), len(fields))
	}

	r := EvaluationRecord{
		Instructor:  fields[0],
		CourseCode:  fields[1],
		CourseTitle: fields[2],
		Term:        fields[3],
	}

	var err error
	if r.Enrolled, err = strictInt(fields[4]); err != nil {
		return EvaluationRecord{}, fmt.Errorf("%s: %w", FieldNames[4], err)
	}
	if r.EvaluationsMade, err = strictInt(fields[5]); err != nil {
		return EvaluationRecord{}, fmt.Errorf("%s: %w", FieldNames[5], err)
	}

	reals := []*Optional[float64]{
		&r.RecommendClass,
		&r.RecommendInstructor,
		&r.StudyHoursPerWeek,
		&r.AvgGradeExpected,
		&r.AvgGradeReceived,
	}
	for i, target := range reals {
		idx := 6 + i
		*target, err = strictReal(fields[idx])
		if err != nil {
			return EvaluationRecord{}, fmt.Errorf("%s: %w", FieldNames[idx], err)
		}
	}

	return r, nil
}

func strictInt(s string) (Optional[int], error) {
	if s == NotAvailable {
		return None[int](), nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return None[int](), err
	}
	return Some(v), nil
}

func strictReal(s string) (Optional[float64], error) {
	if s == NotAvailable {
		return None[float64](), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None[float64](), err
	}
	return Some(v), nil
}
