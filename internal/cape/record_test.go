package cape

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleRecord() EvaluationRecord {
	return EvaluationRecord{
		Instructor:          "Politz, Joseph Gibbs",
		CourseCode:          "CSE 8B",
		CourseTitle:         "Intro/Computer Sci Java (II)",
		Term:                "SP20",
		Enrolled:            Some(306),
		EvaluationsMade:     Some(163),
		RecommendClass:      Some(92.6),
		RecommendInstructor: Some(96.3),
		StudyHoursPerWeek:   Some(6.84),
		AvgGradeExpected:    Some(3.72),
		AvgGradeReceived:    None[float64](),
	}
}

func TestOptional(t *testing.T) {
	v, ok := Some(3.5).Get()
	require.True(t, ok)
	require.Equal(t, 3.5, v)

	_, ok = None[int]().Get()
	require.False(t, ok)
	require.Equal(t, -1, None[int]().Or(-1))
	require.Equal(t, 4, Some(4).Or(-1))

	require.Equal(t, "N/A", None[float64]().String())
	require.Equal(t, "0.1", Some(0.1).String())
	require.Equal(t, "12", Some(12).String())

	var zero Optional[int]
	require.False(t, zero.Valid())
}

func TestRecordJSON(t *testing.T) {
	record := sampleRecord()

	data, err := json.Marshal(record)
	require.NoError(t, err)
	require.Contains(t, string(data), `"avg_grade_received":null`)
	require.Contains(t, string(data), `"enrolled":306`)

	var decoded EvaluationRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(record, decoded, cmp.AllowUnexported(Optional[int]{}, Optional[float64]{})); diff != "" {
		t.Fatal(diff)
	}
}

func TestRecordFieldsRoundTrip(t *testing.T) {
	records := []EvaluationRecord{
		sampleRecord(),
		{
			Instructor:  "Eggers, Mark",
			CourseCode:  "MATH 15A",
			CourseTitle: "Mathematical Reasoning",
			Term:        "FA19",
			Enrolled:    Some(180),
		},
		{},
	}

	for _, record := range records {
		line := strings.Join(record.Fields(), "\t")
		parsed, err := RecordFromFields(strings.Split(line, "\t"))
		require.NoError(t, err)
		require.Equal(t, record, parsed)
	}
}

func TestRecordFromFieldsErrors(t *testing.T) {
	_, err := RecordFromFields([]string{"a", "b"})
	require.Error(t, err)

	fields := sampleRecord().Fields()
	fields[6] = "ninety"
	_, err = RecordFromFields(fields)
	require.ErrorContains(t, err, "recommend_class")
}
