package sink

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"capescraper/internal/cape"
	"capescraper/internal/chrono"
	configlibsql "capescraper/lib/configutil/libsql"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var optionalComparer = cmp.AllowUnexported(cape.Optional[int]{}, cape.Optional[float64]{})

var (
	departmentCSE = cape.DepartmentOf("CSE", "CSE - Computer Science & Engineering")
	subjectAWP    = cape.SubjectOf("AWP")
)

func javaRecord() cape.EvaluationRecord {
	return cape.EvaluationRecord{
		Instructor:          "Politz, Joseph Gibbs",
		CourseCode:          "CSE 8B",
		CourseTitle:         "Intro/Computer Sci Java (II)",
		Term:                "SP20",
		Enrolled:            cape.Some(306),
		EvaluationsMade:     cape.Some(163),
		RecommendClass:      cape.Some(92.6),
		RecommendInstructor: cape.Some(96.3),
		StudyHoursPerWeek:   cape.Some(6.84),
		AvgGradeExpected:    cape.Some(3.72),
		AvgGradeReceived:    cape.Some(3.45),
	}
}

func sparseRecord() cape.EvaluationRecord {
	return cape.EvaluationRecord{
		Instructor:  "Eggers, Mark",
		CourseCode:  "CSE 20",
		CourseTitle: "Discrete Mathematics",
		Term:        "FA19",
		Enrolled:    cape.Some(180),
	}
}

func writingRecord() cape.EvaluationRecord {
	return cape.EvaluationRecord{
		Instructor:          "Staff",
		CourseCode:          "AWP 4A",
		CourseTitle:         `Analytical Writing "Rhetoric"`,
		Term:                "SP20",
		Enrolled:            cape.Some(24),
		EvaluationsMade:     cape.Some(20),
		RecommendClass:      cape.Some(95.0),
		RecommendInstructor: cape.Some(100.0),
		StudyHoursPerWeek:   cape.Some(4.1),
		AvgGradeExpected:    cape.Some(3.9),
		AvgGradeReceived:    cape.None[float64](),
	}
}

func writeRun(t *testing.T, s cape.Sink) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Write(ctx, departmentCSE, []cape.EvaluationRecord{javaRecord(), sparseRecord()}))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Write(ctx, subjectAWP, []cape.EvaluationRecord{writingRecord()}))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())
}

func allRecords() []cape.EvaluationRecord {
	return []cape.EvaluationRecord{javaRecord(), sparseRecord(), writingRecord()}
}

func TestTSVRoundTrip(t *testing.T) {
	for _, header := range []bool{true, false} {
		var buf bytes.Buffer
		s, err := NewTSV(&buf, header)
		require.NoError(t, err)
		writeRun(t, s)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if header {
			require.Len(t, lines, 4)
			require.Equal(t, strings.Join(cape.FieldNames, "\t"), lines[0])
			lines = lines[1:]
		} else {
			require.Len(t, lines, 3)
		}
		require.Equal(t, "Eggers, Mark\tCSE 20\tDiscrete Mathematics\tFA19\t180\tN/A\tN/A\tN/A\tN/A\tN/A\tN/A", lines[1])

		records, err := ReadTSV(&buf)
		require.NoError(t, err)
		if diff := cmp.Diff(allRecords(), records, optionalComparer); diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestTSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cape.tsv")
	s, err := CreateTSV(path, true)
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), departmentCSE, []cape.EvaluationRecord{javaRecord()}))
	require.NoError(t, s.Flush())

	// flushed records are visible before the sink is closed
	records, err := ReadTSVFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, s.Close())
}

func TestReadTSVRejectsGarbage(t *testing.T) {
	_, err := ReadTSV(strings.NewReader("a\tb\tc\n"))
	require.Error(t, err)

	line := "Staff\tAWP 4A\tWriting\tSP20\tlots\t1\t1\t1\t1\t1\t1\n"
	_, err = ReadTSV(strings.NewReader(line))
	require.ErrorContains(t, err, "enrolled")
}

func TestGroupedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cape.json")
	writeRun(t, NewGroupedJSON(path))

	groups, err := ReadGroupedJSON(path)
	require.NoError(t, err)
	expected := map[string][]cape.EvaluationRecord{
		"CSE": {javaRecord(), sparseRecord()},
		"AWP": {writingRecord()},
	}
	if diff := cmp.Diff(expected, groups, optionalComparer); diff != "" {
		t.Fatal(diff)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"avg_grade_received": null`)
}

func TestGroupedJSONEmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cape.json")
	require.NoError(t, NewGroupedJSON(path).Close())

	groups, err := ReadGroupedJSON(path)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	database, err := configlibsql.Struct{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	defer database.Close()

	clock := chrono.NewFakeTime(time.Date(2020, time.June, 1, 12, 0, 0, 0, chrono.LA()))
	first, err := NewSQLite(ctx, database, clock, false)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	writeRun(t, first)

	second, err := NewSQLite(ctx, database, clock, false)
	require.NoError(t, err)
	require.NotEqual(t, first.RunID(), second.RunID())
	require.NoError(t, second.Write(ctx, subjectAWP, []cape.EvaluationRecord{writingRecord()}))
	require.NoError(t, second.Close())

	records, err := ReadRun(ctx, database, first.RunID())
	require.NoError(t, err)
	if diff := cmp.Diff(allRecords(), records, optionalComparer); diff != "" {
		t.Fatal(diff)
	}

	records, err = ReadRun(ctx, database, second.RunID())
	require.NoError(t, err)
	require.Len(t, records, 1)

	run, err := ReadRunInfo(ctx, database, first.RunID())
	require.NoError(t, err)
	require.EqualValues(t, 3, run.Admitted)
	require.EqualValues(t, 3, run.Stored)
	require.Equal(t, time.Minute, run.FinishedAt.Sub(run.StartedAt))

	run, err = ReadRunInfo(ctx, database, second.RunID())
	require.NoError(t, err)
	require.EqualValues(t, 1, run.Admitted)
	require.EqualValues(t, 1, run.Stored)

	_, err = ReadRunInfo(ctx, database, "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)

	var group string
	err = database.QueryRowContext(ctx,
		"select queryGroup from Evaluation where runId = ? and courseCode = 'AWP 4A'", first.RunID(),
	).Scan(&group)
	require.NoError(t, err)
	require.Equal(t, "AWP", group)
}

func TestXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cape.xlsx")
	s, err := NewXLSX(path)
	require.NoError(t, err)
	writeRun(t, s)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, append([]string{"group"}, cape.FieldNames...), rows[0])
	require.Equal(t, []string{"CSE", "Politz, Joseph Gibbs", "CSE 8B", "Intro/Computer Sci Java (II)", "SP20", "306", "163", "92.6", "96.3", "6.84", "3.72", "3.45"}, rows[1])
	require.Equal(t, "AWP", rows[3][0])
	require.Equal(t, []string{"CSE", "Eggers, Mark", "CSE 20", "Discrete Mathematics", "FA19", "180"}, rows[2][:6])
	for _, blank := range rows[2][6:] {
		require.Empty(t, blank)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	clock := chrono.NewFakeTime(time.Unix(0, 0))

	s, err := Open(context.Background(), []Output{
		{Format: FormatTSV, Path: filepath.Join(dir, "out", "cape.tsv"), Header: true},
		{Format: FormatJSON, Path: filepath.Join(dir, "out", "cape.json")},
		{Format: FormatSQLite, Path: filepath.Join(dir, "out", "cape.db")},
	}, clock)
	require.NoError(t, err)
	require.IsType(t, Multi{}, s)
	writeRun(t, s)

	records, err := ReadTSVFile(filepath.Join(dir, "out", "cape.tsv"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	groups, err := ReadGroupedJSON(filepath.Join(dir, "out", "cape.json"))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.FileExists(t, filepath.Join(dir, "out", "cape.db"))

	single, err := Open(context.Background(), []Output{{Path: filepath.Join(dir, "single.tsv")}}, clock)
	require.NoError(t, err)
	require.IsType(t, &TSV{}, single)
	require.NoError(t, single.Close())

	_, err = Open(context.Background(), []Output{{Format: "parquet", Path: "x"}}, clock)
	require.ErrorContains(t, err, "unknown output format")
	_, err = Open(context.Background(), nil, clock)
	require.Error(t, err)
}
