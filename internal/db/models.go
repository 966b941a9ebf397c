package db

import (
	"database/sql"
)

type ScrapeRun struct {
	ID         string
	StartedAt  int64
	FinishedAt sql.NullInt64
	Admitted   int64
}

type Evaluation struct {
	RunID               string
	QueryKind           string
	QueryGroup          string
	Instructor          string
	CourseCode          string
	CourseTitle         string
	Term                string
	Enrolled            sql.NullInt64
	EvaluationsMade     sql.NullInt64
	RecommendClass      sql.NullFloat64
	RecommendInstructor sql.NullFloat64
	StudyHoursPerWeek   sql.NullFloat64
	AvgGradeExpected    sql.NullFloat64
	AvgGradeReceived    sql.NullFloat64
}
