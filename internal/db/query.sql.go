package db

import (
	"context"
	"database/sql"
)

const createRun = `-- name: CreateRun :exec
insert into ScrapeRun(id, startedAt) values (?, ?)
`

type CreateRunParams struct {
	ID        string
	StartedAt int64
}

func (q *Queries) CreateRun(ctx context.Context, arg CreateRunParams) error {
	_, err := q.db.ExecContext(ctx, createRun, arg.ID, arg.StartedAt)
	return err
}

const finishRun = `-- name: FinishRun :exec
update ScrapeRun set finishedAt = ?, admitted = ? where id = ?
`

type FinishRunParams struct {
	FinishedAt sql.NullInt64
	Admitted   int64
	ID         string
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.ExecContext(ctx, finishRun, arg.FinishedAt, arg.Admitted, arg.ID)
	return err
}

const getRun = `-- name: GetRun :one
select id, startedAt, finishedAt, admitted from ScrapeRun where id = ?
`

func (q *Queries) GetRun(ctx context.Context, id string) (ScrapeRun, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i ScrapeRun
	err := row.Scan(
		&i.ID,
		&i.StartedAt,
		&i.FinishedAt,
		&i.Admitted,
	)
	return i, err
}

const insertEvaluation = `-- name: InsertEvaluation :exec
insert into Evaluation(
    runId, queryKind, queryGroup,
    instructor, courseCode, courseTitle, term,
    enrolled, evaluationsMade,
    recommendClass, recommendInstructor, studyHoursPerWeek,
    avgGradeExpected, avgGradeReceived
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertEvaluationParams struct {
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

func (q *Queries) InsertEvaluation(ctx context.Context, arg InsertEvaluationParams) error {
	_, err := q.db.ExecContext(ctx, insertEvaluation,
		arg.RunID,
		arg.QueryKind,
		arg.QueryGroup,
		arg.Instructor,
		arg.CourseCode,
		arg.CourseTitle,
		arg.Term,
		arg.Enrolled,
		arg.EvaluationsMade,
		arg.RecommendClass,
		arg.RecommendInstructor,
		arg.StudyHoursPerWeek,
		arg.AvgGradeExpected,
		arg.AvgGradeReceived,
	)
	return err
}

const listEvaluations = `-- name: ListEvaluations :many
select runId, queryKind, queryGroup, instructor, courseCode, courseTitle, term, enrolled, evaluationsMade, recommendClass, recommendInstructor, studyHoursPerWeek, avgGradeExpected, avgGradeReceived from Evaluation where runId = ? order by rowid
`

func (q *Queries) ListEvaluations(ctx context.Context, runID string) ([]Evaluation, error) {
	rows, err := q.db.QueryContext(ctx, listEvaluations, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Evaluation
	for rows.Next() {
		var i Evaluation
		if err := rows.Scan(
			&i.RunID,
			&i.QueryKind,
			&i.QueryGroup,
			&i.Instructor,
			&i.CourseCode,
			&i.CourseTitle,
			&i.Term,
			&i.Enrolled,
			&i.EvaluationsMade,
			&i.RecommendClass,
			&i.RecommendInstructor,
			&i.StudyHoursPerWeek,
			&i.AvgGradeExpected,
			&i.AvgGradeReceived,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countEvaluations = `-- name: CountEvaluations :one
select count(*) from Evaluation where runId = ?
`

func (q *Queries) CountEvaluations(ctx context.Context, runID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEvaluations, runID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
