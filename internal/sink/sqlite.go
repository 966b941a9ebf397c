package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"capescraper/internal/cape"
	"capescraper/internal/chrono"
	"capescraper/internal/db"

	"github.com/google/uuid"
)

// SQLite stores every run under its own id, so successive runs can be compared.
type SQLite struct {
	database *sql.DB
	qry      *db.Queries
	makeTx   db.MakeTx
	time     chrono.TimeAPI
	owned    bool

	runID    string
	admitted int64
}

// NewSQLite creates the schema if needed and registers a new run. When owned is set the database is
// closed with the sink.
func NewSQLite(ctx context.Context, database *sql.DB, clock chrono.TimeAPI, owned bool) (*SQLite, error) {
	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{
		database: database,
		qry:      db.New(database),
		makeTx:   db.NewMakeTx(database),
		time:     clock,
		owned:    owned,
		runID:    uuid.NewString(),
	}
	err = s.qry.CreateRun(ctx, db.CreateRunParams{
		ID:        s.runID,
		StartedAt: clock.Now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return s, nil
}

// RunID identifies the rows written by this sink.
func (s *SQLite) RunID() string {
	return s.runID
}

func nullInt(o cape.Optional[int]) sql.NullInt64 {
	v, ok := o.Get()
	return sql.NullInt64{Int64: int64(v), Valid: ok}
}

func nullFloat(o cape.Optional[float64]) sql.NullFloat64 {
	v, ok := o.Get()
	return sql.NullFloat64{Float64: v, Valid: ok}
}

func queryKind(q cape.Query) string {
	if q.Kind == cape.SubjectQuery {
		return db.QueryKindSubject
	}
	return db.QueryKindDepartment
}

// Write inserts the batch in one transaction, a batch is either stored whole or not at all.
func (s *SQLite) Write(ctx context.Context, query cape.Query, records []cape.EvaluationRecord) error {
	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	for _, r := range records {
		err := tx.InsertEvaluation(ctx, db.InsertEvaluationParams{
			RunID:               s.runID,
			QueryKind:           queryKind(query),
			QueryGroup:          query.Group(),
			Instructor:          r.Instructor,
			CourseCode:          r.CourseCode,
			CourseTitle:         r.CourseTitle,
			Term:                r.Term,
			Enrolled:            nullInt(r.Enrolled),
			EvaluationsMade:     nullInt(r.EvaluationsMade),
			RecommendClass:      nullFloat(r.RecommendClass),
			RecommendInstructor: nullFloat(r.RecommendInstructor),
			StudyHoursPerWeek:   nullFloat(r.StudyHoursPerWeek),
			AvgGradeExpected:    nullFloat(r.AvgGradeExpected),
			AvgGradeReceived:    nullFloat(r.AvgGradeReceived),
		})
		if err != nil {
			return err
		}
	}

	err = commit()
	if err != nil {
		return err
	}
	s.admitted += int64(len(records))
	return nil
}

// Flush does nothing, every write is committed.
func (s *SQLite) Flush() error {
	return nil
}

// Close marks the run finished and checks that every admitted record made it into the database.
func (s *SQLite) Close() error {
	ctx := context.Background()
	err := s.qry.FinishRun(ctx, db.FinishRunParams{
		ID:         s.runID,
		FinishedAt: sql.NullInt64{Int64: s.time.Now().Unix(), Valid: true},
		Admitted:   s.admitted,
	})
	if err == nil {
		var stored int64
		stored, err = s.qry.CountEvaluations(ctx, s.runID)
		if err == nil && stored != s.admitted {
			err = fmt.Errorf("run %s stored %d evaluations, %d were admitted", s.runID, stored, s.admitted)
		}
	}
	if s.owned {
		err = errors.Join(err, s.database.Close())
	}
	return err
}

// Run is a stored scrape run. FinishedAt is zero while the run has not been closed.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Admitted   int64
	Stored     int64
}

// ReadRunInfo returns the bookkeeping of runID along with the number of evaluations stored under it.
func ReadRunInfo(ctx context.Context, database *sql.DB, runID string) (Run, error) {
	qry := db.New(database)
	row, err := qry.GetRun(ctx, runID)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	stored, err := qry.CountEvaluations(ctx, runID)
	if err != nil {
		return Run{}, fmt.Errorf("count evaluations of %s: %w", runID, err)
	}
	run := Run{
		ID:        row.ID,
		StartedAt: time.Unix(row.StartedAt, 0).In(chrono.LA()),
		Admitted:  row.Admitted,
		Stored:    stored,
	}
	if row.FinishedAt.Valid {
		run.FinishedAt = time.Unix(row.FinishedAt.Int64, 0).In(chrono.LA())
	}
	return run, nil
}

func optionalInt(n sql.NullInt64) cape.Optional[int] {
	if !n.Valid {
		return cape.None[int]()
	}
	return cape.Some(int(n.Int64))
}

func optionalFloat(n sql.NullFloat64) cape.Optional[float64] {
	if !n.Valid {
		return cape.None[float64]()
	}
	return cape.Some(n.Float64)
}

// ReadRun returns the records stored under runID, in insertion order.
func ReadRun(ctx context.Context, database *sql.DB, runID string) ([]cape.EvaluationRecord, error) {
	rows, err := db.New(database).ListEvaluations(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make([]cape.EvaluationRecord, len(rows))
	for i, row := range rows {
		out[i] = cape.EvaluationRecord{
			Instructor:          row.Instructor,
			CourseCode:          row.CourseCode,
			CourseTitle:         row.CourseTitle,
			Term:                row.Term,
			Enrolled:            optionalInt(row.Enrolled),
			EvaluationsMade:     optionalInt(row.EvaluationsMade),
			RecommendClass:      optionalFloat(row.RecommendClass),
			RecommendInstructor: optionalFloat(row.RecommendInstructor),
			StudyHoursPerWeek:   optionalFloat(row.StudyHoursPerWeek),
			AvgGradeExpected:    optionalFloat(row.AvgGradeExpected),
			AvgGradeReceived:    optionalFloat(row.AvgGradeReceived),
		}
	}
	return out, nil
}
