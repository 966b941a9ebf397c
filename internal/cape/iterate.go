package cape

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"capescraper/internal/assert"
	"capescraper/internal/chrono"
	"capescraper/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_iterator_departments = "iterator.departments"
	report_iterator_submit      = "iterator.submit"
	report_iterator_timeout     = "iterator.timeout"
	report_iterator_page_source = "iterator.page-source"
	report_iterator_filter      = "iterator.filter"
	report_iterator_admitted    = "iterator.admitted"
)

type QueryStatus int

const (
	QueryHarvested QueryStatus = iota
	QuerySkipped
)

func (s QueryStatus) String() string {
	if s == QuerySkipped {
		return "skipped"
	}
	return "harvested"
}

// QueryResult is the outcome of one query. Skipped queries carry the reason and contribute nothing.
type QueryResult struct {
	Query     Query
	Status    QueryStatus
	Reason    string
	Scanned   int
	Admitted  int
	Malformed int
	Elapsed   time.Duration
}

// Summary describes a whole run.
type Summary struct {
	Results []QueryResult
	Total   int
	Elapsed time.Duration
}

// Skipped returns the results of queries that contributed nothing because they failed.
func (s Summary) Skipped() []QueryResult {
	var out []QueryResult
	for _, r := range s.Results {
		if r.Status == QuerySkipped {
			out = append(out, r)
		}
	}
	return out
}

type Options struct {
	// BaseURL is navigated to before the subject searches, defaults to BaseURL.
	BaseURL string
	// Subjects are searched by text after the departments, defaults to OrphanSubjects.
	Subjects []string
	// SkipSubjects disables the subject pass.
	SkipSubjects bool
	// Departments restricts the department pass to the matching entries, see MatchDepartments.
	Departments []string
	Wait        WaitOptions
}

// Iterator runs every query of a scrape against one session and streams admitted records to a sink.
type Iterator struct {
	session Session
	sink    Sink
	time    chrono.TimeAPI
	tel     telemetry.API
	waiter  LoadWaiter
	opts    Options
}

func NewIterator(session Session, sink Sink, time chrono.TimeAPI, tel telemetry.API, opts Options) Iterator {
	assert.NotNil(session)
	assert.NotNil(sink)
	assert.NotNil(time)
	assert.NotNil(tel)

	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.Subjects == nil {
		opts.Subjects = OrphanSubjects
	}

	tel = telemetry.NewScopedAPI("cape", tel)
	return Iterator{
		session: session,
		sink:    sink,
		time:    time,
		tel:     tel,
		waiter:  NewLoadWaiter(session, time, tel, opts.Wait),
		opts:    opts,
	}
}

// Departments reads the department dropdown, without the leading "select a department" placeholder.
func (it Iterator) Departments(ctx context.Context) ([]Query, error) {
	options, err := it.session.FindAll(ctx, DepartmentOptions)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("list departments: no options in %s", DepartmentSelect)
	}

	departments := make([]Query, 0, len(options)-1)
	for i, opt := range options[1:] {
		value, _, err := opt.Attribute(ctx, "value")
		if err != nil {
			return nil, fmt.Errorf("read department option %d: %w", i+1, err)
		}
		label, err := opt.Text(ctx)
		if err != nil {
			return nil, fmt.Errorf("read department option %d: %w", i+1, err)
		}
		label = cleanNodeText(label)
		if value == "" {
			value = label
		}
		departments = append(departments, DepartmentOf(value, label))
	}
	return departments, nil
}

// Run performs the department pass then the subject pass. The sink is closed when Run returns. Only
// failures that make further queries pointless are returned, per-query failures end up in the summary.
func (it Iterator) Run(ctx context.Context) (summary Summary, err error) {
	ctx, span := tracer.Start(ctx, "iterator:Run")
	defer span.End()

	start := it.time.Now()
	defer func() {
		err = errors.Join(err, it.sink.Close())
		summary.Elapsed = it.time.Now().Sub(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "run stopped")
		}
		it.tel.ReportCount(report_iterator_admitted, int64(summary.Total))
	}()

	departments, err := it.Departments(ctx)
	if err != nil {
		it.tel.ReportBroken(report_iterator_departments, err)
		return summary, err
	}
	if len(it.opts.Departments) > 0 {
		var unmatched []string
		departments, unmatched = MatchDepartments(departments, it.opts.Departments)
		if len(unmatched) > 0 {
			it.tel.ReportWarning(report_iterator_filter, "no department matches", strings.Join(unmatched, ", "))
		}
	}

	dedup := NewDeduplicator()
	harvester := NewHarvester(dedup, it.tel)

	for _, q := range departments {
		result, err := it.runQuery(ctx, harvester, q)
		summary.Results = append(summary.Results, result)
		summary.Total += result.Admitted
		if err != nil {
			return summary, err
		}
	}

	if it.opts.SkipSubjects || len(it.opts.Subjects) == 0 {
		return summary, nil
	}

	// reset the form, the subject search must not be narrowed by the last department
	err = it.session.Navigate(ctx, it.opts.BaseURL)
	if err != nil {
		return summary, fmt.Errorf("navigate to %s: %w", it.opts.BaseURL, err)
	}
	for _, code := range slices.Clone(it.opts.Subjects) {
		result, err := it.runQuery(ctx, harvester, SubjectOf(code))
		summary.Results = append(summary.Results, result)
		summary.Total += result.Admitted
		if err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (it Iterator) skip(result QueryResult, reason string) QueryResult {
	result.Status = QuerySkipped
	result.Reason = reason
	return result
}

func (it Iterator) runQuery(ctx context.Context, harvester Harvester, q Query) (QueryResult, error) {
	ctx, span := tracer.Start(ctx, "iterator:Query")
	defer span.End()
	span.SetAttributes(
		attribute.String("kind", q.Kind.String()),
		attribute.String("query", q.Label),
	)

	start := it.time.Now()
	result, err := it.query(ctx, harvester, q)
	result.Elapsed = it.time.Now().Sub(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
	}
	return result, err
}

func (it Iterator) query(ctx context.Context, harvester Harvester, q Query) (QueryResult, error) {
	result := QueryResult{Query: q}

	var err error
	switch q.Kind {
	case DepartmentQuery:
		err = it.submitDepartment(ctx, q)
	case SubjectQuery:
		err = it.submitSubject(ctx, q)
	}
	if err != nil {
		if isFatal(ctx, err) {
			return it.skip(result, err.Error()), err
		}
		it.tel.ReportWarning(report_iterator_submit, q.Label, err)
		return it.skip(result, fmt.Sprintf("submit: %v", err)), nil
	}

	settled, err := it.waiter.Wait(ctx)
	if err != nil {
		return it.skip(result, err.Error()), err
	}
	if !settled {
		it.tel.ReportWarning(report_iterator_timeout, q.Label)
		return it.skip(result, "timed out waiting for results"), nil
	}
	it.tel.ReportDebug("results loaded", q.Kind.String(), q.Label)

	markup, err := it.session.PageSource(ctx)
	if err != nil {
		if isFatal(ctx, err) {
			return it.skip(result, err.Error()), err
		}
		it.tel.ReportWarning(report_iterator_page_source, q.Label, err)
		return it.skip(result, fmt.Sprintf("page source: %v", err)), nil
	}

	harvest, err := harvester.Harvest(ctx, markup, q.Label)
	if err != nil {
		it.tel.ReportWarning(report_iterator_page_source, q.Label, err)
		return it.skip(result, err.Error()), nil
	}
	result.Status = QueryHarvested
	result.Scanned = harvest.Scanned
	result.Admitted = harvest.Admitted()
	result.Malformed = harvest.Malformed

	if len(harvest.Records) == 0 {
		return result, nil
	}
	err = it.sink.Write(ctx, q, harvest.Records)
	if err != nil {
		return result, fmt.Errorf("write %d records of %s: %w", len(harvest.Records), q.Label, err)
	}
	err = it.sink.Flush()
	if err != nil {
		return result, fmt.Errorf("flush after %s: %w", q.Label, err)
	}
	it.tel.ReportDebug("harvested", q.Label, result.Admitted, result.Scanned)
	return result, nil
}

func (it Iterator) submitDepartment(ctx context.Context, q Query) error {
	dropdown, err := it.session.Find(ctx, DepartmentSelect)
	if err != nil {
		return err
	}
	err = dropdown.SetValue(ctx, q.Value)
	if err != nil {
		return err
	}
	return it.clickSubmit(ctx)
}

func (it Iterator) submitSubject(ctx context.Context, q Query) error {
	search, err := it.session.Find(ctx, CourseSearchInput)
	if err != nil {
		return err
	}
	err = search.Clear(ctx)
	if err != nil {
		return err
	}
	err = search.SendKeys(ctx, q.Value)
	if err != nil {
		return err
	}
	return it.clickSubmit(ctx)
}

func (it Iterator) clickSubmit(ctx context.Context) error {
	submit, err := it.session.Find(ctx, SubmitButton)
	if err != nil {
		return err
	}
	return submit.Click(ctx)
}
