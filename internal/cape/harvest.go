package cape

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"capescraper/internal/assert"
	"capescraper/internal/telemetry"
	"capescraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("capescraper.internal.cape")

const (
	report_harvester_no_table = "harvester.no-table"
	report_harvester_no_rows  = "harvester.no-rows"
	report_harvester_parse    = "harvester.parse-row"
)

// columns of the results table, the layout is not self describing.
const (
	colInstructor = iota
	colCourse
	colTerm
	colEnrolled
	colEvaluations
	colRecommendClass
	colRecommendInstructor
	colStudyHours
	colGradeExpected
	colGradeReceived

	minColumns
)

// ErrMalformedRow means a results row does not line up with the expected table layout.
var ErrMalformedRow = errors.New("malformed results row")

// Harvest is what one results page contributed.
type Harvest struct {
	// Records are the admitted (previously unseen) records, in table order.
	Records []EvaluationRecord
	// Scanned counts data rows, Malformed the ones that were skipped.
	Scanned   int
	Malformed int
}

func (h Harvest) Admitted() int {
	return len(h.Records)
}

// Harvester turns a loaded results page into records.
type Harvester struct {
	dedup *Deduplicator
	tel   telemetry.API
}

func NewHarvester(dedup *Deduplicator, tel telemetry.API) Harvester {
	assert.NotNil(dedup)
	assert.NotNil(tel)
	return Harvester{
		dedup: dedup,
		tel:   tel,
	}
}

// Harvest extracts every row of the results table in markup. label names the query that produced the
// page. A page without results is not an error.
func (h Harvester) Harvest(ctx context.Context, markup, label string) (Harvest, error) {
	_, span := tracer.Start(ctx, "harvester:Harvest")
	defer span.End()
	span.SetAttributes(attribute.String("query", label))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return Harvest{}, fmt.Errorf("parse results page for %s: %w", label, err)
	}

	table := doc.Find("#" + ResultsTableID).First()
	if table.Length() == 0 {
		h.tel.ReportWarning(report_harvester_no_table, label)
		return Harvest{}, nil
	}

	rows := table.ChildrenFiltered("tbody").First().ChildrenFiltered("tr").FilterFunction(
		func(_ int, row *goquery.Selection) bool {
			// header rows are made of <th>
			cells := row.ChildrenFiltered("td")
			return cells.Length() > 0 && !isPagerRow(cells)
		},
	)
	if rows.Length() == 0 {
		h.tel.ReportWarning(report_harvester_no_rows, label)
		return Harvest{}, nil
	}

	var result Harvest
	rows.Each(func(i int, row *goquery.Selection) {
		result.Scanned++

		record, err := parseRow(row)
		if err != nil {
			result.Malformed++
			h.tel.ReportBroken(report_harvester_parse, err, label, i)
			return
		}
		if !h.dedup.Admit(record) {
			return
		}
		result.Records = append(result.Records, record)
	})

	span.SetAttributes(
		attribute.Int("scanned", result.Scanned),
		attribute.Int("admitted", result.Admitted()),
		attribute.Int("malformed", result.Malformed),
	)
	return result, nil
}

// isPagerRow reports the page links row the grid adds to long results, a single cell spanning the table.
func isPagerRow(cells *goquery.Selection) bool {
	if cells.Length() != 1 {
		return false
	}
	_, spans := cells.Attr("colspan")
	return spans
}

func parseRow(row *goquery.Selection) (EvaluationRecord, error) {
	cells := row.ChildrenFiltered("td")
	if cells.Length() < minColumns {
		return EvaluationRecord{}, fmt.Errorf("%w: %d cells, expected at least %d", ErrMalformedRow, cells.Length(), minColumns)
	}
	cell := func(i int) *html.Node {
		return cells.Get(i)
	}

	course := htmlutil.NestedText(cell(colCourse))
	code, title, ok := strings.Cut(course, "-")
	if !ok {
		return EvaluationRecord{}, fmt.Errorf("%w: course cell %q has no '-' separator", ErrMalformedRow, strings.TrimSpace(course))
	}

	return EvaluationRecord{
		Instructor:  strings.TrimSpace(htmlutil.GetText(cell(colInstructor))),
		CourseCode:  cleanNodeText(code),
		CourseTitle: cleanNodeText(StripGradeMarker(title)),
		Term:        cleanNodeText(htmlutil.GetText(cell(colTerm))),

		Enrolled:            ParseInt(htmlutil.GetText(cell(colEnrolled))),
		EvaluationsMade:     ParseInt(htmlutil.NestedText(cell(colEvaluations))),
		RecommendClass:      ParsePercent(htmlutil.NestedText(cell(colRecommendClass))),
		RecommendInstructor: ParsePercent(htmlutil.NestedText(cell(colRecommendInstructor))),
		StudyHoursPerWeek:   ParseReal(htmlutil.NestedText(cell(colStudyHours))),
		AvgGradeExpected:    ParseGPA(htmlutil.NestedText(cell(colGradeExpected))),
		AvgGradeReceived:    ParseGPA(htmlutil.NestedText(cell(colGradeReceived))),
	}, nil
}
