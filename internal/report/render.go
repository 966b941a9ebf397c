package report

import (
	"io"
	"strconv"
	"time"

	"capescraper/internal/cape"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func formatStat(o cape.Optional[float64], precision int) string {
	v, ok := o.Get()
	if !ok {
		return cape.NotAvailable
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// RenderInstructors writes one row per instructor.
func RenderInstructors(w io.Writer, stats []InstructorStats) {
	t := newTable(w)
	t.AppendHeader(table.Row{
		"Instructor", "Sections", "Evaluations",
		"Rcmnd Instr (mean)", "Rcmnd Instr (median)", "Rcmnd Instr (stddev)",
		"GPA Expected", "GPA Expected (stddev)",
		"GPA Received", "GPA Received (stddev)",
	})
	for _, s := range stats {
		t.AppendRow(table.Row{
			s.Instructor, s.Sections, s.TotalEvaluations,
			formatStat(s.MeanRecommendInstructor, 1),
			formatStat(s.MedianRecommendInstructor, 1),
			formatStat(s.StdDevRecommendInstructor, 1),
			formatStat(s.MeanGradeExpected, 2),
			formatStat(s.StdDevGradeExpected, 2),
			formatStat(s.MeanGradeReceived, 2),
			formatStat(s.StdDevGradeReceived, 2),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// RenderSummary writes the per query outcome of a run followed by the totals.
func RenderSummary(w io.Writer, summary cape.Summary) {
	t := newTable(w)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Query", "Kind", "Status", "Scanned", "Admitted", "Malformed", "Elapsed"})
	for _, r := range summary.Results {
		status := r.Status.String()
		if r.Status == cape.QuerySkipped {
			status += ": " + r.Reason
		}
		t.AppendRow(table.Row{
			r.Query.Label, r.Query.Kind.String(), status,
			r.Scanned, r.Admitted, r.Malformed,
			r.Elapsed.Round(time.Millisecond).String(),
		})
	}
	t.AppendFooter(table.Row{
		"Total", "", strconv.Itoa(len(summary.Skipped())) + " skipped",
		"", summary.Total, "",
		summary.Elapsed.Round(time.Second).String(),
	})
	t.Render()
}
