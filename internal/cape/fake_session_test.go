package cape

import (
	"context"
	"fmt"
	"strings"
)

const (
	styleVisible = "display: block;"
	styleHidden  = "display: none;"
)

// fakeDepartment is one dropdown entry of fakeSite. A department with hang set never finishes loading.
type fakeDepartment struct {
	value string
	label string
	page  string
	hang  bool
}

// fakeSite imitates the results form: pick a department or type a course, submit, and the progress
// indicator hides once the results are in.
type fakeSite struct {
	departments []fakeDepartment
	subjects    map[string]string

	selected   string
	searchText string
	style      string
	page       string

	// closeAfterSubmits makes every call fail with ErrSessionClosed once that many submits happened.
	closeAfterSubmits int
	// failFind makes Find fail (not fatally) for the selector.
	failFind string

	submits   []string
	navigated []string
}

func newFakeSite(departments ...fakeDepartment) *fakeSite {
	return &fakeSite{
		departments: departments,
		subjects:    map[string]string{},
		style:       styleHidden,
		page:        "<html><body><form></form></body></html>",
	}
}

func (s *fakeSite) closed() error {
	if s.closeAfterSubmits > 0 && len(s.submits) >= s.closeAfterSubmits {
		return fmt.Errorf("fake: %w", ErrSessionClosed)
	}
	return nil
}

func (s *fakeSite) Navigate(_ context.Context, url string) error {
	if err := s.closed(); err != nil {
		return err
	}
	s.navigated = append(s.navigated, url)
	s.selected = ""
	s.searchText = ""
	s.style = styleHidden
	return nil
}

func (s *fakeSite) Find(_ context.Context, selector string) (Element, error) {
	if err := s.closed(); err != nil {
		return nil, err
	}
	if selector == s.failFind {
		return nil, fmt.Errorf("fake: no element matches %s", selector)
	}
	switch selector {
	case DepartmentSelect, CourseSearchInput, SubmitButton, ProgressIndicator:
		return &fakeElement{site: s, selector: selector}, nil
	}
	return nil, fmt.Errorf("fake: no element matches %s", selector)
}

func (s *fakeSite) FindAll(_ context.Context, selector string) ([]Element, error) {
	if err := s.closed(); err != nil {
		return nil, err
	}
	if selector != DepartmentOptions {
		return nil, nil
	}
	options := []Element{&fakeElement{site: s, selector: selector, text: "Select a Department"}}
	for _, d := range s.departments {
		options = append(options, &fakeElement{site: s, selector: selector, value: d.value, text: "  " + d.label + "\n"})
	}
	return options, nil
}

func (s *fakeSite) PageSource(context.Context) (string, error) {
	if err := s.closed(); err != nil {
		return "", err
	}
	return s.page, nil
}

func (s *fakeSite) submit() {
	if s.selected != "" {
		s.submits = append(s.submits, s.selected)
		for _, d := range s.departments {
			if d.value != s.selected {
				continue
			}
			if d.hang {
				s.style = styleVisible
				return
			}
			s.page = d.page
			s.style = styleHidden
			return
		}
		return
	}

	s.submits = append(s.submits, s.searchText)
	s.page = s.subjects[s.searchText]
	s.style = styleHidden
}

type fakeElement struct {
	site     *fakeSite
	selector string
	value    string
	text     string
}

func (e *fakeElement) Click(context.Context) error {
	if err := e.site.closed(); err != nil {
		return err
	}
	if e.selector == SubmitButton {
		e.site.submit()
	}
	return nil
}

func (e *fakeElement) Clear(context.Context) error {
	if e.selector == CourseSearchInput {
		e.site.searchText = ""
	}
	return e.site.closed()
}

func (e *fakeElement) SendKeys(_ context.Context, text string) error {
	if e.selector == CourseSearchInput {
		e.site.searchText += text
	}
	return e.site.closed()
}

func (e *fakeElement) SetValue(_ context.Context, value string) error {
	if e.selector == DepartmentSelect {
		e.site.selected = value
	}
	return e.site.closed()
}

func (e *fakeElement) Attribute(_ context.Context, name string) (string, bool, error) {
	if err := e.site.closed(); err != nil {
		return "", false, err
	}
	switch {
	case e.selector == ProgressIndicator && name == "style":
		return e.site.style, true, nil
	case e.selector == DepartmentOptions && name == "value":
		return e.value, true, nil
	}
	return "", false, nil
}

func (e *fakeElement) Text(context.Context) (string, error) {
	return e.text, e.site.closed()
}

// row is the cells of one results row, in column order.
type row struct {
	instructor string
	course     string
	term       string
	enrolled   string
	evals      string
	recClass   string
	recInstr   string
	hours      string
	expected   string
	received   string
}

func (r row) html() string {
	return fmt.Sprintf(`<tr>
	<td>%s</td>
	<td>
		<a href="CAPEReport.aspx?sectionid=1">%s</a>
	</td>
	<td>%s</td>
	<td>%s</td>
	<td>
		<span>%s</span>
	</td>
	<td>
		<span>%s</span>
	</td>
	<td>
		<span>%s</span>
	</td>
	<td>
		<span>%s</span>
	</td>
	<td>
		<span>%s</span>
	</td>
	<td>
		<span>%s</span>
	</td>
</tr>`,
		r.instructor, r.course, r.term, r.enrolled, r.evals,
		r.recClass, r.recInstr, r.hours, r.expected, r.received,
	)
}

func resultsPage(rows ...row) string {
	var body strings.Builder
	for _, r := range rows {
		body.WriteString(r.html())
	}
	return `<html><body><form>
<div id="ContentPlaceHolder1_UpdateProgress1" style="display: none;">Loading...</div>
<table id="ContentPlaceHolder1_gvCAPEs">
<thead><tr><th>Instructor</th><th>Course</th><th>Term</th><th>Enroll</th><th>Evals Made</th>
<th>Rcmnd Class</th><th>Rcmnd Instr</th><th>Study Hrs/wk</th><th>Avg Grade Expected</th><th>Avg Grade Received</th></tr></thead>
<tbody>` + body.String() + `</tbody>
</table>
</form></body></html>`
}

func emptyPage() string {
	return `<html><body><form><span>No CAPEs have been submitted for this selection.</span></form></body></html>`
}

var (
	rowJava = row{
		instructor: "Politz, Joseph Gibbs",
		course:     "CSE 8B - Intro/Computer Sci Java (II) (A)",
		term:       "SP20",
		enrolled:   "306",
		evals:      "163",
		recClass:   "92.6 %",
		recInstr:   "96.3 %",
		hours:      "6.84",
		expected:   "A- (3.72)",
		received:   "B+ (3.45)",
	}
	rowDiscrete = row{
		instructor: "Jones, Miles E",
		course:     "CSE 20 - Discrete Mathematics (B)",
		term:       "WI20",
		enrolled:   "250",
		evals:      "120",
		recClass:   "80 %",
		recInstr:   "85.5 %",
		hours:      "7.5",
		expected:   "B+ (3.4)",
		received:   "B (3.01)",
	}
	rowReasoning = row{
		instructor: "Eggers, Mark",
		course:     "MATH 15A - Mathematical Reasoning (A)",
		term:       "FA19",
		enrolled:   "180",
		evals:      "N/A",
		recClass:   "N/A",
		recInstr:   "n/a",
		hours:      "N/A",
		expected:   "N/A",
		received:   "N/A",
	}
	rowWriting = row{
		instructor: "Staff",
		course:     "AWP 4A - Analytical Writing &amp; Rhetoric",
		term:       "SP20",
		enrolled:   "24",
		evals:      "20",
		recClass:   "95 %",
		recInstr:   "100 %",
		hours:      "4.1",
		expected:   "A (3.9)",
		received:   "A- (3.77)",
	}
)
