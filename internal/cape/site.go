package cape

import "strings"

// BaseURL is the evaluation results search page.
const BaseURL = "https://cape.ucsd.edu/responses/Results.aspx"

// selectors for the ASP.NET results form, these are bound to the portal's markup.
const (
	DepartmentSelect  = `select[name="ctl00$ContentPlaceHolder1$ddlDepartments"]`
	DepartmentOptions = DepartmentSelect + ` option`
	CourseSearchInput = `[name="ctl00$ContentPlaceHolder1$txtCourse"]`
	SubmitButton      = `[name="ctl00$ContentPlaceHolder1$btnSubmit"]`
	ProgressIndicator = `#ContentPlaceHolder1_UpdateProgress1`

	ResultsTableID = "ContentPlaceHolder1_gvCAPEs"
)

type QueryKind int

const (
	DepartmentQuery QueryKind = iota
	SubjectQuery
)

func (k QueryKind) String() string {
	switch k {
	case DepartmentQuery:
		return "department"
	case SubjectQuery:
		return "subject"
	}
	return "unknown"
}

// Query is one submission of the results form.
type Query struct {
	Kind QueryKind
	// Value is the dropdown option value for departments, the literal search text for subjects.
	Value string
	// Label is the human readable name, ex. "CSE - Computer Science & Engineering".
	Label string
}

func DepartmentOf(value, label string) Query {
	return Query{Kind: DepartmentQuery, Value: value, Label: label}
}

func SubjectOf(code string) Query {
	return Query{Kind: SubjectQuery, Value: code, Label: code}
}

// Group is the key records of this query are grouped under: the department code (the label up to the
// first "-") or the subject code itself.
func (q Query) Group() string {
	if q.Kind == SubjectQuery {
		return q.Value
	}
	code, _, _ := strings.Cut(q.Label, "-")
	code = strings.TrimSpace(code)
	if code == "" {
		return strings.TrimSpace(q.Value)
	}
	return code
}
