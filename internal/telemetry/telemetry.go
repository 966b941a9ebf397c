// Package telemetry is the reporting surface of the scraping engine. Components report through API
// instead of logging directly so tests can assert on what was reported.
package telemetry

// API is a fault injection point as much as a logger.
type API interface {
	// ReportBroken reports something that needs a code change, ex. a results row whose cells no longer
	// line up with the table layout.
	//
	// id names the component and not the line that noticed: lowercase, a dot between a component and
	// its method, dashes inside a name (`harvester.parse-row`). Details such as the offending query go
	// in params.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that may be transient, ex. a query whose results never loaded.
	// id follows the rules of ReportBroken.
	ReportWarning(id string, params ...any)

	ReportDebug(msg string, params ...any)

	// ReportCount reports a running total at the current time. Counts are points over time and should
	// not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id it reports with a namespace, `cape: iterator.timeout`. Scoping an
// already scoped API joins the namespaces with a dot instead of stacking prefixes.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	if parent, ok := inner.(ScopedAPI); ok {
		return ScopedAPI{namespace: parent.namespace + "." + namespace, inner: parent.inner}
	}
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) qualify(id string) string {
	return s.namespace + ": " + id
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.qualify(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.qualify(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.qualify(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.qualify(id), count)
}
