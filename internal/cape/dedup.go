package cape

import (
	"strconv"
	"strings"
)

// Signature serializes every normalized field of r. Each field is length prefixed so two different
// field tuples can never produce the same signature.
func Signature(r EvaluationRecord) string {
	var b strings.Builder
	for _, field := range r.Fields() {
		b.WriteString(strconv.Itoa(len(field)))
		b.WriteByte(':')
		b.WriteString(field)
		b.WriteByte(';')
	}
	return b.String()
}

// Deduplicator remembers the signature of every record admitted during a run. It never evicts, a full
// run is a few thousand rows.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: map[string]struct{}{}}
}

// Admit registers r and returns true if no identical record was admitted before.
func (d *Deduplicator) Admit(r EvaluationRecord) bool {
	sig := Signature(r)
	if _, ok := d.seen[sig]; ok {
		return false
	}
	d.seen[sig] = struct{}{}
	return true
}

// Len returns the number of distinct records admitted so far.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}
