package cape

import (
	"context"
	"slices"
)

// Sink receives the admitted records of each query, in harvest order.
type Sink interface {
	Write(ctx context.Context, query Query, records []EvaluationRecord) error
	// Flush makes everything written so far durable, it is called after every query.
	Flush() error
	Close() error
}

// Batch is the records one query contributed.
type Batch struct {
	Query   Query
	Records []EvaluationRecord
}

// MemorySink keeps everything in memory.
type MemorySink struct {
	Batches []Batch
	Flushes int
	Closed  bool
}

func (m *MemorySink) Write(_ context.Context, query Query, records []EvaluationRecord) error {
	m.Batches = append(m.Batches, Batch{Query: query, Records: slices.Clone(records)})
	return nil
}

func (m *MemorySink) Flush() error {
	m.Flushes++
	return nil
}

func (m *MemorySink) Close() error {
	m.Closed = true
	return nil
}

// Records returns every record written, in order.
func (m *MemorySink) Records() []EvaluationRecord {
	var out []EvaluationRecord
	for _, b := range m.Batches {
		out = append(out, b.Records...)
	}
	return out
}
