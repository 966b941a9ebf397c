package sink

import (
	"context"
	"errors"

	"capescraper/internal/cape"
)

// Multi fans every call out to several sinks. A failing sink does not keep the others from being
// written, flushed or closed.
type Multi []cape.Sink

func (m Multi) Write(ctx context.Context, query cape.Query, records []cape.EvaluationRecord) error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Write(ctx, query, records))
	}
	return err
}

func (m Multi) Flush() error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Flush())
	}
	return err
}

func (m Multi) Close() error {
	var err error
	for _, s := range m {
		err = errors.Join(err, s.Close())
	}
	return err
}
