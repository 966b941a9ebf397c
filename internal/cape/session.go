package cape

import (
	"context"
	"errors"
)

// ErrSessionClosed is returned (wrapped) by a Session once the underlying browser is gone. It stops a run.
var ErrSessionClosed = errors.New("browser session closed")

// Session is an already authenticated browser tab. Every query mutates its state, so it must only be
// driven by one caller at a time.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// Find returns the first element matching a css selector.
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns every element matching a css selector, possibly none.
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// PageSource returns the markup of the current document.
	PageSource(ctx context.Context) (string, error)
}

// Element is a handle on a node of the current document. Handles may go stale after a form submission,
// look elements up again instead of holding on to them across queries.
type Element interface {
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	// SetValue sets the value property, used to pick a dropdown option.
	SetValue(ctx context.Context, value string) error
	// Attribute returns the attribute value, ok is false when the attribute is not set.
	Attribute(ctx context.Context, name string) (value string, ok bool, err error)
	Text(ctx context.Context) (string, error)
}

// isFatal reports whether err means the run cannot go on, as opposed to a single query failing.
func isFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrSessionClosed)
}
