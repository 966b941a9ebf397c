package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"capescraper/internal/cape"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("capescraper.internal.browser")

// DefaultActionTimeout bounds a single browser round trip, page loads included.
const DefaultActionTimeout = 20 * time.Second

type Options struct {
	// ExecPath is the chrome binary, found on PATH when empty.
	ExecPath string
	Headless bool
	// UserDataDir keeps the profile (and with it the sso cookies) between runs.
	UserDataDir string
	// RemoteURL attaches to an already running chrome instead of starting one, either its devtools
	// websocket url or the http endpoint serving /json/version.
	RemoteURL     string
	ActionTimeout time.Duration
}

// Session is a cape.Session backed by a chrome tab.
type Session struct {
	tab     context.Context
	close   func()
	timeout time.Duration
}

var _ cape.LocatedSession = (*Session)(nil)

// Open starts (or attaches to) chrome and opens a blank tab. The browser lives until Close is called or
// ctx is done.
func Open(ctx context.Context, opts Options) (*Session, error) {
	ctx, span := tracer.Start(ctx, "browser:Open")
	defer span.End()

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		span.SetAttributes(attribute.String("remote_url", opts.RemoteURL))
		wsURL, err := ResolveDebuggerURL(ctx, NewHTTPClient(), opts.RemoteURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to resolve devtools url")
			return nil, err
		}
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), wsURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(opts)...)
	}

	tab, tabCancel := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(chromeLogf(slog.LevelDebug)),
		chromedp.WithErrorf(chromeLogf(slog.LevelDebug)),
	)
	session := &Session{
		tab: tab,
		close: func() {
			tabCancel()
			allocCancel()
		},
		timeout: opts.ActionTimeout,
	}
	if session.timeout <= 0 {
		session.timeout = DefaultActionTimeout
	}

	// the first run launches the browser, it must not be bound to a derived context
	err := chromedp.Run(tab)
	if err != nil {
		session.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to start chrome")
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return session, nil
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	out := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	out = append(out, chromedp.Flag("headless", opts.Headless))
	if opts.ExecPath != "" {
		out = append(out, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		out = append(out, chromedp.UserDataDir(opts.UserDataDir))
	}
	return out
}

func chromeLogf(level slog.Level) func(string, ...any) {
	return func(format string, args ...any) {
		slog.Log(context.Background(), level, "chrome: "+fmt.Sprintf(format, args...))
	}
}

// Close shuts the tab, and the browser if Open started it.
func (s *Session) Close() {
	s.close()
}

// run executes actions on the tab. The run is cut short by ctx, the tab closing or the action timeout,
// only the first two stop a scrape.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if s.tab.Err() != nil {
		return fmt.Errorf("%w: %v", cape.ErrSessionClosed, context.Cause(s.tab))
	}

	runCtx, cancel := context.WithTimeout(s.tab, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case s.tab.Err() != nil, errors.Is(err, chromedp.ErrChannelClosed), errors.Is(err, chromedp.ErrInvalidContext):
		return fmt.Errorf("%w: %v", cape.ErrSessionClosed, err)
	}
	return err
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, chromedp.Navigate(url))
	if err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var location string
	err := s.run(ctx, chromedp.Location(&location))
	return location, err
}

func (s *Session) query(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	return nodes, nil
}

func (s *Session) Find(ctx context.Context, selector string) (cape.Element, error) {
	nodes, err := s.query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %s", selector)
	}
	return Element{session: s, id: nodes[0].NodeID}, nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]cape.Element, error) {
	nodes, err := s.query(ctx, selector)
	if err != nil {
		return nil, err
	}
	out := make([]cape.Element, len(nodes))
	for i, n := range nodes {
		out[i] = Element{session: s, id: n.NodeID}
	}
	return out, nil
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	var markup string
	err := s.run(ctx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery))
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return markup, nil
}

// Element addresses a node by its devtools id, ids are invalidated when the document is replaced.
type Element struct {
	session *Session
	id      cdp.NodeID
}

func (e Element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.id}
}

func (e Element) Click(ctx context.Context) error {
	return e.session.run(ctx, chromedp.Click(e.ids(), chromedp.ByNodeID))
}

func (e Element) Clear(ctx context.Context) error {
	return e.session.run(ctx, chromedp.Clear(e.ids(), chromedp.ByNodeID))
}

func (e Element) SendKeys(ctx context.Context, text string) error {
	return e.session.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID))
}

func (e Element) SetValue(ctx context.Context, value string) error {
	return e.session.run(ctx, chromedp.SetValue(e.ids(), value, chromedp.ByNodeID))
}

// Attribute reads the live attribute from the page, the node cache of chromedp lags behind script
// driven style changes.
func (e Element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var attributes []string
	err := e.session.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		attributes, err = dom.GetAttributes(e.id).Do(ctx)
		return err
	}))
	if err != nil {
		return "", false, err
	}
	value, ok := lookupAttribute(attributes, name)
	return value, ok, nil
}

// lookupAttribute searches the flat [name, value, name, value, ...] list devtools returns.
func lookupAttribute(attributes []string, name string) (string, bool) {
	for i := 0; i+1 < len(attributes); i += 2 {
		if attributes[i] == name {
			return attributes[i+1], true
		}
	}
	return "", false
}

func (e Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.session.run(ctx, chromedp.TextContent(e.ids(), &text, chromedp.ByNodeID))
	return text, err
}
