package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NewHTTPClient returns the client used outside of the browser: resolving devtools endpoints and
// probing the portal before a run.
func NewHTTPClient() *resty.Client {
	client := resty.New()
	client.SetTimeout(15 * time.Second)
	client.SetHeader("cache-control", "no-cache")
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	return client
}

type devtoolsVersion struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// ResolveDebuggerURL turns the http endpoint of a chrome started with --remote-debugging-port into its
// browser websocket url. Websocket urls are returned untouched.
func ResolveDebuggerURL(ctx context.Context, client *resty.Client, endpoint string) (string, error) {
	ctx, span := tracer.Start(ctx, "devtools:ResolveDebuggerURL")
	defer span.End()

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse devtools url %q: %w", endpoint, err)
	}
	switch parsed.Scheme {
	case "ws", "wss":
		return endpoint, nil
	case "http", "https":
	default:
		return "", fmt.Errorf("devtools url %q: unsupported scheme %q", endpoint, parsed.Scheme)
	}

	var version devtoolsVersion
	res, err := client.R().
		SetContext(ctx).
		SetResult(&version).
		Get(strings.TrimSuffix(endpoint, "/") + "/json/version")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch devtools version")
		return "", fmt.Errorf("fetch devtools version: %w", err)
	}
	if res.IsError() {
		err = fmt.Errorf("fetch devtools version: unexpected status %s", res.Status())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if version.WebSocketDebuggerURL == "" {
		return "", fmt.Errorf("devtools at %s did not report a websocket url", endpoint)
	}
	span.SetAttributes(attribute.String("browser", version.Browser))

	// chrome reports the address it listens on, which is not reachable through a port mapping
	wsURL, err := url.Parse(version.WebSocketDebuggerURL)
	if err != nil {
		return "", fmt.Errorf("parse websocket url %q: %w", version.WebSocketDebuggerURL, err)
	}
	wsURL.Host = parsed.Host
	return wsURL.String(), nil
}

// Probe is what the portal answered to a plain GET.
type Probe struct {
	URL        string
	StatusCode int
	// FinalURL is where the redirects ended, the sso login page when the session is not signed in.
	FinalURL string
	Elapsed  time.Duration
}

// RequiresLogin reports whether the portal redirected away from the results form.
func (p Probe) RequiresLogin() bool {
	final, err := url.Parse(p.FinalURL)
	if err != nil {
		return false
	}
	return !strings.Contains(final.Path, "/responses/")
}

// ProbePortal checks that the portal answers before a long run is started.
func ProbePortal(ctx context.Context, client *resty.Client, target string) (Probe, error) {
	ctx, span := tracer.Start(ctx, "devtools:ProbePortal")
	defer span.End()

	res, err := client.R().
		SetContext(ctx).
		SetHeader("accept", "text/html").
		Get(target)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "portal unreachable")
		return Probe{URL: target}, fmt.Errorf("probe %s: %w", target, err)
	}

	probe := Probe{
		URL:        target,
		StatusCode: res.StatusCode(),
		FinalURL:   target,
		Elapsed:    res.Time(),
	}
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		probe.FinalURL = res.RawResponse.Request.URL.String()
	}
	span.SetAttributes(
		attribute.Int("status", probe.StatusCode),
		attribute.String("final_url", probe.FinalURL),
	)
	if probe.StatusCode >= http.StatusInternalServerError {
		err = fmt.Errorf("probe %s: portal answered %s", target, res.Status())
		span.SetStatus(codes.Error, err.Error())
		return probe, err
	}
	return probe, nil
}
