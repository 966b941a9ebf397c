package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDebuggerURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("content-type", "application/json")
		fmt.Fprint(w, `{
			"Browser": "HeadlessChrome/129.0.6668.100",
			"webSocketDebuggerUrl": "ws://0.0.0.0:9222/devtools/browser/4b3f6c1e"
		}`)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	client := NewHTTPClient()

	testCases := []struct {
		endpoint string
		expected string
		fails    bool
	}{
		{endpoint: server.URL, expected: "ws://" + host + "/devtools/browser/4b3f6c1e"},
		{endpoint: server.URL + "/", expected: "ws://" + host + "/devtools/browser/4b3f6c1e"},
		{endpoint: "ws://127.0.0.1:9222/devtools/browser/abc", expected: "ws://127.0.0.1:9222/devtools/browser/abc"},
		{endpoint: server.URL + "/missing", fails: true},
		{endpoint: "ftp://127.0.0.1", fails: true},
	}
	for _, test := range testCases {
		t.Run(test.endpoint, func(t *testing.T) {
			resolved, err := ResolveDebuggerURL(context.Background(), client, test.endpoint)
			if test.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, resolved)
		})
	}
}

func TestProbePortal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/responses/Results.aspx", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("signed_in") == "" {
			http.Redirect(w, r, "/idp/profile/SAML2/Redirect/SSO?target=%2Fresponses%2FResults.aspx", http.StatusFound)
			return
		}
		fmt.Fprint(w, "<html><body>results</body></html>")
	})
	mux.HandleFunc("/idp/profile/SAML2/Redirect/SSO", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>login</body></html>")
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewHTTPClient()

	probe, err := ProbePortal(context.Background(), client, server.URL+"/responses/Results.aspx")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, probe.StatusCode)
	require.True(t, probe.RequiresLogin())
	require.Contains(t, probe.FinalURL, "/idp/profile/SAML2/Redirect/SSO")

	probe, err = ProbePortal(context.Background(), client, server.URL+"/responses/Results.aspx?signed_in=1")
	require.NoError(t, err)
	require.False(t, probe.RequiresLogin())

	probe, err = ProbePortal(context.Background(), client, server.URL+"/down")
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, probe.StatusCode)
}

func TestLookupAttribute(t *testing.T) {
	attributes := []string{"id", "ContentPlaceHolder1_UpdateProgress1", "style", "display: none;", "hidden"}

	value, ok := lookupAttribute(attributes, "style")
	require.True(t, ok)
	require.Equal(t, "display: none;", value)

	_, ok = lookupAttribute(attributes, "hidden")
	require.False(t, ok)
	_, ok = lookupAttribute(attributes, "class")
	require.False(t, ok)
}
