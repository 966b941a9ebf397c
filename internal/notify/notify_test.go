package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"capescraper/internal/cape"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func sampleSummary() cape.Summary {
	return cape.Summary{
		Results: []cape.QueryResult{
			{Query: cape.DepartmentOf("CSE", "CSE - Computer Science & Engineering"), Status: cape.QueryHarvested, Scanned: 12, Admitted: 12},
			{Query: cape.SubjectOf("AWP"), Status: cape.QuerySkipped, Reason: "timed out waiting for results"},
		},
		Total:   12,
		Elapsed: 3 * time.Minute,
	}
}

func TestSubject(t *testing.T) {
	require.Equal(t, "CAPE scrape finished: 12 records, 1 queries skipped", subject(sampleSummary(), nil))
	require.Equal(t, "CAPE scrape finished: 0 records", subject(cape.Summary{}, nil))
	require.Equal(t, "CAPE scrape stopped after 12 records", subject(sampleSummary(), cape.ErrSessionClosed))
}

func TestBody(t *testing.T) {
	text := body(sampleSummary(), fmt.Errorf("wait: %w", cape.ErrSessionClosed))
	require.Contains(t, text, "The run stopped early: wait: browser session closed")
	require.Contains(t, text, "12 records were admitted in 3m0s.")
	require.Contains(t, text, "CSE - Computer Science & Engineering")
}

func TestEnabled(t *testing.T) {
	require.False(t, SmtpConfig{}.Enabled())
	require.False(t, SmtpConfig{Server: "localhost"}.Enabled())
	require.True(t, SmtpConfig{Server: "localhost", Recipients: []string{"bob@email.com"}}.Enabled())
}

func TestRunFinishedAgainstSmtp(t *testing.T) {
	if os.Getenv("CAPESCRAPER_CONTAINER_TESTS") == "" {
		t.Skip("set CAPESCRAPER_CONTAINER_TESTS=1 to run tests against a fake smtp server")
	}

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	smtp, err := testcontainers.GenericContainer(
		context.Background(),
		testcontainers.GenericContainerRequest{
			Started: true,
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "haravich/fake-smtp-server",
				ExposedPorts: []string{"1025:1025", "1090:1080"},
				WaitingFor:   wait.ForLog("smtp://0.0.0.0:1025"),
			},
		},
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, smtp.Terminate(context.Background()))
	}()

	notifier := NewNotifier(SmtpConfig{
		Server:       "localhost",
		Port:         1025,
		EmailAddress: "alice@email.com",
		Password:     "default",
		Recipients:   []string{"bob@email.com"},
	})
	err = notifier.RunFinished(context.Background(), sampleSummary(), errors.New("interrupted"))
	require.NoError(t, err)

	res, err := resty.New().R().Get("http://127.0.0.1:1090/messages/1.plain")
	require.NoError(t, err)
	require.Contains(t, res.String(), "The run stopped early: interrupted")
	require.Contains(t, res.String(), "AWP")
}
