package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"capescraper/internal/cape"
	"capescraper/internal/report"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("capescraper.internal.notify")

type SmtpConfig struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	Recipients   []string `json:"recipients"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && len(c.Recipients) > 0
}

// Notifier mails the outcome of a run, a scrape of every department takes long enough that nobody
// watches it finish.
type Notifier struct {
	config SmtpConfig
}

func NewNotifier(config SmtpConfig) Notifier {
	return Notifier{config: config}
}

func subject(summary cape.Summary, runErr error) string {
	switch {
	case runErr != nil:
		return fmt.Sprintf("CAPE scrape stopped after %d records", summary.Total)
	case len(summary.Skipped()) > 0:
		return fmt.Sprintf("CAPE scrape finished: %d records, %d queries skipped", summary.Total, len(summary.Skipped()))
	}
	return fmt.Sprintf("CAPE scrape finished: %d records", summary.Total)
}

func body(summary cape.Summary, runErr error) string {
	var out bytes.Buffer
	if runErr != nil {
		fmt.Fprintf(&out, "The run stopped early: %v\n\n", runErr)
	}
	fmt.Fprintf(&out, "%d records were admitted in %s.\n\n", summary.Total, summary.Elapsed)
	report.RenderSummary(&out, summary)
	return out.String()
}

// RunFinished sends the summary of a run to every recipient.
func (n Notifier) RunFinished(ctx context.Context, summary cape.Summary, runErr error) error {
	_, span := tracer.Start(ctx, "notify:RunFinished")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("CAPE Scraper <%s>", n.config.EmailAddress)
	mail.To = n.config.Recipients
	mail.Subject = subject(summary, runErr)
	mail.Text = []byte(body(summary, runErr))

	addr := fmt.Sprintf("%s:%d", n.config.Server, n.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", n.config.EmailAddress, n.config.Password, n.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return err
	}
	return nil
}
