package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"capescraper/internal/browser"
	"capescraper/internal/cape"
	"capescraper/internal/chrono"
	"capescraper/internal/notify"
	"capescraper/internal/report"
	"capescraper/internal/sink"
	"capescraper/internal/telemetry"
	"capescraper/lib/serviceutil"
	libtelemetry "capescraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	scrapeDepartments *[]string
	scrapeNoSubjects  *bool
	scrapeOutput      *string
	scrapeFormat      *string
)

func init() {
	scrapeDepartments = scrapeCmd.Flags().StringSliceP("department", "d", nil, "Only scrape these departments, by code (CSE) or name (computer science).")
	scrapeNoSubjects = scrapeCmd.Flags().Bool("no-subjects", false, "Skip the subject codes that are not listed as departments.")
	scrapeOutput = scrapeCmd.Flags().StringP("output", "o", "", "Write to this file instead of the configured outputs.")
	scrapeFormat = scrapeCmd.Flags().String("format", sink.FormatTSV, "The format of --output: tsv, json, sqlite or xlsx.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--department <code>...] [--no-subjects] [--output <path> --format <format>]",
	Short: "Signs into CAPE and writes every evaluation to the configured outputs.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if *scrapeOutput != "" {
			cfg.Outputs = []sink.Output{{Format: *scrapeFormat, Path: *scrapeOutput, Header: true}}
		}

		clock := chrono.NewStandardTime()
		tel := telemetry.SlogAPI{}
		libtelemetry.InstrumentPerfStats(ctx, 30*time.Second)

		session, err := browser.Open(ctx, cfg.browserOptions())
		if err != nil {
			serviceutil.Fatal("failed to open chrome", err)
		}
		defer session.Close()

		slog.Info("signing in", "username", cfg.Username)
		err = cape.Login(ctx, session, clock, tel, cape.LoginOptions{
			URL:      cfg.BaseURL,
			Username: cfg.Username,
			Password: cfg.Password,
			OnSecondFactor: func() {
				slog.Info("approve the Duo push to continue, you have one minute")
			},
		})
		if err != nil {
			session.Close()
			serviceutil.Fatal("failed to sign in", err)
		}

		out, err := sink.Open(ctx, cfg.Outputs, clock)
		if err != nil {
			session.Close()
			serviceutil.Fatal("failed to open outputs", err)
		}

		it := cape.NewIterator(session, out, clock, tel, cape.Options{
			BaseURL:      cfg.BaseURL,
			Subjects:     cfg.Subjects,
			SkipSubjects: cfg.SkipSubjects || *scrapeNoSubjects,
			Departments:  *scrapeDepartments,
			Wait:         cfg.waitOptions(),
		})
		summary, runErr := it.Run(ctx)

		report.RenderSummary(os.Stdout, summary)
		slog.Info(
			"scrape finished",
			"admitted", summary.Total,
			"skipped", len(summary.Skipped()),
			"elapsed", summary.Elapsed.Round(time.Second),
		)

		if cfg.Smtp.Enabled() {
			// the run context may already be cancelled, the mail should still go out
			err := notify.NewNotifier(cfg.Smtp).RunFinished(context.WithoutCancel(ctx), summary, runErr)
			if err != nil {
				slog.Warn("failed to send notification", "err", err)
			}
		}

		if runErr != nil {
			session.Close()
			serviceutil.Fatal("scrape stopped", runErr)
		}
	},
}
