package commands

import (
	"log/slog"

	"capescraper/internal/browser"
	"capescraper/lib/restyutil"
	"capescraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks that CAPE (and the remote chrome, if configured) can be reached before a long run.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := readConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		client := browser.NewHTTPClient()
		var output restyutil.InstrumentOutput
		if *verbose {
			fsOutput, err := restyutil.NewFilesystemOutput(".dev/resty/check")
			if err != nil {
				serviceutil.Fatal("failed to create resty output directory", err)
			}
			output = fsOutput
		}
		restyutil.InstrumentClient(client, nil, output)

		probe, err := browser.ProbePortal(ctx, client, cfg.BaseURL)
		if err != nil {
			serviceutil.Fatal("portal is not reachable", err)
		}
		slog.Info(
			"portal reachable",
			"status", probe.StatusCode,
			"final_url", probe.FinalURL,
			"elapsed", probe.Elapsed,
			"requires_login", probe.RequiresLogin(),
		)

		if cfg.Chrome.RemoteURL == "" {
			return
		}
		wsURL, err := browser.ResolveDebuggerURL(ctx, client, cfg.Chrome.RemoteURL)
		if err != nil {
			serviceutil.Fatal("remote chrome is not reachable", err)
		}
		slog.Info("remote chrome reachable", "websocket", wsURL)
	},
}
