package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"capescraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool

	tel telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().StringP("config", "c", "config.json5", "The config file, a config.local.json5 next to it overrides its values.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

var rootCmd = &cobra.Command{
	Use:   "capescraper",
	Short: "capescraper collects the course and instructor evaluations published on CAPE.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, *verbose)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "capescraper")
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no telemetry.json5 found, traces and metrics are not exported")
			return
		}
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
			return
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
