package commands

import (
	"os"
	"path/filepath"

	"capescraper/internal/cape"
	"capescraper/internal/report"
	"capescraper/internal/sink"
	"capescraper/lib/serviceutil"

	"github.com/spf13/cobra"
)

var reportFilter *[]string

func init() {
	reportFilter = reportCmd.Flags().StringSliceP("filter", "f", nil, "Only include records whose instructor or course code contains one of these.")
	rootCmd.AddCommand(reportCmd)
}

func readRecords(path string) ([]cape.EvaluationRecord, error) {
	if filepath.Ext(path) != ".json" {
		return sink.ReadTSVFile(path)
	}
	groups, err := sink.ReadGroupedJSON(path)
	if err != nil {
		return nil, err
	}
	var out []cape.EvaluationRecord
	for _, records := range groups {
		out = append(out, records...)
	}
	return out, nil
}

var reportCmd = &cobra.Command{
	Use:   "report <output.tsv|output.json> [--filter <instructor or course>...]",
	Short: "Aggregates the evaluations of a previous scrape per instructor.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := readRecords(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read records", err)
		}
		records = report.Filter(records, *reportFilter)
		report.RenderInstructors(os.Stdout, report.Instructors(records))
	},
}
