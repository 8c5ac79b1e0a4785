package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/ingest"
	"github.com/vijay-prabhu/jobscout/internal/output"
	"github.com/vijay-prabhu/jobscout/internal/source"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|->",
	Short: "Ingest raw jobs from a JSON file",
	Long: `Ingest reads raw jobs (a JSON array or a single object with title,
company, link and optional location, raw_description, source) from a file
or stdin, deduplicates them and scores each one against every enabled
profile. Re-ingesting the same jobs is safe.

Examples:
  jobscout ingest scraped.json
  scraper | jobscout ingest - --source=wellfound
  jobscout ingest jobs.json -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "Source name for jobs that do not set one")
}

// ingestReport is the JSON form of an ingest run
type ingestReport struct {
	Summary ingest.BatchSummary `json:"summary"`
	Results []ingest.Result     `json:"results"`
	Errors  []string            `json:"errors,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raws, err := source.LoadFile(args[0])
	if err != nil {
		return err
	}

	defaultSource := ingestSource
	if defaultSource == "" {
		defaultSource = "file"
	}
	for i := range raws {
		if raws[i].Source == "" {
			raws[i].Source = defaultSource
		}
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ingester, err := a.newIngester(ctx)
	if err != nil {
		return err
	}

	terminal := NewTerminal()
	var progress ingest.ProgressCallback
	if outputFmt != "json" {
		progress = terminal.Counter("Scoring")
	}

	items := ingester.IngestBatch(ctx, raws, progress)
	terminal.ClearLine()

	report := ingestReport{Summary: ingest.Summarize(items)}
	for _, it := range items {
		if it.Error != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("job %d: %v", it.Index+1, it.Error))
			continue
		}
		report.Results = append(report.Results, *it.Result)
	}

	if outputFmt == "json" {
		return output.JSON(report)
	}

	if err := output.Table(report.Results); err != nil {
		return err
	}
	fmt.Println()
	if err := output.Table(report.Summary); err != nil {
		return err
	}

	if len(report.Errors) > 0 {
		fmt.Println()
		fmt.Printf("Warnings: %d\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed to ingest", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}
