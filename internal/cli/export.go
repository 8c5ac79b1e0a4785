package cli

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/output"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored jobs to CSV or JSON",
	Long: `Export every score joined with its job to stdout.

Supported formats:
  - csv: Comma-separated values (spreadsheet-compatible), one column per category
  - json: JSON array of flattened score rows
  - jsonl: one flattened score row per line

Examples:
  jobscout export --format=csv > scores.csv
  jobscout export --profile=robotics --format=json > robotics.json`,
	RunE: runExport,
}

var (
	exportFormat  string
	exportProfile string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, json, jsonl)")
	exportCmd.Flags().StringVarP(&exportProfile, "profile", "p", "", "Only scores for this profile")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.db.ListScores(ctx, database.ScoreListOptions{ProfileID: exportProfile})
	if err != nil {
		return fmt.Errorf("failed to list scores: %w", err)
	}

	switch exportFormat {
	case "csv":
		return exportCSV(jobs)
	case output.FormatJSON, output.FormatJSONL:
		return exportJSON(jobs, exportFormat)
	default:
		return fmt.Errorf("unknown format: %s (use csv, json or jsonl)", exportFormat)
	}
}

// ExportRow represents a row in the export
type ExportRow struct {
	ID           string         `json:"id"`
	ProfileID    string         `json:"profile_id"`
	Title        string         `json:"title"`
	Company      string         `json:"company"`
	Location     string         `json:"location"`
	Link         string         `json:"link"`
	Source       string         `json:"source"`
	TotalScore   *int           `json:"total_score"`
	Grade        string         `json:"grade"`
	Breakdown    map[string]int `json:"breakdown,omitempty"`
	FilterReason string         `json:"filter_reason"`
	ManualReview bool           `json:"manual_review"`
	Decision     string         `json:"review_decision"`
	FirstSeenAt  string         `json:"first_seen_at"`
}

func toExportRow(sj database.ScoredJob) ExportRow {
	s := sj.Score
	row := ExportRow{
		ID:           sj.Job.IdentityHash,
		ProfileID:    s.ProfileID,
		Title:        sj.Job.Title,
		Company:      sj.Job.Company,
		Location:     sj.Job.Location,
		Link:         sj.Job.Link,
		Source:       sj.Job.Source,
		TotalScore:   s.TotalScore,
		Breakdown:    s.Breakdown,
		ManualReview: s.ManualReview,
		FirstSeenAt:  sj.Job.FirstSeenAt.Format(time.RFC3339),
	}
	if s.Grade != nil {
		row.Grade = *s.Grade
	}
	if s.FilterReason != nil {
		row.FilterReason = *s.FilterReason
	}
	if s.ReviewDecision != nil {
		row.Decision = *s.ReviewDecision
	}
	return row
}

func exportCSV(jobs []database.ScoredJob) error {
	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	// Write header
	header := []string{"id", "profile_id", "title", "company", "location", "link", "source", "total_score", "grade"}
	for _, cat := range scoring.Categories {
		header = append(header, string(cat))
	}
	header = append(header, "filter_reason", "manual_review", "review_decision", "first_seen_at")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write rows
	for _, sj := range jobs {
		row := toExportRow(sj)
		total := ""
		if row.TotalScore != nil {
			total = strconv.Itoa(*row.TotalScore)
		}

		record := []string{
			row.ID,
			row.ProfileID,
			row.Title,
			row.Company,
			row.Location,
			row.Link,
			row.Source,
			total,
			row.Grade,
		}
		for _, cat := range scoring.Categories {
			pts := ""
			if v, ok := row.Breakdown[string(cat)]; ok {
				pts = strconv.Itoa(v)
			}
			record = append(record, pts)
		}
		record = append(record,
			row.FilterReason,
			strconv.FormatBool(row.ManualReview),
			row.Decision,
			row.FirstSeenAt,
		)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func exportJSON(jobs []database.ScoredJob, format string) error {
	rows := make([]ExportRow, len(jobs))
	for i, sj := range jobs {
		rows[i] = toExportRow(sj)
	}

	if err := output.Output(format, rows); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
