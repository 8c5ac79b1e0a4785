package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/vijay-prabhu/jobscout/internal/collector"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/ingest"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

// JobDetail is a job with every profile's score for display
type JobDetail struct {
	Job    job.Job          `json:"job"`
	Scores []database.Score `json:"scores"`
}

// Table writes data as a formatted table to stdout
func Table(data interface{}) error {
	return TableTo(os.Stdout, data)
}

// TableTo writes data as a formatted table to the given writer
func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case []database.ScoredJob:
		return scoredJobsTable(w, v)
	case []job.Job:
		return jobsTable(w, v)
	case *JobDetail:
		return jobDetail(w, v)
	case *database.Stats:
		return statsTable(w, v)
	case []config.Profile:
		return profilesTable(w, v)
	case []ingest.Result:
		return ingestResultsTable(w, v)
	case ingest.BatchSummary:
		return batchSummary(w, v)
	case *collector.SyncResult:
		return syncSummary(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func scoredJobsTable(w io.Writer, jobs []database.ScoredJob) error {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Grade", "Score", "Title", "Company", "Location", "Seen", "Note")

	now := time.Now()
	for _, sj := range jobs {
		s := sj.Score
		score := "-"
		if s.TotalScore != nil {
			score = strconv.Itoa(*s.TotalScore)
		}

		if err := table.Append([]string{
			job.ShortHash(sj.Job.IdentityHash),
			formatGrade(s.Grade),
			score,
			truncate(sj.Job.Title, 45),
			truncate(sj.Job.Company, 25),
			truncate(sj.Job.Location, 20),
			formatLastActivity(daysSince(now, sj.Job.LastSeenAt)),
			scoreNote(&s),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func jobsTable(w io.Writer, jobs []job.Job) error {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Company", "Location", "Source", "First Seen")

	now := time.Now()
	for _, j := range jobs {
		if err := table.Append([]string{
			job.ShortHash(j.IdentityHash),
			truncate(j.Title, 45),
			truncate(j.Company, 25),
			truncate(j.Location, 20),
			j.Source,
			formatLastActivity(daysSince(now, j.FirstSeenAt)),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func jobDetail(w io.Writer, d *JobDetail) error {
	j := d.Job
	fmt.Fprintf(w, "Title:       %s\n", j.Title)
	fmt.Fprintf(w, "Company:     %s\n", j.Company)
	if j.Location != "" {
		fmt.Fprintf(w, "Location:    %s\n", j.Location)
	}
	fmt.Fprintf(w, "Link:        %s\n", j.Link)
	fmt.Fprintf(w, "ID:          %s\n", j.IdentityHash)
	fmt.Fprintf(w, "First seen:  %s\n", j.FirstSeenAt.Format("Jan 02, 2006"))
	fmt.Fprintf(w, "Last seen:   %s\n", j.LastSeenAt.Format("Jan 02, 2006"))

	if len(j.Provenance) > 0 {
		sources := make([]string, 0, len(j.Provenance))
		for _, p := range j.Provenance {
			src := p.Source
			if p.ExtractionMethod != "" {
				src += " (" + string(p.ExtractionMethod) + ")"
			}
			sources = append(sources, src)
		}
		fmt.Fprintf(w, "Sources:     %s\n", strings.Join(sources, ", "))
	}

	if len(d.Scores) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Not scored yet.")
		return nil
	}

	for _, s := range d.Scores {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "Profile:     %s\n", s.ProfileID)

		if s.TotalScore != nil {
			fmt.Fprintf(w, "Score:       %d/%d (%s)\n", *s.TotalScore, scoring.MaxTotal, formatGrade(s.Grade))
		}
		if s.CompanyClass != nil {
			fmt.Fprintf(w, "Company:     %s\n", *s.CompanyClass)
		}
		if s.Seniority != nil {
			fmt.Fprintf(w, "Seniority:   %s\n", *s.Seniority)
		}
		if note := scoreNote(&s); note != "" {
			fmt.Fprintf(w, "Status:      %s\n", note)
		}

		if len(s.Breakdown) == 0 {
			continue
		}

		matched := rationaleMatches(s.Rationale)
		table := tablewriter.NewWriter(w)
		table.Header("Category", "Points", "Max", "Matched")
		for _, cat := range scoring.Categories {
			if err := table.Append([]string{
				string(cat),
				strconv.Itoa(s.Breakdown[string(cat)]),
				strconv.Itoa(scoring.MaxPoints[cat]),
				truncate(strings.Join(matched[cat], ", "), 40),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	return nil
}

func statsTable(w io.Writer, s *database.Stats) error {
	fmt.Fprintln(w, "Job Discovery Statistics")
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Total jobs:             %d\n", s.TotalJobs)
	fmt.Fprintf(w, "Total scores:           %d\n", s.TotalScores)

	if len(s.Profiles) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		header := []any{"Profile", "Scored", "Passed", "Filtered", "Review"}
		for _, g := range scoring.Grades {
			header = append(header, string(g))
		}
		table.Header(header...)

		for _, p := range s.Profiles {
			row := []string{
				p.ProfileID,
				strconv.Itoa(p.Scored),
				strconv.Itoa(p.Passed),
				strconv.Itoa(p.Filtered),
				strconv.Itoa(p.Review),
			}
			for _, g := range scoring.Grades {
				row = append(row, strconv.Itoa(p.ByGrade[string(g)]))
			}
			if err := table.Append(row); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(s.ByReason) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Filtered by reason:")
		for _, k := range sortedKeys(s.ByReason) {
			fmt.Fprintf(w, "  %-28s %d\n", k, s.ByReason[k])
		}
	}

	if len(s.BySource) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Jobs by source:")
		for _, k := range sortedKeys(s.BySource) {
			fmt.Fprintf(w, "  %-28s %d\n", k, s.BySource[k])
		}
	}

	return nil
}

func profilesTable(w io.Writer, profiles []config.Profile) error {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles configured.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Seniority", "Company", "Aggression", "Min Grade", "Enabled")

	for _, p := range profiles {
		enabled := "yes"
		if p.Disabled {
			enabled = "no"
		}
		if err := table.Append([]string{
			p.ID,
			truncate(p.Name, 25),
			truncate(strings.Join(p.TargetSeniority, ", "), 30),
			p.CompanyPreference,
			p.CompanyAggression,
			p.Digest.MinGrade,
			enabled,
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

func ingestResultsTable(w io.Writer, results []ingest.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No jobs ingested.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Company", "New", "Profile", "Grade", "Score", "Note")

	for _, r := range results {
		status := "updated"
		if r.Created {
			status = "created"
		}
		for _, s := range r.Scores {
			var grade *string
			if s.Grade != nil {
				g := string(*s.Grade)
				grade = &g
			}
			score := "-"
			if s.TotalScore != nil {
				score = strconv.Itoa(*s.TotalScore)
			}
			note := ""
			switch {
			case s.FilterReason != nil:
				note = *s.FilterReason
			case s.ManualReview:
				note = "needs review"
			}

			if err := table.Append([]string{
				job.ShortHash(r.Job.IdentityHash),
				truncate(r.Job.Title, 40),
				truncate(r.Job.Company, 20),
				status,
				s.ProfileID,
				formatGrade(grade),
				score,
				note,
			}); err != nil {
				return err
			}
		}
	}

	return table.Render()
}

func batchSummary(w io.Writer, s ingest.BatchSummary) error {
	fmt.Fprintf(w, "Jobs received:          %d\n", s.Total)
	fmt.Fprintf(w, "Created:                %d\n", s.Created)
	fmt.Fprintf(w, "Updated:                %d\n", s.Updated)
	if s.Invalid > 0 {
		fmt.Fprintf(w, "Invalid:                %d\n", s.Invalid)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed:                 %d\n", s.Failed)
	}
	fmt.Fprintf(w, "Filtered (per profile): %d\n", s.Filtered)
	fmt.Fprintf(w, "Needs review:           %d\n", s.Review)
	return nil
}

func syncSummary(w io.Writer, r *collector.SyncResult) error {
	fmt.Fprintf(w, "Messages fetched:       %d\n", r.MessagesFetched)
	fmt.Fprintf(w, "Already processed:      %d\n", r.MessagesSkipped)
	fmt.Fprintf(w, "Messages with jobs:     %d\n", r.MessagesExtracted)
	fmt.Fprintf(w, "Jobs found:             %d\n", r.JobsFound)
	fmt.Fprintf(w, "Jobs created:           %d\n", r.JobsCreated)
	fmt.Fprintf(w, "Jobs updated:           %d\n", r.JobsUpdated)
	if r.JobsInvalid > 0 {
		fmt.Fprintf(w, "Jobs invalid:           %d\n", r.JobsInvalid)
	}
	fmt.Fprintf(w, "Filtered (per profile): %d\n", r.JobsFiltered)
	fmt.Fprintf(w, "Needs review:           %d\n", r.JobsForReview)

	if len(r.ByProducer) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Jobs by producer:")
		for _, k := range sortedKeys(r.ByProducer) {
			fmt.Fprintf(w, "  %-20s %d\n", k, r.ByProducer[k])
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}

	return nil
}

// scoreNote describes why a score is not a plain digest candidate
func scoreNote(s *database.Score) string {
	switch {
	case s.FilterReason != nil:
		return *s.FilterReason
	case s.ReviewDecision != nil:
		return *s.ReviewDecision
	case s.ManualReview:
		return "needs review"
	default:
		return ""
	}
}

var gradeColors = map[scoring.Grade]*color.Color{
	scoring.GradeA: color.New(color.FgGreen, color.Bold),
	scoring.GradeB: color.New(color.FgGreen),
	scoring.GradeC: color.New(color.FgYellow),
	scoring.GradeD: color.New(color.FgMagenta),
	scoring.GradeF: color.New(color.FgRed),
}

func formatGrade(g *string) string {
	if g == nil {
		return "-"
	}
	if c, ok := gradeColors[scoring.Grade(*g)]; ok {
		return c.Sprint(*g)
	}
	return *g
}

// rationaleMatches groups the matched keywords stored in a score's rationale
func rationaleMatches(rationale *string) map[scoring.Category][]string {
	out := make(map[scoring.Category][]string)
	if rationale == nil || *rationale == "" {
		return out
	}
	var details []scoring.CategoryScore
	if err := json.Unmarshal([]byte(*rationale), &details); err != nil {
		return out
	}
	for _, d := range details {
		out[d.Category] = d.Matched
	}
	return out
}

func daysSince(now, t time.Time) int {
	if t.IsZero() || t.After(now) {
		return 0
	}
	return int(now.Sub(t).Hours() / 24)
}

func formatLastActivity(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	default:
		return fmt.Sprintf("%d days ago", days)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
