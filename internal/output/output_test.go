package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/vijay-prabhu/jobscout/internal/collector"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/database"
	"github.com/vijay-prabhu/jobscout/internal/ingest"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

func init() {
	color.NoColor = true
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func sampleJob() job.Job {
	now := time.Now()
	return job.Job{
		IdentityHash: "0123456789abcdef0123",
		Title:        "Senior Robotics Software Engineer",
		Company:      "Boston Dynamics",
		Location:     "Waltham, MA",
		Link:         "https://example.com/jobs/1",
		FirstSeenAt:  now,
		LastSeenAt:   now,
	}
}

func TestTableTo_ScoredJobs(t *testing.T) {
	jobs := []database.ScoredJob{
		{
			Job: sampleJob(),
			Score: database.Score{
				ProfileID:  "default",
				TotalScore: intPtr(101),
				Grade:      strPtr("A"),
			},
		},
		{
			Job: job.Job{IdentityHash: "fedcba9876543210", Title: "Director of HR", Company: "Acme"},
			Score: database.Score{
				ProfileID:    "default",
				FilterReason: strPtr("hr_role"),
			},
		},
	}

	var buf bytes.Buffer
	if err := TableTo(&buf, jobs); err != nil {
		t.Fatalf("TableTo failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"0123456789ab", "101", "Boston Dynamics", "hr_role", "today"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableTo_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := TableTo(&buf, []database.ScoredJob{}); err != nil {
		t.Fatalf("TableTo failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No jobs found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTableTo_JobDetail(t *testing.T) {
	rationale := `[{"category":"seniority","points":30,"matched":["senior"]},{"category":"domain","points":25,"matched":["robotics"]}]`
	detail := &JobDetail{
		Job: sampleJob(),
		Scores: []database.Score{
			{
				ProfileID:  "default",
				TotalScore: intPtr(55),
				Grade:      strPtr("D"),
				Breakdown:  map[string]int{"seniority": 30, "domain": 25},
				Rationale:  &rationale,
				Seniority:  strPtr("senior"),
			},
			{
				ProfileID:      "second",
				TotalScore:     intPtr(70),
				Grade:          strPtr("C"),
				ManualReview:   true,
				ReviewDecision: strPtr(database.ReviewApproved),
			},
		},
	}

	var buf bytes.Buffer
	if err := TableTo(&buf, detail); err != nil {
		t.Fatalf("TableTo failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Boston Dynamics", "55/115", "robotics", "second", "approved"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableTo_Stats(t *testing.T) {
	stats := &database.Stats{
		TotalJobs:   3,
		TotalScores: 3,
		Profiles: []database.ProfileStats{
			{ProfileID: "default", Scored: 3, Passed: 2, Filtered: 1, ByGrade: map[string]int{"A": 1, "C": 1}},
		},
		ByReason: map[string]int{"hr_role": 1},
		BySource: map[string]int{"linkedin": 3},
	}

	var buf bytes.Buffer
	if err := TableTo(&buf, stats); err != nil {
		t.Fatalf("TableTo failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Total jobs:             3", "default", "hr_role", "linkedin"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableTo_Summaries(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want []string
	}{
		{
			name: "profiles",
			data: []config.Profile{{ID: "default", Name: "Robotics", Disabled: true}},
			want: []string{"default", "Robotics", "no"},
		},
		{
			name: "jobs",
			data: []job.Job{sampleJob()},
			want: []string{"0123456789ab", "Waltham, MA"},
		},
		{
			name: "batch summary",
			data: ingest.BatchSummary{Total: 5, Created: 4, Invalid: 1},
			want: []string{"Jobs received:          5", "Invalid:                1"},
		},
		{
			name: "sync result",
			data: &collector.SyncResult{MessagesFetched: 2, JobsCreated: 3, ByProducer: map[string]int{"linkedin": 3}},
			want: []string{"Messages fetched:       2", "linkedin"},
		},
		{
			name: "ingest results",
			data: []ingest.Result{{Job: sampleJob(), Created: true, Scores: []ingest.ScoreResult{{ProfileID: "default", ManualReview: true}}}},
			want: []string{"created", "needs review"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TableTo(&buf, tt.data); err != nil {
				t.Fatalf("TableTo failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestTableTo_Unsupported(t *testing.T) {
	if err := TableTo(&bytes.Buffer{}, 42); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestJSONTo(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONTo(&buf, &JobDetail{Job: sampleJob()}); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"identity_hash": "0123456789abcdef0123"`) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestJSONLinesTo(t *testing.T) {
	tests := []struct {
		name  string
		data  interface{}
		lines int
	}{
		{"slice", []config.Profile{{ID: "a"}, {ID: "b"}, {ID: "c"}}, 3},
		{"empty slice", []config.Profile{}, 0},
		{"single value", ingest.BatchSummary{Total: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := JSONLinesTo(&buf, tt.data); err != nil {
				t.Fatalf("JSONLinesTo failed: %v", err)
			}
			if got := strings.Count(buf.String(), "\n"); got != tt.lines {
				t.Errorf("got %d lines, want %d:\n%s", got, tt.lines, buf.String())
			}
		})
	}
}

func TestOutput_UnknownFormat(t *testing.T) {
	if err := Output("yaml", []job.Job{}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer string", 10, "a much ..."},
		{"Zürich Zürich Zürich", 9, "Zürich..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatLastActivity(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "today"},
		{1, "yesterday"},
		{3, "3 days ago"},
		{14, "2 weeks ago"},
		{45, "45 days ago"},
	}
	for _, tt := range tests {
		if got := formatLastActivity(tt.days); got != tt.want {
			t.Errorf("formatLastActivity(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
