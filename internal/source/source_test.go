package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

const linkedInAlert = `Your job alert for director of engineering
3 new jobs match your preferences.

Director of Engineering
Acme Robotics
Toronto, Ontario, Canada
View job: https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=abc

VP, Hardware
Boston Dynamics · Remote
Actively recruiting
View job: https://www.linkedin.com/comm/jobs/view/4012345679/?trackingId=def

Director of Engineering
Acme Robotics
Toronto, Ontario, Canada
View job: https://www.linkedin.com/comm/jobs/view/4012345678/?trackingId=xyz

See all jobs on LinkedIn: https://www.linkedin.com/comm/jobs/search/?keywords=director
`

func TestLinkedIn_Parse(t *testing.T) {
	received := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	e := &email.Email{
		ID:   "m1",
		From: email.Address{Name: "LinkedIn Job Alerts", Email: "jobalerts-noreply@linkedin.com"},
		Date: received,
		Body: linkedInAlert,
	}

	p := NewLinkedIn()
	if !p.CanHandle(e) {
		t.Fatal("expected LinkedIn producer to handle alert")
	}

	jobs, err := p.Parse(context.Background(), e)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := []job.RawJob{
		{Title: "Director of Engineering", Company: "Acme Robotics", Location: "Toronto, Ontario, Canada", Link: "https://www.linkedin.com/jobs/view/4012345678/"},
		{Title: "VP, Hardware", Company: "Boston Dynamics", Location: "Remote", Link: "https://www.linkedin.com/jobs/view/4012345679/"},
	}
	if len(jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d: %+v", len(want), len(jobs), jobs)
	}

	for i, w := range want {
		got := jobs[i]
		if got.Title != w.Title || got.Company != w.Company || got.Location != w.Location || got.Link != w.Link {
			t.Errorf("job %d = %+v, want %+v", i, got, w)
		}
		if got.Source != "linkedin" || got.ExtractionMethod != job.ExtractionRegex {
			t.Errorf("job %d provenance = %s/%s", i, got.Source, got.ExtractionMethod)
		}
		if !got.ReceivedAt.Equal(received) {
			t.Errorf("job %d ReceivedAt = %v", i, got.ReceivedAt)
		}
	}
}

func TestLinkedIn_CanHandle(t *testing.T) {
	p := NewLinkedIn()

	tests := []struct {
		from string
		want bool
	}{
		{"jobalerts-noreply@linkedin.com", true},
		{"jobs-noreply@linkedin.com", true},
		{"messages-noreply@linkedin.com", true},
		{"no-reply@greenhouse.io", false},
		{"jobalerts-noreply@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			e := &email.Email{From: email.Address{Email: tt.from}}
			if got := p.CanHandle(e); got != tt.want {
				t.Errorf("CanHandle(%s) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestATS_ParseSingleJob(t *testing.T) {
	e := &email.Email{
		From:    email.Address{Email: "no-reply@greenhouse.io"},
		Subject: "New job: Director of Robotics at Boston Dynamics",
		HTML:    `<p>Location: Waltham, MA</p><p><a href="https://boards.greenhouse.io/bostondynamics/jobs/12345?gh_src=x">Apply now</a></p>`,
		Body:    "Location: Waltham, MA\nApply now",
	}

	p := NewATS()
	if !p.CanHandle(e) {
		t.Fatal("expected ATS producer to handle greenhouse mail")
	}

	jobs, err := p.Parse(context.Background(), e)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}

	got := jobs[0]
	if got.Title != "Director of Robotics" || got.Company != "Boston Dynamics" {
		t.Errorf("job = %+v", got)
	}
	if got.Link != "https://boards.greenhouse.io/bostondynamics/jobs/12345" {
		t.Errorf("Link = %q, want tracking parameters stripped", got.Link)
	}
	if got.Location != "Waltham, MA" {
		t.Errorf("Location = %q", got.Location)
	}
	if got.Source != "ats" {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestATS_ParseDigest(t *testing.T) {
	e := &email.Email{
		From:    email.Address{Email: "digest@example.com"},
		Subject: "Jobs you might like",
		HTML: `<a href="https://jobs.lever.co/anduril/0f1e2d3c-4b5a-6978-8796-a5b4c3d2e1f0">Director, Test Engineering</a>
<a href="https://jobs.ashbyhq.com/skydio/11111111-2222-3333-4444-555555555555">VP Hardware</a>`,
		Body: "Location: Remote",
	}

	p := NewATS()
	if !p.CanHandle(e) {
		t.Fatal("expected ATS producer to handle mail with board links")
	}

	jobs, err := p.Parse(context.Background(), e)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Title != "Director, Test Engineering" || jobs[0].Company != "Anduril" {
		t.Errorf("job 0 = %+v", jobs[0])
	}
	if jobs[1].Title != "VP Hardware" || jobs[1].Company != "Skydio" {
		t.Errorf("job 1 = %+v", jobs[1])
	}
	for _, j := range jobs {
		if j.Location != "" {
			t.Errorf("expected no location on multi-job digest, got %q", j.Location)
		}
	}
}

func TestATS_SkipsUntitledJobs(t *testing.T) {
	e := &email.Email{
		Subject: "Thanks for applying",
		Body:    "Track your application: https://boards.greenhouse.io/acme/jobs/999",
	}

	jobs, err := NewATS().Parse(context.Background(), e)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("expected no jobs without a title, got %+v", jobs)
	}
}

func TestParseATSSubject(t *testing.T) {
	tests := []struct {
		subject     string
		wantTitle   string
		wantCompany string
	}{
		{"Director of Engineering at Acme", "Director of Engineering", "Acme"},
		{"New role: VP Hardware - Rivian", "VP Hardware", "Rivian"},
		{"Fwd: Head of Robotics @ Zoox", "Head of Robotics", "Zoox"},
		{"Your application", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			title, company := parseATSSubject(tt.subject)
			if title != tt.wantTitle || company != tt.wantCompany {
				t.Errorf("parseATSSubject(%q) = %q, %q", tt.subject, title, company)
			}
		})
	}
}

func TestMatchesSender(t *testing.T) {
	patterns := []string{"greenhouse.io", "jobalerts-noreply@", "jobs@lever.co"}

	tests := []struct {
		addr string
		want bool
	}{
		{"no-reply@greenhouse.io", true},
		{"no-reply@mail.greenhouse.io", true},
		{"no-reply@notgreenhouse.io", false},
		{"jobalerts-noreply@linkedin.com", true},
		{"jobs@lever.co", true},
		{"hello@lever.co", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			if got := MatchesSender(email.Address{Email: tt.addr}, patterns); got != tt.want {
				t.Errorf("MatchesSender(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestAnchors(t *testing.T) {
	got := Anchors(`<p>Hi <a name="top">x</a><a href=" https://a.example/1 ">First <b>job</b></a> and <a href="https://a.example/2">Second</a></p>`)
	if len(got) != 2 {
		t.Fatalf("expected 2 anchors, got %d: %+v", len(got), got)
	}
	if got[0].Href != "https://a.example/1" || got[0].Text != "First job" {
		t.Errorf("anchor 0 = %+v", got[0])
	}
	if got[1].Text != "Second" {
		t.Errorf("anchor 1 = %+v", got[1])
	}
}

func TestCompanyFromSlug(t *testing.T) {
	tests := map[string]string{
		"boston-dynamics":    "Boston Dynamics",
		"anduril":            "Anduril",
		"intuitive_surgical": "Intuitive Surgical",
		"":                   "",
	}
	for slug, want := range tests {
		if got := CompanyFromSlug(slug); got != want {
			t.Errorf("CompanyFromSlug(%q) = %q, want %q", slug, got, want)
		}
	}
}

// stubProducer handles messages from one sender and returns fixed jobs
type stubProducer struct {
	name   string
	sender string
	jobs   []job.RawJob
	err    error
	calls  int
}

func (s *stubProducer) Name() string { return s.name }

func (s *stubProducer) CanHandle(e *email.Email) bool {
	return s.sender == "*" || e.From.Email == s.sender
}

func (s *stubProducer) Parse(_ context.Context, _ *email.Email) ([]job.RawJob, error) {
	s.calls++
	return s.jobs, s.err
}

func TestRegistry_Extract(t *testing.T) {
	one := []job.RawJob{{Title: "Director", Company: "Acme", Link: "https://x/1"}}
	ctx := context.Background()

	t.Run("first handling producer wins", func(t *testing.T) {
		a := &stubProducer{name: "a", sender: "a@x.com", jobs: one}
		b := &stubProducer{name: "b", sender: "a@x.com", jobs: one}
		r := NewRegistry(nil, a, b)

		ex, err := r.Extract(ctx, &email.Email{From: email.Address{Email: "a@x.com"}})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if ex.Producer != "a" || len(ex.Jobs) != 1 || b.calls != 0 {
			t.Errorf("Extract = %+v, b.calls = %d", ex, b.calls)
		}
	})

	t.Run("fallback for unhandled message", func(t *testing.T) {
		fb := &stubProducer{name: "llm", sender: "*", jobs: one}
		r := NewRegistry(nil, &stubProducer{name: "a", sender: "a@x.com"})
		r.SetFallback(fb)

		ex, err := r.Extract(ctx, &email.Email{From: email.Address{Email: "z@x.com"}})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if ex.Producer != "llm" || len(ex.Jobs) != 1 {
			t.Errorf("Extract = %+v", ex)
		}
	})

	t.Run("fallback when producer finds nothing", func(t *testing.T) {
		fb := &stubProducer{name: "llm", sender: "*", jobs: one}
		r := NewRegistry(nil, &stubProducer{name: "a", sender: "a@x.com"})
		r.SetFallback(fb)

		ex, err := r.Extract(ctx, &email.Email{From: email.Address{Email: "a@x.com"}})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if ex.Producer != "llm" || fb.calls != 1 {
			t.Errorf("Extract = %+v, fallback calls = %d", ex, fb.calls)
		}
	})

	t.Run("no producer", func(t *testing.T) {
		r := NewRegistry(nil)
		ex, err := r.Extract(ctx, &email.Email{})
		if err != nil || ex.Producer != "" || len(ex.Jobs) != 0 {
			t.Errorf("Extract = %+v, %v", ex, err)
		}
	})

	t.Run("producer error", func(t *testing.T) {
		boom := errors.New("boom")
		r := NewRegistry(nil, &stubProducer{name: "a", sender: "*", err: boom})
		if _, err := r.Extract(ctx, &email.Email{}); !errors.Is(err, boom) {
			t.Errorf("expected wrapped producer error, got %v", err)
		}
	})
}

func TestRegistry_Names(t *testing.T) {
	r := Default(nil)
	r.SetFallback(&stubProducer{name: "llm"})

	names := r.Names()
	want := []string{"linkedin", "ats", "llm (fallback)"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"array", `[{"title":"A","company":"B","link":"c"},{"title":"D","company":"E","link":"f"}]`, 2, false},
		{"single object", ` {"title":"A","company":"B","link":"c","extraction_method":"llm"}`, 1, false},
		{"empty", "  ", 0, false},
		{"malformed", `[{"title":`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := Decode([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(jobs) != tt.want {
				t.Errorf("got %d jobs, want %d", len(jobs), tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	if err := os.WriteFile(path, []byte(`[{"title":"VP Hardware","company":"Zoox","link":"https://x/1","source":"scraper"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	jobs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Source != "scraper" {
		t.Errorf("LoadFile = %+v", jobs)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
