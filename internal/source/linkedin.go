package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

var (
	linkedInViewJob = regexp.MustCompile(`(?i)(?:view job:?\s*)?(https?://(?:www\.)?linkedin\.com/(?:comm/)?jobs/view/(\d+)\S*)`)
	linkedInNoise   = regexp.MustCompile(`(?i)^(?:apply with|actively recruiting|promoted|easy apply|be an early applicant|see all jobs|your job alert|new jobs? (?:match|for)|\d+\s+(?:connections?|alumni|alum|applicants?|school alum)|[-=_]{3,}$)`)
)

// LinkedIn parses LinkedIn job alert emails. The plain-text rendering lists
// each job as a block of title, company and location lines followed by a
// "View job:" link.
type LinkedIn struct {
	senders []string
}

// NewLinkedIn creates the LinkedIn job alert producer
func NewLinkedIn() *LinkedIn {
	return &LinkedIn{senders: []string{"jobalerts-noreply@", "jobs-noreply@", "linkedin.com"}}
}

func (l *LinkedIn) Name() string {
	return "linkedin"
}

func (l *LinkedIn) CanHandle(e *email.Email) bool {
	return MatchesSender(e.From, l.senders) && strings.Contains(strings.ToLower(e.From.Email), "linkedin")
}

func (l *LinkedIn) Parse(_ context.Context, e *email.Email) ([]job.RawJob, error) {
	var jobs []job.RawJob
	var block []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(e.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := linkedInViewJob.FindStringSubmatch(line)
		if m == nil {
			if !linkedInNoise.MatchString(line) {
				block = append(block, line)
			}
			continue
		}

		// Text before the link on the same line belongs to the block
		if prefix := strings.TrimSpace(line[:strings.Index(line, m[0])]); prefix != "" {
			block = append(block, prefix)
		}

		link := "https://www.linkedin.com/jobs/view/" + m[2] + "/"
		if raw, ok := linkedInBlock(block, link); ok && !seen[link] {
			seen[link] = true
			jobs = append(jobs, raw)
		}
		block = block[:0]
	}

	return stamp(jobs, e, l.Name(), job.ExtractionRegex), nil
}

// linkedInBlock reads title, company and location from the last lines
// before a job link
func linkedInBlock(lines []string, link string) (job.RawJob, bool) {
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}

	var title, company, location string
	switch len(lines) {
	case 3:
		title, company, location = lines[0], lines[1], lines[2]
	case 2:
		title = lines[0]
		company, location = splitCompanyLocation(lines[1])
	default:
		return job.RawJob{}, false
	}

	if title == "" || company == "" {
		return job.RawJob{}, false
	}
	return job.RawJob{Title: title, Company: company, Location: location, Link: link}, true
}

// splitCompanyLocation handles the "Company · Location" single-line form
func splitCompanyLocation(s string) (string, string) {
	for _, sep := range []string{" · ", " - ", " | "} {
		if company, location, ok := strings.Cut(s, sep); ok {
			return strings.TrimSpace(company), strings.TrimSpace(location)
		}
	}
	return s, ""
}
