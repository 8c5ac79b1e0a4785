package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

// atsBoard describes how one applicant tracking system shapes its job links
type atsBoard struct {
	name string
	link *regexp.Regexp // group 1 is the company slug
}

var atsBoards = []atsBoard{
	{"greenhouse", regexp.MustCompile(`https?://(?:boards|job-boards)\.greenhouse\.io/([A-Za-z0-9_-]+)/jobs/\d+`)},
	{"lever", regexp.MustCompile(`https?://jobs\.lever\.co/([A-Za-z0-9_-]+)/[0-9a-fA-F-]{36}`)},
	{"ashby", regexp.MustCompile(`https?://jobs\.ashbyhq\.com/([A-Za-z0-9_.-]+)/[0-9a-fA-F-]{36}`)},
}

var (
	atsSubject  = regexp.MustCompile(`(?i)^(?:(?:fwd?|re):\s*)*(?:new (?:job|role|opening|position)s?\s*[:-]?\s*)?(.+?)\s+(?:at|@|-|–)\s+(.+?)\s*$`)
	atsLocation = regexp.MustCompile(`(?im)^\s*location\s*:\s*(.+?)\s*$`)
)

var genericLinkText = map[string]bool{
	"": true, "apply": true, "apply now": true, "view": true, "view job": true,
	"view role": true, "learn more": true, "here": true, "click here": true, "see job": true,
}

// ATS parses job notifications that link to Greenhouse, Lever or Ashby
// job boards
type ATS struct {
	senders []string
}

// NewATS creates the applicant tracking system producer
func NewATS() *ATS {
	return &ATS{senders: []string{"greenhouse.io", "lever.co", "ashbyhq.com"}}
}

func (a *ATS) Name() string {
	return "ats"
}

func (a *ATS) CanHandle(e *email.Email) bool {
	if MatchesSender(e.From, a.senders) {
		return true
	}
	content := e.HTML + "\n" + e.Text()
	for _, b := range atsBoards {
		if b.link.MatchString(content) {
			return true
		}
	}
	return false
}

func (a *ATS) Parse(_ context.Context, e *email.Email) ([]job.RawJob, error) {
	subjectTitle, subjectCompany := parseATSSubject(e.Subject)

	var location string
	if m := atsLocation.FindStringSubmatch(e.Text()); m != nil {
		location = m[1]
	}

	var jobs []job.RawJob
	seen := make(map[string]bool)

	add := func(link, text string) {
		board, slug, ok := matchBoard(link)
		if !ok {
			return
		}
		link = board.link.FindString(link)
		if seen[link] {
			return
		}

		title := strings.TrimSpace(text)
		if genericLinkText[strings.ToLower(title)] || strings.HasPrefix(title, "http") {
			title = subjectTitle
		}
		company := subjectCompany
		if company == "" {
			company = CompanyFromSlug(slug)
		}
		if title == "" || company == "" {
			return
		}

		seen[link] = true
		jobs = append(jobs, job.RawJob{
			Title:    title,
			Company:  company,
			Location: location,
			Link:     link,
		})
	}

	for _, anchor := range Anchors(e.HTML) {
		add(anchor.Href, anchor.Text)
	}
	for _, b := range atsBoards {
		for _, link := range b.link.FindAllString(e.Text(), -1) {
			add(link, "")
		}
	}

	// A location line is only trustworthy for single-job notifications
	if len(jobs) > 1 {
		for i := range jobs {
			jobs[i].Location = ""
		}
	}

	return stamp(jobs, e, a.Name(), job.ExtractionRegex), nil
}

func matchBoard(link string) (atsBoard, string, bool) {
	for _, b := range atsBoards {
		if m := b.link.FindStringSubmatch(link); m != nil {
			return b, m[1], true
		}
	}
	return atsBoard{}, "", false
}

// parseATSSubject reads "Director of Engineering at Acme" style subjects
func parseATSSubject(subject string) (title, company string) {
	m := atsSubject.FindStringSubmatch(strings.TrimSpace(subject))
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}
