// Package job defines the source-agnostic job records that flow through the
// pipeline and the identity hash used to deduplicate them.
package job

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vijay-prabhu/jobscout/internal/keyword"
)

// ExtractionMethod records how a producer turned source content into a RawJob
type ExtractionMethod string

const (
	ExtractionRegex ExtractionMethod = "regex"
	ExtractionLLM   ExtractionMethod = "llm"
)

// Valid reports whether m is empty or a known method
func (m ExtractionMethod) Valid() bool {
	return m == "" || m == ExtractionRegex || m == ExtractionLLM
}

// RawJob is what every producer (email parser, scraper, LLM extractor) emits
type RawJob struct {
	Title            string           `json:"title"`
	Company          string           `json:"company"`
	Location         string           `json:"location,omitempty"`
	Link             string           `json:"link"`
	RawDescription   string           `json:"raw_description,omitempty"`
	Source           string           `json:"source,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`
	ReceivedAt       time.Time        `json:"received_at,omitempty"`
}

// Job is the stored, deduplicated posting
type Job struct {
	IdentityHash   string       `json:"identity_hash"`
	Title          string       `json:"title"`
	Company        string       `json:"company"`
	Location       string       `json:"location,omitempty"`
	Link           string       `json:"link"`
	RawDescription string       `json:"raw_description,omitempty"`
	Source         string       `json:"source,omitempty"`
	ReceivedAt     time.Time    `json:"received_at"`
	FirstSeenAt    time.Time    `json:"first_seen_at"`
	LastSeenAt     time.Time    `json:"last_seen_at"`
	Provenance     []Provenance `json:"provenance,omitempty"`
}

// Provenance is one (source, extraction method) pair that observed a job
type Provenance struct {
	Source           string           `json:"source"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`
	SeenAt           time.Time        `json:"seen_at"`
}

// ErrInvalidJob is matched by every InvalidJobError
var ErrInvalidJob = errors.New("invalid job")

// InvalidJobError reports a RawJob that is missing required fields
type InvalidJobError struct {
	Missing []string
	Source  string
}

func (e *InvalidJobError) Error() string {
	msg := fmt.Sprintf("invalid job: missing %s", strings.Join(e.Missing, ", "))
	if e.Source != "" {
		msg += fmt.Sprintf(" (source %s)", e.Source)
	}
	return msg
}

// Is makes errors.Is(err, ErrInvalidJob) work for wrapped InvalidJobErrors
func (e *InvalidJobError) Is(target error) bool {
	return target == ErrInvalidJob
}

// Validate checks the fields the identity hash depends on
func (r RawJob) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(r.Link) == "" {
		missing = append(missing, "link")
	}
	if len(missing) > 0 {
		return &InvalidJobError{Missing: missing, Source: r.Source}
	}
	if !r.ExtractionMethod.Valid() {
		return fmt.Errorf("%w: unknown extraction method %q", ErrInvalidJob, r.ExtractionMethod)
	}
	return nil
}

// Normalize trims whitespace from every text field
func (r RawJob) Normalize() RawJob {
	r.Title = strings.Join(strings.Fields(r.Title), " ")
	r.Company = strings.Join(strings.Fields(r.Company), " ")
	r.Location = strings.Join(strings.Fields(r.Location), " ")
	r.Link = strings.TrimSpace(r.Link)
	r.RawDescription = strings.TrimSpace(r.RawDescription)
	r.Source = strings.TrimSpace(r.Source)
	return r
}

// IdentityHash returns the hash of the fields that identify this posting
func (r RawJob) IdentityHash() string {
	return IdentityHash(r.Title, r.Company, r.Link)
}

// ToJob converts a validated RawJob into a Job first seen at now
func (r RawJob) ToJob(now time.Time) Job {
	n := r.Normalize()
	received := n.ReceivedAt
	if received.IsZero() {
		received = now
	}
	return Job{
		IdentityHash:   n.IdentityHash(),
		Title:          n.Title,
		Company:        n.Company,
		Location:       n.Location,
		Link:           n.Link,
		RawDescription: n.RawDescription,
		Source:         n.Source,
		ReceivedAt:     received,
		FirstSeenAt:    now,
		LastSeenAt:     now,
	}
}

// IdentityHash is a stable sha256 fingerprint of title, company and link.
// Case and whitespace differences do not change the hash.
func IdentityHash(title, company, link string) string {
	h := sha256.New()
	h.Write([]byte(keyword.Normalize(title)))
	h.Write([]byte{0x1f})
	h.Write([]byte(keyword.Normalize(company)))
	h.Write([]byte{0x1f})
	h.Write([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(h.Sum(nil))
}

// ShortHash returns the first 12 characters of a hash for display
func ShortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
