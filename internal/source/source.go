// Package source turns job alert messages into RawJobs. Each Producer
// recognises one family of messages; the Registry picks the first one that
// can handle a message and falls back to a general extractor otherwise.
package source

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

// Producer extracts raw jobs from one kind of message
type Producer interface {
	// Name is recorded as the job source
	Name() string

	// CanHandle reports whether the message belongs to this producer
	CanHandle(e *email.Email) bool

	// Parse extracts every job the message advertises
	Parse(ctx context.Context, e *email.Email) ([]job.RawJob, error)
}

// Extraction is the outcome of running a message through the registry
type Extraction struct {
	Producer string
	Jobs     []job.RawJob
}

// Registry dispatches messages to producers
type Registry struct {
	producers []Producer
	fallback  Producer
	logger    *zap.Logger
}

// NewRegistry creates a registry that tries producers in order
func NewRegistry(logger *zap.Logger, producers ...Producer) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{producers: producers, logger: logger}
}

// Default returns a registry with the built-in regex producers
func Default(logger *zap.Logger) *Registry {
	return NewRegistry(logger, NewLinkedIn(), NewATS())
}

// SetFallback sets the producer used when no regular producer handles a
// message or a handling producer finds nothing
func (r *Registry) SetFallback(p Producer) {
	r.fallback = p
}

// Names lists the registered producers in dispatch order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.producers)+1)
	for _, p := range r.producers {
		names = append(names, p.Name())
	}
	if r.fallback != nil {
		names = append(names, r.fallback.Name()+" (fallback)")
	}
	return names
}

// Extract runs the message through the first producer that can handle it
func (r *Registry) Extract(ctx context.Context, e *email.Email) (*Extraction, error) {
	for _, p := range r.producers {
		if !p.CanHandle(e) {
			continue
		}

		jobs, err := p.Parse(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		if len(jobs) > 0 || r.fallback == nil {
			return &Extraction{Producer: p.Name(), Jobs: jobs}, nil
		}

		r.logger.Debug("producer found no jobs, trying fallback",
			zap.String("producer", p.Name()),
			zap.String("message_id", e.ID),
		)
		break
	}

	if r.fallback == nil || !r.fallback.CanHandle(e) {
		return &Extraction{}, nil
	}

	jobs, err := r.fallback.Parse(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.fallback.Name(), err)
	}
	return &Extraction{Producer: r.fallback.Name(), Jobs: jobs}, nil
}

// MatchesSender reports whether the sender matches any of the patterns.
// A pattern is a domain ("linkedin.com", which also matches subdomains),
// a full address, or an address prefix ending in "@".
func MatchesSender(addr email.Address, patterns []string) bool {
	domain := addr.Domain()
	if domain == "" {
		return false
	}
	full := strings.ToLower(addr.Email)

	for _, pattern := range patterns {
		if matchesDomainPattern(domain, full, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func matchesDomainPattern(domain, fullEmail, pattern string) bool {
	if strings.Contains(pattern, "@") {
		if fullEmail == pattern {
			return true
		}
		// Prefix match (e.g., "jobalerts-noreply@" matches any domain)
		return strings.HasSuffix(pattern, "@") && strings.HasPrefix(fullEmail, pattern)
	}

	if domain == pattern {
		return true
	}

	// Subdomain (e.g., "mail.greenhouse.io" matches "greenhouse.io")
	return strings.HasSuffix(domain, "."+pattern)
}

// stamp fills in the fields every producer sets the same way
func stamp(jobs []job.RawJob, e *email.Email, source string, method job.ExtractionMethod) []job.RawJob {
	for i := range jobs {
		jobs[i].Source = source
		jobs[i].ExtractionMethod = method
		if jobs[i].ReceivedAt.IsZero() {
			jobs[i].ReceivedAt = e.Date
		}
	}
	return jobs
}
