package email

import (
	"strings"
	"time"
)

// Email represents a provider-agnostic email message
type Email struct {
	ID       string            // Provider-specific ID
	ThreadID string            // Thread/conversation ID
	Subject  string            // Email subject
	From     Address           // Sender address
	To       []Address         // Recipient addresses
	Date     time.Time         // Send/receive date
	Snippet  string            // Short preview text
	Body     string            // Plain text body, or tag-stripped HTML
	HTML     string            // Raw HTML body when the message has one
	Labels   []string          // Provider-specific labels
	Headers  map[string]string // Selected headers
}

// Address represents an email address with optional name
type Address struct {
	Name  string
	Email string
}

// String returns the formatted address
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// Domain extracts the domain from the email address
func (a Address) Domain() string {
	parts := strings.Split(a.Email, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}

// Domain returns the sender's email domain
func (e *Email) Domain() string {
	return e.From.Domain()
}

// Text returns the best plain-text rendering of the message
func (e *Email) Text() string {
	if e.Body != "" {
		return e.Body
	}
	return e.Snippet
}

// ParseAddress parses an email address string like "Name <email@example.com>"
func ParseAddress(s string) Address {
	s = strings.TrimSpace(s)

	// Try to extract name and email from "Name <email>" format
	if start := strings.Index(s, "<"); start != -1 {
		if end := strings.Index(s, ">"); end > start {
			return Address{
				Name:  strings.Trim(strings.TrimSpace(s[:start]), `"`),
				Email: strings.TrimSpace(s[start+1 : end]),
			}
		}
	}

	// Just an email address
	return Address{Email: s}
}

// ParseAddresses parses a comma-separated list of addresses
func ParseAddresses(s string) []Address {
	if s == "" {
		return nil
	}

	var addresses []Address
	for _, part := range strings.Split(s, ",") {
		if addr := ParseAddress(part); addr.Email != "" {
			addresses = append(addresses, addr)
		}
	}
	return addresses
}
