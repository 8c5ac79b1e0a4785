package email

import (
	"context"
	"time"
)

// Provider is a mailbox that job alert messages are pulled from
type Provider interface {
	Name() string

	// Authenticate loads or obtains credentials; FetchEmails fails until it succeeds
	Authenticate(ctx context.Context) error

	FetchEmails(ctx context.Context, opts FetchOptions) ([]Email, error)
}

// FetchOptions narrows a mailbox listing
type FetchOptions struct {
	MaxResults int
	After      *time.Time
	Query      string // provider search syntax, e.g. a Gmail from:(...) clause
}
