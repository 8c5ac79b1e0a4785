package gmail

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vijay-prabhu/jobscout/internal/email"
)

const pageSize = 100

// Provider implements the email.Provider interface for Gmail
type Provider struct {
	credPath  string
	tokenPath string
	service   *gmail.Service
	logger    *zap.Logger
	out       io.Writer
}

// New creates a new Gmail provider
func New(credPath, tokenPath string, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		credPath:  credPath,
		tokenPath: tokenPath,
		logger:    logger,
		out:       os.Stderr,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gmail"
}

// Authenticate performs OAuth authentication
func (p *Provider) Authenticate(ctx context.Context) error {
	config, err := loadCredentials(p.credPath)
	if err != nil {
		return err
	}

	client, err := getClient(ctx, config, p.tokenPath, p.out)
	if err != nil {
		return fmt.Errorf("failed to get OAuth client: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}

	p.service = service
	return nil
}

// FetchEmails retrieves emails matching criteria
func (p *Provider) FetchEmails(ctx context.Context, opts email.FetchOptions) ([]email.Email, error) {
	if p.service == nil {
		return nil, fmt.Errorf("not authenticated - call Authenticate() first")
	}

	query := buildQuery(opts)
	p.logger.Debug("listing messages", zap.String("query", query), zap.Int("max_results", opts.MaxResults))

	var emails []email.Email
	pageToken := ""

	for {
		req := p.service.Users.Messages.List("me").
			Q(query).
			MaxResults(int64(min(opts.MaxResults-len(emails), pageSize)))

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}

		for _, msg := range resp.Messages {
			fullMsg, err := p.service.Users.Messages.Get("me", msg.Id).
				Format("full").
				Context(ctx).
				Do()
			if err != nil {
				p.logger.Warn("failed to fetch message", zap.String("message_id", msg.Id), zap.Error(err))
				continue
			}

			emails = append(emails, convertMessage(fullMsg))

			if len(emails) >= opts.MaxResults {
				return emails, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" || len(emails) >= opts.MaxResults {
			break
		}
	}

	return emails, nil
}
