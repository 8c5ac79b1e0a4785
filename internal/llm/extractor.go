package llm

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxBodyRunes        = 12000
	maxLinks            = 60
)

// Extractor turns messages no regex producer understands into raw jobs
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor creates an Extractor over the given generator
func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (x *Extractor) Name() string {
	return "llm"
}

// CanHandle accepts any message with some text to read
func (x *Extractor) CanHandle(e *email.Email) bool {
	return strings.TrimSpace(e.Text()) != "" || strings.TrimSpace(e.HTML) != ""
}

// Parse asks the model for the postings in a message. Jobs whose link does
// not appear in the message are dropped.
func (x *Extractor) Parse(ctx context.Context, e *email.Email) ([]job.RawJob, error) {
	links := messageLinks(e)
	prompt := buildPrompt(e, links)

	x.logger.Debug("gemini extraction request",
		zap.String("message_id", e.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, x.maxLogLen)),
	)

	raw, err := x.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	x.logger.Debug("gemini extraction response",
		zap.String("message_id", e.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, x.maxLogLen)),
	)

	extracted, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(links))
	for _, l := range links {
		known[l] = true
	}

	var jobs []job.RawJob
	for _, ej := range extracted {
		link := strings.TrimSpace(ej.Link)
		if !known[link] {
			x.logger.Debug("dropping extracted job with unknown link",
				zap.String("message_id", e.ID),
				zap.String("title", ej.Title),
				zap.String("link", link),
			)
			continue
		}
		jobs = append(jobs, job.RawJob{
			Title:            strings.TrimSpace(ej.Title),
			Company:          strings.TrimSpace(ej.Company),
			Location:         strings.TrimSpace(ej.Location),
			Link:             link,
			RawDescription:   strings.TrimSpace(ej.Description),
			Source:           x.Name(),
			ExtractionMethod: job.ExtractionLLM,
			ReceivedAt:       e.Date,
		})
	}

	return jobs, nil
}

type extractedJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Description string `json:"description"`
}

func buildPrompt(e *email.Email, links []string) string {
	body := []rune(e.Text())
	if len(body) > maxBodyRunes {
		body = body[:maxBodyRunes]
	}

	linkList := "none"
	if len(links) > 0 {
		linkList = "- " + strings.Join(links, "\n- ")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{FROM}}", e.From.String())
	prompt = strings.ReplaceAll(prompt, "{{SUBJECT}}", e.Subject)
	prompt = strings.ReplaceAll(prompt, "{{BODY}}", string(body))
	prompt = strings.ReplaceAll(prompt, "{{LINKS}}", linkList)
	return prompt
}

func parseResponse(raw string) ([]extractedJob, error) {
	cleaned := extractJSON(raw)

	// Models sometimes answer with a bare array
	if strings.HasPrefix(cleaned, "[") {
		var jobs []extractedJob
		if err := json.Unmarshal([]byte(cleaned), &jobs); err != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		return jobs, nil
	}

	var data struct {
		Jobs []extractedJob `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	return data.Jobs, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
