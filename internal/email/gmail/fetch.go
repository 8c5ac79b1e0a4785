package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"
	"google.golang.org/api/gmail/v1"

	"github.com/vijay-prabhu/jobscout/internal/email"
)

// buildQuery constructs a Gmail search query from FetchOptions
func buildQuery(opts email.FetchOptions) string {
	var parts []string

	if opts.After != nil {
		parts = append(parts, fmt.Sprintf("after:%s", opts.After.Format("2006/01/02")))
	}

	if opts.Query != "" {
		parts = append(parts, opts.Query)
	}

	return strings.Join(parts, " ")
}

// convertMessage converts a Gmail message to our Email type
func convertMessage(msg *gmail.Message) email.Email {
	e := email.Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Labels:   msg.LabelIds,
		Headers:  make(map[string]string),
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch strings.ToLower(header.Name) {
			case "subject":
				e.Subject = header.Value
			case "from":
				e.From = email.ParseAddress(header.Value)
			case "to":
				e.To = email.ParseAddresses(header.Value)
			case "date":
				if t, err := parseDate(header.Value); err == nil {
					e.Date = t
				}
			default:
				if isUsefulHeader(header.Name) {
					e.Headers[header.Name] = header.Value
				}
			}
		}
	}

	// Fallback to internal timestamp if date parsing failed
	if e.Date.IsZero() {
		e.Date = time.UnixMilli(msg.InternalDate)
	}

	e.HTML = extractPartByMime(msg.Payload, "text/html")
	e.Body = extractPartByMime(msg.Payload, "text/plain")
	if e.Body == "" && e.HTML != "" {
		e.Body = htmlToText(e.HTML)
	}

	return e
}

// parseDate attempts to parse various date formats
func parseDate(s string) (time.Time, error) {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)",
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// extractPartByMime recursively finds a part with the given MIME type
func extractPartByMime(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}

	if strings.HasPrefix(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		if decoded, err := decodeBody(part.Body.Data); err == nil {
			return decoded
		}
	}

	for _, subpart := range part.Parts {
		if result := extractPartByMime(subpart, mimeType); result != "" {
			return result
		}
	}

	return ""
}

// decodeBody decodes Gmail's URL-safe base64, padded or not
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
	}
	return string(decoded), err
}

var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "tr": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
}

// htmlToText renders HTML as plain text with one line per block element
func htmlToText(src string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(src))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skip++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

// collapseWhitespace trims every line and drops empty ones
func collapseWhitespace(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// isUsefulHeader returns true for headers we want to preserve
func isUsefulHeader(name string) bool {
	useful := map[string]bool{
		"message-id":       true,
		"reply-to":         true,
		"list-unsubscribe": true,
	}
	return useful[strings.ToLower(name)]
}
