package llm

import (
	"regexp"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/email"
	"github.com/vijay-prabhu/jobscout/internal/source"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// messageLinks lists the distinct http(s) links in a message, anchors first
func messageLinks(e *email.Email) []string {
	var links []string
	seen := make(map[string]bool)

	add := func(l string) {
		l = strings.TrimRight(strings.TrimSpace(l), ".,;")
		if l == "" || seen[l] || !strings.HasPrefix(l, "http") || len(links) >= maxLinks {
			return
		}
		if isBoilerplateLink(l) {
			return
		}
		seen[l] = true
		links = append(links, l)
	}

	for _, a := range source.Anchors(e.HTML) {
		add(a.Href)
	}
	for _, l := range urlPattern.FindAllString(e.Text(), -1) {
		add(l)
	}
	return links
}

var boilerplate = []string{"unsubscribe", "/settings", "privacy", "/help", "mailto:", "/preferences"}

func isBoilerplateLink(l string) bool {
	lower := strings.ToLower(l)
	for _, b := range boilerplate {
		if strings.Contains(lower, b) {
			return true
		}
	}
	return false
}
