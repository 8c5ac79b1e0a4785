package source

import (
	"strings"

	"golang.org/x/net/html"
)

// Anchor is a hyperlink found in an HTML body
type Anchor struct {
	Href string
	Text string
}

// Anchors returns every <a href> in document order with its collapsed text
func Anchors(src string) []Anchor {
	var anchors []Anchor
	z := html.NewTokenizer(strings.NewReader(src))

	var current *Anchor
	var text strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			return anchors
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					current = &Anchor{Href: strings.TrimSpace(string(val))}
					text.Reset()
				}
				if !more {
					break
				}
			}
		case html.TextToken:
			if current != nil {
				text.Write(z.Text())
				text.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "a" && current != nil {
				current.Text = strings.Join(strings.Fields(text.String()), " ")
				anchors = append(anchors, *current)
				current = nil
			}
		}
	}
}

// CompanyFromSlug turns an ATS board slug such as "boston-dynamics" into
// a display name
func CompanyFromSlug(slug string) string {
	slug = strings.Trim(strings.ToLower(slug), "-_ ")
	if slug == "" {
		return ""
	}

	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
