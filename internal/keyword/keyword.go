// Package keyword implements the case-insensitive, word-boundary aware
// matching shared by the classifiers, scorers and filters.
package keyword

import "strings"

// Contains reports whether text contains kw as a whole word or phrase.
// Matching is case-insensitive. Boundaries are only enforced on the sides of
// kw that start or end with a word character, so "c++" and "sr." still match.
func Contains(text, kw string) bool {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" {
		return false
	}
	return containsWord(strings.ToLower(text), kw)
}

// containsWord scans every occurrence of word in text until one sits on a
// word boundary. Both arguments must already be lowercase.
func containsWord(text, word string) bool {
	checkBefore := isWordChar(word[0])
	checkAfter := isWordChar(word[len(word)-1])

	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx == -1 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		okBefore := !checkBefore || start == 0 || !isWordChar(text[start-1])
		okAfter := !checkAfter || end == len(text) || !isWordChar(text[end])
		if okBefore && okAfter {
			return true
		}

		offset = start + 1
	}
}

// isWordChar returns true for alphanumeric characters
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Matches returns the distinct keywords from kws found in text, in list order
func Matches(text string, kws []string) []string {
	if text == "" || len(kws) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	seen := make(map[string]bool, len(kws))
	var hits []string
	for _, kw := range kws {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" || seen[k] {
			continue
		}
		if containsWord(lower, k) {
			seen[k] = true
			hits = append(hits, kw)
		}
	}
	return hits
}

// Any reports whether any keyword in kws appears in text
func Any(text string, kws []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range kws {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && containsWord(lower, k) {
			return true
		}
	}
	return false
}

// First returns the first keyword in kws that appears in text
func First(text string, kws []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, kw := range kws {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k != "" && containsWord(lower, k) {
			return kw, true
		}
	}
	return "", false
}

// Normalize lowercases s and collapses runs of whitespace to a single space
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
