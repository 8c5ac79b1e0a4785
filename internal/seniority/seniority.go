// Package seniority maps job titles onto an ordered nine-level hierarchy.
package seniority

import (
	"fmt"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/keyword"
)

// Level is a position in the seniority hierarchy, 0 (junior) to 8 (chief)
type Level int

const (
	Junior Level = iota
	Mid
	Senior
	Lead
	Architect
	Manager
	Director
	VP
	Chief
)

// Default is assumed when no keyword matches
const Default = Mid

var levelNames = [...]string{
	Junior:    "junior",
	Mid:       "mid",
	Senior:    "senior",
	Lead:      "lead",
	Architect: "architect",
	Manager:   "manager",
	Director:  "director",
	VP:        "vp",
	Chief:     "chief",
}

func (l Level) String() string {
	if l < Junior || l > Chief {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// aliases maps config level names onto levels
var aliases = map[string]Level{
	"junior":             Junior,
	"intern":             Junior,
	"mid":                Mid,
	"ic":                 Mid,
	"senior":             Senior,
	"staff":              Senior,
	"principal":          Senior,
	"lead":               Lead,
	"architect":          Architect,
	"distinguished":      Architect,
	"fellow":             Architect,
	"manager":            Manager,
	"director":           Director,
	"senior manager":     Director,
	"vp":                 VP,
	"head":               VP,
	"head of":            VP,
	"executive director": VP,
	"chief":              Chief,
	"c-level":            Chief,
}

// ParseLevel resolves a configured level name such as "director" or "head of"
func ParseLevel(name string) (Level, error) {
	l, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown seniority level %q", name)
	}
	return l, nil
}

// ParseLevels resolves a list of level names, skipping duplicates
func ParseLevels(names []string) ([]Level, error) {
	seen := make(map[Level]bool, len(names))
	levels := make([]Level, 0, len(names))
	for _, n := range names {
		l, err := ParseLevel(n)
		if err != nil {
			return nil, err
		}
		if !seen[l] {
			seen[l] = true
			levels = append(levels, l)
		}
	}
	return levels, nil
}

// titleKeywords lists the title keywords for each level
var titleKeywords = map[Level][]string{
	Junior: {
		"junior", "jr", "jr.", "intern", "internship", "entry level", "entry-level",
		"graduate", "new grad", "trainee", "apprentice", "associate",
	},
	Mid: {
		"mid-level", "mid level", "intermediate",
	},
	Senior: {
		"senior", "sr", "sr.", "staff", "principal",
	},
	Lead: {
		"lead", "team lead", "tech lead", "technical lead",
	},
	Architect: {
		"architect", "distinguished", "fellow",
	},
	Manager: {
		"manager", "engineering manager", "mgr",
	},
	Director: {
		"director", "senior manager", "sr. manager", "sr manager", "group manager",
	},
	VP: {
		"vp", "vice president", "svp", "evp", "head of", "executive director",
	},
	Chief: {
		"chief", "cto", "ceo", "coo", "cpo", "cfo", "cio", "ciso", "c-level", "founder",
	},
}

// Classify returns the highest level whose keywords appear in title.
// Titles with no recognised keyword default to Mid.
func Classify(title string) Level {
	for l := Chief; l >= Junior; l-- {
		if keyword.Any(title, titleKeywords[l]) {
			return l
		}
	}
	return Default
}

// Keywords returns the title keywords for level l
func Keywords(l Level) []string {
	return append([]string(nil), titleKeywords[l]...)
}

// Distance returns the absolute gap between two levels
func Distance(a, b Level) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// NearestDistance returns the smallest distance from l to any target.
// It returns -1 when targets is empty.
func NearestDistance(l Level, targets []Level) int {
	best := -1
	for _, t := range targets {
		d := Distance(l, t)
		if best == -1 || d < best {
			best = d
		}
	}
	return best
}
