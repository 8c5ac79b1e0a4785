package scoring

import (
	"fmt"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/config"
)

// Grade is the letter assigned to a total score
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades lists every grade from best to worst
var Grades = []Grade{GradeA, GradeB, GradeC, GradeD, GradeF}

// GradeFor maps a total onto a grade using t. Zero thresholds fall back to
// the default scale.
func GradeFor(total int, t config.GradeThresholds) Grade {
	if t == (config.GradeThresholds{}) {
		t = config.DefaultGradeThresholds
	}
	switch {
	case total >= t.A:
		return GradeA
	case total >= t.B:
		return GradeB
	case total >= t.C:
		return GradeC
	case total >= t.D:
		return GradeD
	default:
		return GradeF
	}
}

// ParseGrade resolves a grade letter
func ParseGrade(s string) (Grade, error) {
	g := Grade(strings.ToUpper(strings.TrimSpace(s)))
	if g.Rank() < 0 {
		return "", fmt.Errorf("unknown grade %q", s)
	}
	return g, nil
}

// Rank orders grades, 4 for A down to 0 for F, -1 for unknown
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	case GradeD:
		return 1
	case GradeF:
		return 0
	default:
		return -1
	}
}

// AtLeast reports whether g is min or better
func (g Grade) AtLeast(min Grade) bool {
	return g.Rank() >= min.Rank()
}

// GradesAtLeast returns every grade that is min or better
func GradesAtLeast(min Grade) []Grade {
	var out []Grade
	for _, g := range Grades {
		if g.AtLeast(min) {
			out = append(out, g)
		}
	}
	return out
}
