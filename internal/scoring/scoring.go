// Package scoring computes the weighted category scores, totals and grades
// for a (job, profile) pair. Every function here is pure.
package scoring

import (
	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/seniority"
)

// Category names one scoring dimension
type Category string

const (
	CategorySeniority    Category = "seniority"
	CategoryDomain       Category = "domain"
	CategoryRoleType     Category = "role_type"
	CategoryLocation     Category = "location"
	CategoryCompanyStage Category = "company_stage"
	CategoryTechnical    Category = "technical"
)

// Categories lists every category in display order
var Categories = []Category{
	CategorySeniority,
	CategoryDomain,
	CategoryRoleType,
	CategoryLocation,
	CategoryCompanyStage,
	CategoryTechnical,
}

// MaxPoints is the upper bound of each category
var MaxPoints = map[Category]int{
	CategorySeniority:    30,
	CategoryDomain:       25,
	CategoryRoleType:     20,
	CategoryLocation:     15,
	CategoryCompanyStage: 15,
	CategoryTechnical:    10,
}

// MaxTotal is the sum of all category maxima
const MaxTotal = 115

// Breakdown holds the points per category
type Breakdown map[Category]int

// Total sums the breakdown and clamps it to [0, MaxTotal]
func (b Breakdown) Total() int {
	total := 0
	for _, v := range b {
		total += v
	}
	return clamp(total, 0, MaxTotal)
}

// CategoryScore is one category's points and the keywords behind them
type CategoryScore struct {
	Category Category `json:"category"`
	Points   int      `json:"points"`
	Matched  []string `json:"matched,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// Result is the aggregate score for one (job, profile) pair
type Result struct {
	Total     int             `json:"total"`
	Grade     Grade           `json:"grade"`
	Breakdown Breakdown       `json:"breakdown"`
	Details   []CategoryScore `json:"details"`
	Seniority seniority.Level `json:"seniority"`
}

// Score runs every category scorer and grades the total using the profile's
// digest thresholds. Missing optional job fields only lower sub-scores.
func Score(j job.Job, p config.Profile, class company.Classification) Result {
	aggression, err := company.ParseAggression(p.CompanyAggression)
	if err != nil {
		aggression = company.DefaultAggression
	}
	policy := company.PolicyFor(aggression)

	details := []CategoryScore{
		ScoreSeniority(j, p),
		ScoreDomain(j, p),
		ScoreRoleType(j, p, class),
		ScoreLocation(j, p),
		ScoreCompanyStage(j, p, class, policy),
		ScoreTechnical(j, p),
	}

	breakdown := make(Breakdown, len(details))
	for i := range details {
		d := &details[i]
		d.Points = clamp(d.Points, 0, MaxPoints[d.Category])
		breakdown[d.Category] = d.Points
	}

	total := breakdown.Total()
	return Result{
		Total:     total,
		Grade:     GradeFor(total, p.Digest.Thresholds),
		Breakdown: breakdown,
		Details:   details,
		Seniority: seniority.Classify(j.Title),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
