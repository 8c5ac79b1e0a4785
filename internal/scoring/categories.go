package scoring

import (
	"fmt"
	"strings"

	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/keyword"
	"github.com/vijay-prabhu/jobscout/internal/seniority"
)

// seniorityPoints is indexed by distance from the nearest target level
var seniorityPoints = []int{30, 25, 15, 10, 5}

// domainPoints is indexed by the number of distinct domain keyword hits
var domainPoints = []int{0, 15, 20, 25}

const (
	remotePoints          = 15
	hybridPoints          = 15
	cityPoints            = 12
	regionPoints          = 8
	otherLocationPoints   = 3
	preferenceBonus       = 5
	avoidPenalty          = 5
	defaultPointsPerTechn = 2
)

// ScoreSeniority compares the title's level with the profile targets
func ScoreSeniority(j job.Job, p config.Profile) CategoryScore {
	level := seniority.Classify(j.Title)
	cs := CategoryScore{Category: CategorySeniority}

	targets := targetLevels(p)
	d := seniority.NearestDistance(level, targets)
	if d < 0 {
		cs.Note = fmt.Sprintf("level %s, no target levels", level)
		return cs
	}

	idx := d
	if idx >= len(seniorityPoints) {
		idx = len(seniorityPoints) - 1
	}
	cs.Points = seniorityPoints[idx]
	cs.Matched = []string{level.String()}
	cs.Note = fmt.Sprintf("level %s, distance %d from target", level, d)
	return cs
}

func targetLevels(p config.Profile) []seniority.Level {
	var levels []seniority.Level
	for _, name := range p.TargetSeniority {
		if l, err := seniority.ParseLevel(name); err == nil {
			levels = append(levels, l)
		}
	}
	return levels
}

// ScoreDomain counts distinct domain keywords in the title and description
func ScoreDomain(j job.Job, p config.Profile) CategoryScore {
	hits := keyword.Matches(j.Title+"\n"+j.RawDescription, p.DomainKeywords)
	n := len(hits)
	if n >= len(domainPoints) {
		n = len(domainPoints) - 1
	}
	return CategoryScore{
		Category: CategoryDomain,
		Points:   domainPoints[n],
		Matched:  hits,
		Note:     fmt.Sprintf("%d domain keyword(s)", len(hits)),
	}
}

// ScoreRoleType awards the best matching role-type group, then subtracts
// configured penalties and avoid-keyword hits
func ScoreRoleType(j job.Job, p config.Profile, class company.Classification) CategoryScore {
	text := j.Title + "\n" + j.RawDescription
	cs := CategoryScore{Category: CategoryRoleType}

	best := ""
	for _, rt := range p.RoleTypes {
		if keyword.Any(text, rt.Keywords) && rt.Points > cs.Points {
			cs.Points = rt.Points
			best = rt.Name
		}
	}
	if best != "" {
		cs.Matched = append(cs.Matched, best)
	}

	var notes []string
	for _, pen := range p.RolePenalties {
		if !keyword.Any(j.Title, pen.Keywords) {
			continue
		}
		if pen.WaiveForHardware && class.IsHardware() {
			notes = append(notes, pen.Name+" waived for hardware company")
			continue
		}
		cs.Points -= pen.Points
		notes = append(notes, fmt.Sprintf("%s -%d", pen.Name, pen.Points))
	}

	for _, kw := range keyword.Matches(text, p.AvoidKeywords) {
		cs.Points -= avoidPenalty
		notes = append(notes, fmt.Sprintf("avoid %q -%d", kw, avoidPenalty))
	}

	cs.Note = strings.Join(notes, "; ")
	return cs
}

// ScoreLocation applies only the highest-priority location match. A known
// location that matches nothing gets a small baseline; a missing one gets 0.
func ScoreLocation(j job.Job, p config.Profile) CategoryScore {
	text := j.Location + "\n" + j.Title
	cs := CategoryScore{Category: CategoryLocation}

	tiers := []struct {
		name   string
		kws    []string
		points int
	}{
		{"remote", p.Location.Remote, remotePoints},
		{"hybrid", p.Location.Hybrid, hybridPoints},
		{"city", p.Location.Cities, cityPoints},
		{"region", p.Location.Regions, regionPoints},
	}

	for _, tier := range tiers {
		if kw, ok := keyword.First(text, tier.kws); ok {
			cs.Points = tier.points
			cs.Matched = []string{kw}
			cs.Note = tier.name
			return cs
		}
	}

	if strings.TrimSpace(j.Location) == "" {
		cs.Note = "no location"
		return cs
	}
	cs.Points = otherLocationPoints
	cs.Note = "no preferred location"
	return cs
}

// ScoreCompanyStage awards the best stage tier, adds the preference bonus
// and subtracts the aggression policy penalty
func ScoreCompanyStage(j job.Job, p config.Profile, class company.Classification, policy company.Policy) CategoryScore {
	text := j.Company + "\n" + j.RawDescription
	cs := CategoryScore{Category: CategoryCompanyStage}

	for _, tier := range p.CompanyStages {
		if kw, ok := keyword.First(text, tier.Keywords); ok && tier.Points > cs.Points {
			cs.Points = tier.Points
			cs.Matched = []string{kw}
		}
	}

	var notes []string
	if p.CompanyPreference != "" && string(class.Kind) == p.CompanyPreference {
		cs.Points += preferenceBonus
		notes = append(notes, fmt.Sprintf("%s company +%d", class.Kind, preferenceBonus))
	}
	if penalty := policy.Penalty(class); penalty > 0 {
		cs.Points -= penalty
		notes = append(notes, fmt.Sprintf("%s policy -%d", policy.Aggression, penalty))
	}

	cs.Note = strings.Join(notes, "; ")
	return cs
}

// ScoreTechnical counts technical keyword hits in the description
func ScoreTechnical(j job.Job, p config.Profile) CategoryScore {
	per := p.TechnicalPointsPerHit
	if per <= 0 {
		per = defaultPointsPerTechn
	}
	hits := keyword.Matches(j.RawDescription, p.TechnicalKeywords)
	return CategoryScore{
		Category: CategoryTechnical,
		Points:   len(hits) * per,
		Matched:  hits,
		Note:     fmt.Sprintf("%d technical keyword(s)", len(hits)),
	}
}
