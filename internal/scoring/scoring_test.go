package scoring

import (
	"reflect"
	"testing"

	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/job"
)

var (
	hardware = company.Classification{Kind: company.KindHardware, Confidence: 0.67}
	software = company.Classification{Kind: company.KindSoftware, Confidence: 1}
	neutral  = company.Classification{Kind: company.KindNeutral}
)

func TestScore_DirectorAtRoboticsCompany(t *testing.T) {
	j := job.Job{
		Title:    "Director of Engineering",
		Company:  "Boston Dynamics",
		Location: "Remote",
	}

	r := Score(j, config.DefaultProfile(), hardware)

	want := Breakdown{
		CategorySeniority:    30,
		CategoryDomain:       15,
		CategoryRoleType:     20,
		CategoryLocation:     15,
		CategoryCompanyStage: 5,
		CategoryTechnical:    0,
	}
	if !reflect.DeepEqual(r.Breakdown, want) {
		t.Errorf("Breakdown = %v, want %v", r.Breakdown, want)
	}
	if r.Total != 85 {
		t.Errorf("Total = %d, want 85", r.Total)
	}
	if r.Grade != GradeB {
		t.Errorf("Grade = %v, want B", r.Grade)
	}
}

func TestScore_Bounds(t *testing.T) {
	p := config.DefaultProfile()
	p.RoleTypes = append(p.RoleTypes, config.RoleType{Name: "huge", Keywords: []string{"engineering"}, Points: 500})
	p.CompanyStages = append(p.CompanyStages, config.StageTier{Keywords: []string{"series b"}, Points: 90})

	j := job.Job{
		Title:          "VP Engineering, Robotics",
		Company:        "Acme Robotics",
		Location:       "Remote",
		RawDescription: "Series B robotics automation hardware iot mechatronics. ROS PLC CAD Python C++ sensors controls.",
	}

	r := Score(j, p, hardware)
	if r.Total < 0 || r.Total > MaxTotal {
		t.Fatalf("Total %d out of bounds", r.Total)
	}
	for cat, pts := range r.Breakdown {
		if pts < 0 || pts > MaxPoints[cat] {
			t.Errorf("%s = %d, outside [0, %d]", cat, pts, MaxPoints[cat])
		}
	}
	if r.Total != MaxTotal {
		t.Errorf("expected a saturated job to reach %d, got %d (%v)", MaxTotal, r.Total, r.Breakdown)
	}
	if r.Grade != GradeA {
		t.Errorf("Grade = %v, want A", r.Grade)
	}
}

func TestScore_MinimalJob(t *testing.T) {
	j := job.Job{Title: "Operations Analyst", Company: "Acme"}

	r := Score(j, config.DefaultProfile(), neutral)

	if len(r.Breakdown) != len(Categories) {
		t.Errorf("expected every category in breakdown, got %v", r.Breakdown)
	}
	if r.Breakdown[CategoryTechnical] != 0 || r.Breakdown[CategoryLocation] != 0 {
		t.Errorf("expected zero for missing description and location, got %v", r.Breakdown)
	}
	if r.Grade != GradeF {
		t.Errorf("Grade = %v, want F", r.Grade)
	}
}

func TestScore_Deterministic(t *testing.T) {
	j := job.Job{
		Title:          "Head of Hardware Engineering",
		Company:        "Skydio",
		Location:       "Hybrid - Toronto",
		RawDescription: "Series C drone company. ROS and sensors.",
	}
	p := config.DefaultProfile()

	a := Score(j, p, hardware)
	b := Score(j, p, hardware)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Score() not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestScoreSeniority(t *testing.T) {
	p := config.DefaultProfile() // director, vp

	tests := []struct {
		title string
		want  int
	}{
		{"Director of Engineering", 30},
		{"VP Hardware", 30},
		{"Chief Technology Officer", 25},
		{"Engineering Manager", 25},
		{"Solutions Architect", 15},
		{"Team Lead", 10},
		{"Senior Engineer", 5},
		{"Junior Developer", 5},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := ScoreSeniority(job.Job{Title: tt.title}, p).Points; got != tt.want {
				t.Errorf("ScoreSeniority(%q) = %d, want %d", tt.title, got, tt.want)
			}
		})
	}

	p.TargetSeniority = nil
	if got := ScoreSeniority(job.Job{Title: "Director"}, p).Points; got != 0 {
		t.Errorf("expected 0 without targets, got %d", got)
	}
}

func TestScoreDomain(t *testing.T) {
	p := config.DefaultProfile()

	tests := []struct {
		name string
		desc string
		want int
	}{
		{"none", "we sell shoes", 0},
		{"one", "robotics", 15},
		{"two", "robotics and automation", 20},
		{"three", "robotics, automation and iot", 25},
		{"many", "robotics automation iot hardware mechatronics", 25},
		{"repeated", "robotics robotics robotics", 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := job.Job{Title: "Director", RawDescription: tt.desc}
			if got := ScoreDomain(j, p).Points; got != tt.want {
				t.Errorf("ScoreDomain() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreRoleType(t *testing.T) {
	p := config.DefaultProfile()
	p.AvoidKeywords = []string{"crypto", "gambling"}

	tests := []struct {
		name  string
		title string
		desc  string
		class company.Classification
		want  int
	}{
		{"engineering group", "Director of Engineering", "", neutral, 20},
		{"product group", "Director of Product", "", neutral, 15},
		{"best group wins", "Director of Product Engineering", "", neutral, 20},
		{"no group", "Director", "", neutral, 0},
		{"pure software penalty", "Director of Software Engineering", "", neutral, 10},
		{"penalty waived for hardware", "Director of Software Engineering", "", hardware, 20},
		{"avoid keywords", "Director of Engineering", "crypto gambling platform", neutral, 10},
		{"raw score can go negative", "Director", "crypto gambling", neutral, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRoleType(job.Job{Title: tt.title, RawDescription: tt.desc}, p, tt.class).Points
			if got != tt.want {
				t.Errorf("ScoreRoleType() = %d, want %d", got, tt.want)
			}
		})
	}

	r := Score(job.Job{Title: "Director", RawDescription: "crypto gambling"}, p, neutral)
	if r.Breakdown[CategoryRoleType] != 0 {
		t.Errorf("expected aggregate to clamp role type at 0, got %d", r.Breakdown[CategoryRoleType])
	}
}

func TestScoreLocation(t *testing.T) {
	p := config.DefaultProfile()

	tests := []struct {
		location string
		want     int
		note     string
	}{
		{"Remote", 15, "remote"},
		{"Toronto (Remote)", 15, "remote"},
		{"Hybrid - Toronto", 15, "hybrid"},
		{"Toronto, ON", 12, "city"},
		{"Kingston, Ontario", 8, "region"},
		{"Vancouver, BC", 3, "no preferred location"},
		{"   ", 0, "no location"},
		{"", 0, "no location"},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			cs := ScoreLocation(job.Job{Title: "Director", Location: tt.location}, p)
			if cs.Points != tt.want || cs.Note != tt.note {
				t.Errorf("ScoreLocation(%q) = %d/%q, want %d/%q", tt.location, cs.Points, cs.Note, tt.want, tt.note)
			}
		})
	}
}

func TestScoreCompanyStage(t *testing.T) {
	p := config.DefaultProfile() // hardware preference

	tests := []struct {
		name       string
		desc       string
		class      company.Classification
		aggression company.Aggression
		want       int
	}{
		{"series b neutral", "Series B startup", neutral, company.Moderate, 15},
		{"seed neutral", "seed stage", neutral, company.Moderate, 10},
		{"best tier wins", "public company, formerly seed", neutral, company.Moderate, 10},
		{"preference bonus", "", hardware, company.Moderate, 5},
		{"preference bonus on top of tier", "Series A", hardware, company.Moderate, 20},
		{"moderate software penalty", "Series B", software, company.Moderate, 10},
		{"aggressive software penalty", "Series B", software, company.Aggressive, 5},
		{"conservative no penalty", "Series B", software, company.Conservative, 15},
		{"penalty without stage", "", software, company.Aggressive, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := job.Job{Company: "Acme", RawDescription: tt.desc}
			got := ScoreCompanyStage(j, p, tt.class, company.PolicyFor(tt.aggression)).Points
			if got != tt.want {
				t.Errorf("ScoreCompanyStage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreTechnical(t *testing.T) {
	p := config.DefaultProfile()

	tests := []struct {
		desc string
		want int
	}{
		{"", 0},
		{"Experience with ROS", 2},
		{"ROS, PLC and CAD", 6},
		{"ROS, PLC, CAD, Python, C++ and sensors", 12},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := ScoreTechnical(job.Job{RawDescription: tt.desc}, p).Points; got != tt.want {
				t.Errorf("ScoreTechnical() = %d, want %d", got, tt.want)
			}
		})
	}

	// title keywords do not count
	if got := ScoreTechnical(job.Job{Title: "ROS Lead"}, p).Points; got != 0 {
		t.Errorf("expected title to be ignored, got %d", got)
	}
}

func TestBreakdownTotal(t *testing.T) {
	if got := (Breakdown{CategorySeniority: 30, CategoryDomain: 25}).Total(); got != 55 {
		t.Errorf("Total() = %d, want 55", got)
	}
	if got := (Breakdown{}).Total(); got != 0 {
		t.Errorf("Total() = %d, want 0", got)
	}
}
