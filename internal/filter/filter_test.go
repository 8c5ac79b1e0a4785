package filter

import (
	"testing"

	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

func TestFilter_PreScore(t *testing.T) {
	f := New(config.DefaultFilters())
	p := config.DefaultProfile()

	tests := []struct {
		title       string
		wantOutcome Outcome
		wantReason  string
	}{
		{"Junior Software Engineer", OutcomeBlock, ReasonJunior},
		{"Intern - Robotics", OutcomeBlock, ReasonJunior},
		{"Marketing Coordinator", OutcomeBlock, ReasonJunior},
		{"Senior Coordinator, Programs", OutcomePass, ""},
		{"Director, People Operations", OutcomeBlock, ReasonHRRole},
		{"HR Director", OutcomeBlock, ReasonHRRole},
		{"Chief People Officer", OutcomePass, ""},
		{"Chief Financial Officer", OutcomePass, ""},
		{"Financial Controller", OutcomeBlock, ReasonFinanceRole},
		{"General Counsel", OutcomeBlock, ReasonLegalRole},
		{"Account Executive, Enterprise", OutcomeBlock, ReasonSalesMarketing},
		{"Executive Assistant to the Founder", OutcomeBlock, ReasonAdminRole},
		{"Senior Associate", OutcomeReview, ReasonAmbiguousTitle},
		{"Associate Principal, Robotics", OutcomeReview, ReasonAmbiguousTitle},
		{"Associate Director, Engineering", OutcomePass, ""},
		{"Associate VP Hardware", OutcomePass, ""},
		{"Associate Product Manager", OutcomeBlock, ReasonAssociate},
		{"Director of Engineering", OutcomePass, ""},
		{"Senior Hardware Engineer", OutcomePass, ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			d := f.PreScore(tt.title, p)

			if d.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v (reason %q)", d.Outcome, tt.wantOutcome, d.Reason)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.Stage != StagePre {
				t.Errorf("Stage = %v, want pre", d.Stage)
			}
		})
	}
}

func TestFilter_PreScoreProfileOverrides(t *testing.T) {
	f := New(config.DefaultFilters())

	p := config.DefaultProfile()
	p.HardFilters = config.ProfileFilters{
		AllowJunior: true,
		ExtraExclusions: []config.RoleExclusion{
			{Name: "data", Reason: "hard_filter_data_role", Keywords: []string{"data science"}},
		},
		ExtraExceptions: []string{"head of people"},
	}

	tests := []struct {
		title      string
		wantReason string
		wantPass   bool
	}{
		{"Junior Robotics Engineer", "", true},
		{"Director of Data Science", "hard_filter_data_role", false},
		{"Head of People Operations", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			d := f.PreScore(tt.title, p)
			if d.Proceed() != tt.wantPass || d.Reason != tt.wantReason {
				t.Errorf("PreScore(%q) = %+v", tt.title, d)
			}
		})
	}

	// other profiles are unaffected
	if d := f.PreScore("Director of Data Science", config.DefaultProfile()); !d.Proceed() {
		t.Errorf("expected default profile to pass, got %+v", d)
	}
}

func TestFilter_PostScore(t *testing.T) {
	f := New(config.DefaultFilters())

	hardware := company.Classification{Kind: company.KindHardware, Confidence: 0.67}
	neutral := company.Classification{Kind: company.KindNeutral}
	strongSoftware := company.Classification{Kind: company.KindSoftware, Confidence: 1}
	weakSoftware := company.Classification{Kind: company.KindSoftware, Confidence: 0.33}

	senior := scoring.Result{Breakdown: scoring.Breakdown{scoring.CategorySeniority: 30}}
	borderline := scoring.Result{Breakdown: scoring.Breakdown{scoring.CategorySeniority: 25}}
	junior := scoring.Result{Breakdown: scoring.Breakdown{scoring.CategorySeniority: 10}}

	tests := []struct {
		name       string
		title      string
		aggression string
		class      company.Classification
		result     scoring.Result
		wantReason string
	}{
		{"software eng at hardware company", "Software Engineering Manager", "moderate", hardware, senior, ""},
		{"software eng at neutral company", "Software Engineering Manager", "moderate", neutral, senior, ReasonSoftwareEng},
		{"software eng with embedded exception", "Director of Software Engineering, Embedded", "moderate", neutral, senior, ""},
		{"strong software company moderate", "Director of Engineering", "moderate", strongSoftware, senior, ReasonSoftwareCompany},
		{"weak software company moderate", "Director of Engineering", "moderate", weakSoftware, senior, ""},
		{"weak software company aggressive", "Director of Engineering", "aggressive", weakSoftware, senior, ReasonSoftwareCompany},
		{"strong software company conservative", "Director of Engineering", "conservative", strongSoftware, senior, ""},
		{"senior contract", "Director of Engineering (Contract)", "moderate", neutral, senior, ""},
		{"contract at the floor", "Engineering Manager - Contract", "moderate", neutral, borderline, ""},
		{"junior contract", "Robotics Engineer, 6 month contract", "moderate", neutral, junior, ReasonContract},
		{"permanent junior score", "Robotics Engineer", "moderate", neutral, junior, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := config.DefaultProfile()
			p.CompanyAggression = tt.aggression

			d := f.PostScore(job.Job{Title: tt.title, Company: "Acme"}, p, tt.class, tt.result)
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.Proceed() != (tt.wantReason == "") {
				t.Errorf("Proceed() = %v", d.Proceed())
			}
			if d.Stage != StagePost {
				t.Errorf("Stage = %v, want post", d.Stage)
			}
		})
	}
}

func TestFilter_PostScoreDisabledSoftwareFilter(t *testing.T) {
	f := New(config.DefaultFilters())
	p := config.DefaultProfile()
	p.ContextFilters.SoftwareEngineering = config.Bool(false)

	d := f.PostScore(job.Job{Title: "Software Engineering Manager"}, p, company.Classification{Kind: company.KindNeutral}, scoring.Result{})
	if !d.Proceed() {
		t.Errorf("expected pass with filter disabled, got %+v", d)
	}
}
