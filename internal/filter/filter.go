package filter

import (
	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/job"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

// Stage identifies which half of the pipeline made the decision
type Stage string

const (
	StagePre  Stage = "pre"
	StagePost Stage = "post"
)

// Outcome is the disposition of a (job, profile) pair
type Outcome string

const (
	OutcomePass   Outcome = "pass"
	OutcomeBlock  Outcome = "block"
	OutcomeReview Outcome = "manual_review"
)

// Filter reasons persisted on score rows
const (
	ReasonJunior          = "hard_filter_junior"
	ReasonAssociate       = "hard_filter_associate"
	ReasonHRRole          = "hard_filter_hr_role"
	ReasonFinanceRole     = "hard_filter_finance_role"
	ReasonLegalRole       = "hard_filter_legal_role"
	ReasonSalesMarketing  = "hard_filter_sales_marketing_role"
	ReasonAdminRole       = "hard_filter_admin_role"
	ReasonAmbiguousTitle  = "manual_review_ambiguous_title"
	ReasonSoftwareEng     = "context_filter_software_engineering"
	ReasonSoftwareCompany = "context_filter_software_company"
	ReasonContract        = "context_filter_contract"
	ReasonReviewRejected  = "manual_review_rejected"
)

// Decision is the outcome of one filter stage
type Decision struct {
	Outcome Outcome // pass, block or manual_review
	Stage   Stage   // stage that decided
	Reason  string  // reason code, empty on pass
	Matched string  // keyword that triggered the decision
}

// Proceed reports whether the pipeline continues after this decision
func (d Decision) Proceed() bool {
	return d.Outcome != OutcomeBlock
}

// ManualReview reports whether the job was flagged for human disposition
func (d Decision) ManualReview() bool {
	return d.Outcome == OutcomeReview
}

func pass(stage Stage) Decision {
	return Decision{Outcome: OutcomePass, Stage: stage}
}

func block(stage Stage, reason, matched string) Decision {
	return Decision{Outcome: OutcomeBlock, Stage: stage, Reason: reason, Matched: matched}
}

// Filter applies the pre- and post-scoring rules. It holds no mutable state.
type Filter struct {
	config config.FilterConfig
}

// New creates a new Filter with the given shared hard-filter configuration
func New(cfg config.FilterConfig) *Filter {
	return &Filter{config: cfg}
}

// PreScore runs the Stage A hard filters against a title
func (f *Filter) PreScore(title string, p config.Profile) Decision {
	// Layer 1: role exclusions, unless a C-level exception matches
	if d := f.checkRoleExclusions(title, p); d != nil {
		return *d
	}

	// Layer 2: ambiguous titles go to a human
	if d := f.checkAmbiguous(title); d != nil {
		return *d
	}

	// Layer 3: junior titles
	if !p.HardFilters.AllowJunior {
		if d := f.checkJunior(title); d != nil {
			return *d
		}
	}

	// Layer 4: associate titles
	if d := f.checkAssociate(title); d != nil {
		return *d
	}

	return pass(StagePre)
}

// PostScore runs the Stage B context filters. It needs the classification
// and the score produced after Stage A.
func (f *Filter) PostScore(j job.Job, p config.Profile, class company.Classification, r scoring.Result) Decision {
	cf := p.ContextFilters

	// Layer 1: software engineering leadership at a non-hardware company
	if d := checkSoftwareEngineering(j.Title, cf, class); d != nil {
		return *d
	}

	// Layer 2: company aggression policy
	aggression, err := company.ParseAggression(p.CompanyAggression)
	if err != nil {
		aggression = company.DefaultAggression
	}
	if company.PolicyFor(aggression).Blocks(class) {
		return block(StagePost, ReasonSoftwareCompany, string(aggression))
	}

	// Layer 3: contract roles below the seniority floor
	if d := checkContract(j.Title, cf, r); d != nil {
		return *d
	}

	return pass(StagePost)
}
