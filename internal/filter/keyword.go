package filter

import (
	"github.com/vijay-prabhu/jobscout/internal/company"
	"github.com/vijay-prabhu/jobscout/internal/config"
	"github.com/vijay-prabhu/jobscout/internal/keyword"
	"github.com/vijay-prabhu/jobscout/internal/scoring"
)

// GetAllRoleExclusions returns shared + profile role exclusions
func (f *Filter) GetAllRoleExclusions(p config.Profile) []config.RoleExclusion {
	all := make([]config.RoleExclusion, 0, len(f.config.RoleExclusions)+len(p.HardFilters.ExtraExclusions))
	all = append(all, f.config.RoleExclusions...)
	return append(all, p.HardFilters.ExtraExclusions...)
}

// GetAllExceptions returns shared C-level + profile exceptions
func (f *Filter) GetAllExceptions(p config.Profile) []string {
	all := make([]string, 0, len(f.config.CLevelExceptions)+len(p.HardFilters.ExtraExceptions))
	all = append(all, f.config.CLevelExceptions...)
	return append(all, p.HardFilters.ExtraExceptions...)
}

// checkRoleExclusions blocks HR, finance, legal, sales/marketing and admin titles
func (f *Filter) checkRoleExclusions(title string, p config.Profile) *Decision {
	if keyword.Any(title, f.GetAllExceptions(p)) {
		return nil
	}

	for _, ex := range f.GetAllRoleExclusions(p) {
		if kw, ok := keyword.First(title, ex.Keywords); ok {
			d := block(StagePre, ex.Reason, kw)
			return &d
		}
	}

	return nil
}

// checkAmbiguous flags titles that need a human decision
func (f *Filter) checkAmbiguous(title string) *Decision {
	if kw, ok := keyword.First(title, f.config.AmbiguousTitles); ok {
		return &Decision{Outcome: OutcomeReview, Stage: StagePre, Reason: ReasonAmbiguousTitle, Matched: kw}
	}
	return nil
}

// checkJunior blocks junior, intern and coordinator titles unless an
// escalating exception such as "senior coordinator" is present
func (f *Filter) checkJunior(title string) *Decision {
	kw, ok := keyword.First(title, f.config.JuniorKeywords)
	if !ok || keyword.Any(title, f.config.JuniorExceptions) {
		return nil
	}
	d := block(StagePre, ReasonJunior, kw)
	return &d
}

// checkAssociate blocks associate titles without a director/VP/principal/chief qualifier
func (f *Filter) checkAssociate(title string) *Decision {
	kw, ok := keyword.First(title, f.config.AssociateKeywords)
	if !ok || keyword.Any(title, f.config.AssociateExceptions) {
		return nil
	}
	d := block(StagePre, ReasonAssociate, kw)
	return &d
}

// checkSoftwareEngineering blocks software engineering titles unless the
// company is hardware or the title carries a hardware/product exception
func checkSoftwareEngineering(title string, cf config.ContextFilters, class company.Classification) *Decision {
	if !cf.SoftwareEngineeringEnabled() {
		return nil
	}
	kw, ok := keyword.First(title, cf.SoftwareEngineeringKeywords)
	if !ok {
		return nil
	}
	if class.IsHardware() || keyword.Any(title, cf.HardwareExceptions) {
		return nil
	}
	d := block(StagePost, ReasonSoftwareEng, kw)
	return &d
}

// checkContract blocks contract titles whose seniority sub-score is too low
func checkContract(title string, cf config.ContextFilters, r scoring.Result) *Decision {
	kw, ok := keyword.First(title, cf.ContractKeywords)
	if !ok {
		return nil
	}
	if r.Breakdown[scoring.CategorySeniority] >= cf.ContractMinSeniority {
		return nil
	}
	d := block(StagePost, ReasonContract, kw)
	return &d
}
