package config

import "time"

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Gmail      GmailConfig      `toml:"gmail"`
	LLM        LLMConfig        `toml:"llm"`
	Cache      CacheConfig      `toml:"cache"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Ingest     IngestConfig     `toml:"ingest"`
	Classifier ClassifierConfig `toml:"classifier"`
	Filters    FilterConfig     `toml:"filters"`
	Profiles   []Profile        `toml:"profiles"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// GmailConfig contains Gmail-specific settings
type GmailConfig struct {
	CredentialsPath string `toml:"credentials_path"`
	TokenPath       string `toml:"token_path"`
	MaxResults      int    `toml:"max_results"`
	Query           string `toml:"query"`
}

// LLMConfig configures the Gemini extractor used for emails no parser understands.
// The API key is read from the GEMINI_API_KEY environment variable.
type LLMConfig struct {
	Enabled      bool   `toml:"enabled"`
	Provider     string `toml:"provider"`
	Model        string `toml:"model"`
	MaxLogLength int    `toml:"max_log_length"`
}

// CacheConfig selects where company classifications are memoised
type CacheConfig struct {
	Backend  string `toml:"backend"`
	RedisURL string `toml:"redis_url"`
	TTLHours int    `toml:"ttl_hours"`
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// SchedulerConfig configures the watch command
type SchedulerConfig struct {
	IntervalHours int `toml:"interval_hours"`
}

// IngestConfig tunes the ingestion worker pool
type IngestConfig struct {
	Workers        int `toml:"workers"`
	MaxRetries     int `toml:"max_retries"`
	RetryBackoffMs int `toml:"retry_backoff_ms"`
}

// RetryBackoff returns the base delay between persistence retries
func (i IngestConfig) RetryBackoff() time.Duration {
	return time.Duration(i.RetryBackoffMs) * time.Millisecond
}

// ClassifierConfig holds the keyword lists used to label companies
type ClassifierConfig struct {
	HardwareKeywords  []string `toml:"hardware_keywords"`
	SoftwareKeywords  []string `toml:"software_keywords"`
	HardwareCompanies []string `toml:"hardware_companies"`
	SoftwareCompanies []string `toml:"software_companies"`
}

// RoleExclusion is a named group of title keywords that blocks a job before scoring
type RoleExclusion struct {
	Name     string   `toml:"name"`
	Reason   string   `toml:"reason"`
	Keywords []string `toml:"keywords"`
}

// FilterConfig contains the pre-scoring hard filter rules shared by all profiles
type FilterConfig struct {
	JuniorKeywords      []string        `toml:"junior_keywords"`
	JuniorExceptions    []string        `toml:"junior_exceptions"`
	AssociateKeywords   []string        `toml:"associate_keywords"`
	AssociateExceptions []string        `toml:"associate_exceptions"`
	AmbiguousTitles     []string        `toml:"ambiguous_titles"`
	RoleExclusions      []RoleExclusion `toml:"role_exclusions"`
	CLevelExceptions    []string        `toml:"c_level_exceptions"`
}

// Profile is one candidate's scoring and filtering configuration
type Profile struct {
	ID                    string         `toml:"id"`
	Name                  string         `toml:"name"`
	Disabled              bool           `toml:"disabled"`
	TargetSeniority       []string       `toml:"target_seniority"`
	DomainKeywords        []string       `toml:"domain_keywords"`
	RoleTypes             []RoleType     `toml:"role_types"`
	RolePenalties         []RolePenalty  `toml:"role_penalties"`
	AvoidKeywords         []string       `toml:"avoid_keywords"`
	CompanyStages         []StageTier    `toml:"company_stages"`
	CompanyPreference     string         `toml:"company_preference"`
	CompanyAggression     string         `toml:"company_aggression"`
	TechnicalKeywords     []string       `toml:"technical_keywords"`
	TechnicalPointsPerHit int            `toml:"technical_points_per_hit"`
	Location              LocationPrefs  `toml:"location"`
	HardFilters           ProfileFilters `toml:"hard_filters"`
	ContextFilters        ContextFilters `toml:"context_filters"`
	Digest                DigestSettings `toml:"digest"`
}

// RoleType is a group of role keywords worth a fixed number of points
type RoleType struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
	Points   int      `toml:"points"`
}

// RolePenalty subtracts points from the role-type category when its keywords match
type RolePenalty struct {
	Name             string   `toml:"name"`
	Keywords         []string `toml:"keywords"`
	Points           int      `toml:"points"`
	WaiveForHardware bool     `toml:"waive_for_hardware"`
}

// StageTier maps funding/stage keywords to points
type StageTier struct {
	Keywords []string `toml:"keywords"`
	Points   int      `toml:"points"`
}

// LocationPrefs lists location keywords in priority order
type LocationPrefs struct {
	Remote  []string `toml:"remote"`
	Hybrid  []string `toml:"hybrid"`
	Cities  []string `toml:"cities"`
	Regions []string `toml:"regions"`
}

// ProfileFilters extends the shared hard filters for one profile
type ProfileFilters struct {
	ExtraExclusions []RoleExclusion `toml:"extra_exclusions"`
	ExtraExceptions []string        `toml:"extra_exceptions"`
	AllowJunior     bool            `toml:"allow_junior"`
}

// ContextFilters configures the post-scoring filters
type ContextFilters struct {
	SoftwareEngineering         *bool    `toml:"software_engineering"` // nil means on
	SoftwareEngineeringKeywords []string `toml:"software_engineering_keywords"`
	HardwareExceptions          []string `toml:"hardware_exceptions"`
	ContractKeywords            []string `toml:"contract_keywords"`
	ContractMinSeniority        int      `toml:"contract_min_seniority"`
}

// SoftwareEngineeringEnabled reports whether the software engineering filter runs
func (cf ContextFilters) SoftwareEngineeringEnabled() bool {
	return cf.SoftwareEngineering == nil || *cf.SoftwareEngineering
}

// DigestSettings controls which scores are eligible for a digest
type DigestSettings struct {
	MinGrade   string          `toml:"min_grade"`
	MinScore   int             `toml:"min_score"`
	Grades     []string        `toml:"grades"`
	Thresholds GradeThresholds `toml:"thresholds"`
}

// GradeThresholds are the minimum totals for grades A through D
type GradeThresholds struct {
	A int `toml:"a"`
	B int `toml:"b"`
	C int `toml:"c"`
	D int `toml:"d"`
}

// DefaultGradeThresholds is the 115-point grading scale
var DefaultGradeThresholds = GradeThresholds{A: 98, B: 80, C: 63, D: 46}

// EnabledProfiles returns the profiles that take part in scoring
func (c *Config) EnabledProfiles() []Profile {
	var enabled []Profile
	for _, p := range c.Profiles {
		if !p.Disabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// Profile looks a profile up by ID
func (c *Config) Profile(id string) (Profile, bool) {
	for _, p := range c.Profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "~/.local/share/jobscout/jobscout.db",
		},
		Gmail: GmailConfig{
			CredentialsPath: "~/.config/jobscout/credentials.json",
			TokenPath:       "~/.config/jobscout/token.json",
			MaxResults:      200,
			Query:           "from:(jobalerts-noreply@linkedin.com OR greenhouse.io OR lever.co OR ashbyhq.com)",
		},
		LLM: LLMConfig{
			Enabled:      false,
			Provider:     "gemini",
			Model:        "gemini-2.5-flash",
			MaxLogLength: 200,
		},
		Cache: CacheConfig{
			Backend:  "memory",
			RedisURL: "redis://localhost:6379/0",
			TTLHours: 24 * 7,
		},
		Scheduler: SchedulerConfig{
			IntervalHours: 6,
		},
		Ingest: IngestConfig{
			Workers:        4,
			MaxRetries:     3,
			RetryBackoffMs: 50,
		},
		Classifier: DefaultClassifier(),
		Filters:    DefaultFilters(),
		Profiles:   []Profile{DefaultProfile()},
	}
}

// DefaultClassifier returns the built-in company indicator lists
func DefaultClassifier() ClassifierConfig {
	return ClassifierConfig{
		HardwareKeywords: []string{
			"robotics", "robot", "embedded", "firmware", "mechatronics", "iot",
			"manufacturing", "hardware", "electronics", "semiconductor", "automotive",
			"aerospace", "medical device", "industrial automation", "drones",
		},
		SoftwareKeywords: []string{
			"saas", "cloud-only", "cloud native", "web app", "web application",
			"b2b software", "mobile app", "marketplace", "fintech platform", "ad tech",
		},
		HardwareCompanies: []string{
			"tesla", "boston dynamics", "irobot", "rivian", "spacex", "anduril",
			"zoox", "waymo", "skydio", "nvidia", "intuitive surgical", "siemens",
		},
		SoftwareCompanies: []string{
			"salesforce", "shopify", "atlassian", "hubspot", "slack", "dropbox",
		},
	}
}

// DefaultFilters returns the built-in Stage A keyword lists
func DefaultFilters() FilterConfig {
	return FilterConfig{
		JuniorKeywords: []string{
			"junior", "jr", "jr.", "intern", "internship", "coordinator",
			"entry level", "entry-level", "trainee", "apprentice", "new grad",
		},
		JuniorExceptions: []string{
			"senior coordinator", "lead coordinator", "program coordinator manager",
		},
		AssociateKeywords: []string{"associate"},
		AssociateExceptions: []string{
			"director", "vp", "vice president", "principal", "chief",
		},
		AmbiguousTitles: []string{
			"associate principal", "senior associate",
		},
		RoleExclusions: []RoleExclusion{
			{
				Name:   "hr",
				Reason: "hard_filter_hr_role",
				Keywords: []string{
					"human resources", "hr", "people operations", "people ops",
					"people & culture", "people partner", "talent acquisition",
					"recruiter", "recruiting",
				},
			},
			{
				Name:   "finance",
				Reason: "hard_filter_finance_role",
				Keywords: []string{
					"finance", "accounting", "accountant", "financial controller",
					"financial analyst", "bookkeeper", "payroll",
				},
			},
			{
				Name:   "legal",
				Reason: "hard_filter_legal_role",
				Keywords: []string{
					"legal", "counsel", "attorney", "paralegal", "lawyer",
				},
			},
			{
				Name:   "sales_marketing",
				Reason: "hard_filter_sales_marketing_role",
				Keywords: []string{
					"sales manager", "marketing manager", "account executive",
					"account manager", "business development", "sales representative",
				},
			},
			{
				Name:   "admin",
				Reason: "hard_filter_admin_role",
				Keywords: []string{
					"administrative assistant", "executive assistant", "office manager",
					"receptionist", "administrative",
				},
			},
		},
		CLevelExceptions: []string{
			"chief people officer", "chief human resources officer", "chief financial officer",
			"chief legal officer", "chief marketing officer", "chief revenue officer",
			"chief operating officer", "cfo", "chro", "cmo", "cro",
		},
	}
}

// DefaultProfile returns an example hardware-leaning engineering leadership profile
func DefaultProfile() Profile {
	return Profile{
		ID:              "default",
		Name:            "Engineering leadership",
		TargetSeniority: []string{"director", "vp"},
		DomainKeywords: []string{
			"robotics", "automation", "hardware", "iot", "engineering", "mechatronics",
		},
		RoleTypes: []RoleType{
			{Name: "engineering", Keywords: []string{"engineering", "r&d", "technical"}, Points: 20},
			{Name: "product", Keywords: []string{"product"}, Points: 15},
			{Name: "operations", Keywords: []string{"operations", "manufacturing"}, Points: 10},
		},
		RolePenalties: []RolePenalty{
			{
				Name:             "pure_software",
				Keywords:         []string{"software engineering", "software development"},
				Points:           10,
				WaiveForHardware: true,
			},
		},
		CompanyStages: []StageTier{
			{Keywords: []string{"series a", "series b", "series c"}, Points: 15},
			{Keywords: []string{"growth stage", "scale-up", "scaleup", "series d"}, Points: 12},
			{Keywords: []string{"seed", "early stage"}, Points: 10},
			{Keywords: []string{"public", "fortune 500", "nasdaq", "nyse"}, Points: 6},
		},
		CompanyPreference:     "hardware",
		CompanyAggression:     "moderate",
		TechnicalKeywords:     []string{"ros", "plc", "cad", "python", "c++", "sensors", "controls"},
		TechnicalPointsPerHit: 2,
		Location: LocationPrefs{
			Remote:  []string{"remote", "work from home", "anywhere"},
			Hybrid:  []string{"hybrid"},
			Cities:  []string{"toronto", "waterloo", "ottawa"},
			Regions: []string{"ontario", "canada"},
		},
		ContextFilters: DefaultContextFilters(),
		Digest: DigestSettings{
			MinGrade:   "B",
			MinScore:   0,
			Thresholds: DefaultGradeThresholds,
		},
	}
}

// Bool returns a pointer to b
func Bool(b bool) *bool { return &b }

// DefaultContextFilters returns the built-in Stage B settings
func DefaultContextFilters() ContextFilters {
	return ContextFilters{
		SoftwareEngineering: Bool(true),
		SoftwareEngineeringKeywords: []string{
			"software engineering", "software engineer", "software development",
		},
		HardwareExceptions: []string{
			"hardware", "embedded", "firmware", "robotics", "product", "iot",
			"mechatronics", "systems",
		},
		ContractKeywords: []string{
			"contract", "contractor", "temporary", "temp", "fixed term", "fixed-term", "freelance",
		},
		ContractMinSeniority: 25,
	}
}
