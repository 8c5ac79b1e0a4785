package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/vijay-prabhu/jobscout/internal/seniority"
)

var (
	validAggression = map[string]bool{"": true, "conservative": true, "moderate": true, "aggressive": true}
	validPreference = map[string]bool{"": true, "hardware": true, "software": true}
	validGrades     = map[string]bool{"A": true, "B": true, "C": true, "D": true, "F": true}
)

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'jobscout config init' to create)", expandedPath)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes TOML config data on top of the defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// Profiles from the file replace the built-in example entirely
	cfg.Profiles = nil

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		cfg.Profiles = []Profile{DefaultProfile()}
	}
	for i := range cfg.Profiles {
		cfg.Profiles[i].applyDefaults()
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills zero-valued knobs a profile file usually leaves out
func (p *Profile) applyDefaults() {
	if p.TechnicalPointsPerHit == 0 {
		p.TechnicalPointsPerHit = 2
	}
	if p.Digest.Thresholds == (GradeThresholds{}) {
		p.Digest.Thresholds = DefaultGradeThresholds
	}

	defaults := DefaultContextFilters()
	if p.ContextFilters.SoftwareEngineering == nil {
		p.ContextFilters.SoftwareEngineering = defaults.SoftwareEngineering
	}
	if len(p.ContextFilters.SoftwareEngineeringKeywords) == 0 {
		p.ContextFilters.SoftwareEngineeringKeywords = defaults.SoftwareEngineeringKeywords
	}
	if len(p.ContextFilters.HardwareExceptions) == 0 {
		p.ContextFilters.HardwareExceptions = defaults.HardwareExceptions
	}
	if len(p.ContextFilters.ContractKeywords) == 0 {
		p.ContextFilters.ContractKeywords = defaults.ContractKeywords
	}
	if p.ContextFilters.ContractMinSeniority == 0 {
		p.ContextFilters.ContractMinSeniority = defaults.ContractMinSeniority
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Gmail.CredentialsPath, err = expandPath(c.Gmail.CredentialsPath)
	if err != nil {
		return err
	}

	c.Gmail.TokenPath, err = expandPath(c.Gmail.TokenPath)
	if err != nil {
		return err
	}

	c.Database.Path, err = expandPath(c.Database.Path)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	if c.Gmail.MaxResults < 1 || c.Gmail.MaxResults > 5000 {
		errs = append(errs, errors.New("gmail.max_results must be between 1 and 5000"))
	}

	if c.LLM.Enabled && c.LLM.Provider != "gemini" {
		errs = append(errs, fmt.Errorf("llm.provider must be 'gemini', got '%s'", c.LLM.Provider))
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend))
	}

	if c.Scheduler.IntervalHours < 1 {
		errs = append(errs, errors.New("scheduler.interval_hours must be at least 1"))
	}

	if c.Ingest.Workers < 1 {
		errs = append(errs, errors.New("ingest.workers must be at least 1"))
	}
	if c.Ingest.MaxRetries < 0 {
		errs = append(errs, errors.New("ingest.max_retries must not be negative"))
	}

	for _, ex := range c.Filters.RoleExclusions {
		if ex.Reason == "" {
			errs = append(errs, fmt.Errorf("filters.role_exclusions %q: reason is required", ex.Name))
		}
	}

	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("duplicate profile id %q", p.ID))
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks a single profile against the schema
func (p Profile) Validate() error {
	var errs []error
	prefix := fmt.Sprintf("profile %q", p.ID)

	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, errors.New("profile id is required"))
	}
	if len(p.TargetSeniority) == 0 {
		errs = append(errs, fmt.Errorf("%s: target_seniority must list at least one level", prefix))
	}
	for _, lvl := range p.TargetSeniority {
		if _, err := seniority.ParseLevel(lvl); err != nil {
			errs = append(errs, fmt.Errorf("%s: unknown seniority level %q", prefix, lvl))
		}
	}
	if !validAggression[p.CompanyAggression] {
		errs = append(errs, fmt.Errorf("%s: company_aggression must be conservative, moderate or aggressive, got %q", prefix, p.CompanyAggression))
	}
	if !validPreference[p.CompanyPreference] {
		errs = append(errs, fmt.Errorf("%s: company_preference must be hardware or software, got %q", prefix, p.CompanyPreference))
	}
	for _, rt := range p.RoleTypes {
		if rt.Points < 0 || rt.Points > 20 {
			errs = append(errs, fmt.Errorf("%s: role type %q points must be between 0 and 20", prefix, rt.Name))
		}
	}
	for _, pen := range p.RolePenalties {
		if pen.Points < 0 {
			errs = append(errs, fmt.Errorf("%s: role penalty %q points must be positive", prefix, pen.Name))
		}
	}
	for _, tier := range p.CompanyStages {
		if tier.Points < 0 || tier.Points > 15 {
			errs = append(errs, fmt.Errorf("%s: company stage points must be between 0 and 15", prefix))
		}
	}
	if p.TechnicalPointsPerHit < 0 {
		errs = append(errs, fmt.Errorf("%s: technical_points_per_hit must not be negative", prefix))
	}

	if g := p.Digest.MinGrade; g != "" && !validGrades[g] {
		errs = append(errs, fmt.Errorf("%s: digest.min_grade must be one of A-F, got %q", prefix, g))
	}
	for _, g := range p.Digest.Grades {
		if !validGrades[g] {
			errs = append(errs, fmt.Errorf("%s: digest.grades contains unknown grade %q", prefix, g))
		}
	}
	t := p.Digest.Thresholds
	if !(t.A > t.B && t.B > t.C && t.C > t.D && t.D > 0) {
		errs = append(errs, fmt.Errorf("%s: digest.thresholds must be strictly decreasing from a to d", prefix))
	}

	return errors.Join(errs...)
}

// EnsureDirectories creates necessary directories for the database and token
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		filepath.Dir(c.Gmail.TokenPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
